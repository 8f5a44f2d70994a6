package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ItsNotGoodName/x-rxstore/internal/config"
	"github.com/ItsNotGoodName/x-rxstore/pkg/binding"
	"github.com/ItsNotGoodName/x-rxstore/pkg/component"
	"github.com/ItsNotGoodName/x-rxstore/pkg/provider"
	"github.com/ItsNotGoodName/x-rxstore/pkg/store"
	"github.com/k0kubun/pp"
)

var ErrNoStore = errors.New("no counter store provided")

// View renders the counter. Its state is fed entirely by bound store
// selections.
type View struct {
	*component.Component
	binder *binding.Binder
}

func NewView(scheduler component.Scheduler) *View {
	c := component.New("CounterView", component.WithScheduler(scheduler))
	c.OnCommit(func(state component.State) {
		if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
			slog.Debug("Rendered view", "package", "app", "state", pp.Sprint(state))
		}
	})

	return &View{Component: c}
}

// Bind binds the view to the counter store provided by one of its ancestors.
func (v *View) Bind(cfg config.Binding) error {
	st, ok := provider.From[State](v.Component)
	if !ok {
		return ErrNoStore
	}

	opts, err := BinderOptions(cfg)
	if err != nil {
		return err
	}
	v.binder = binding.New(v.Component, opts...)

	if _, err := binding.BindStream(v.binder, "count", store.Select(st, func(s State) int { return s.Count })); err != nil {
		return err
	}
	if _, err := binding.BindStream(v.binder, "pending", store.Select(st, func(s State) int { return s.Pending })); err != nil {
		return err
	}
	if _, err := binding.BindStream(v.binder, "ticks$", store.Select(st, func(s State) int { return s.Ticks }), binding.To("ticks")); err != nil {
		return err
	}
	status := store.SelectFunc(st, func(s State) component.State {
		return component.State{"last_error": s.LastError, "failed": s.LastError != ""}
	}, func(a, b component.State) bool {
		return a["last_error"] == b["last_error"]
	})
	if _, err := binding.BindStream(v.binder, "status", status, binding.Spread()); err != nil {
		return err
	}

	return nil
}

// Binder is nil until Bind succeeds.
func (v *View) Binder() *binding.Binder {
	return v.binder
}

// BinderOptions maps the binding section of the config to binder options.
func BinderOptions(cfg config.Binding) ([]binding.Option, error) {
	var opts []binding.Option
	switch cfg.Variant {
	case "", "generic":
		opts = append(opts, binding.WithVariant(binding.VariantGeneric))
	case "store":
		opts = append(opts, binding.WithVariant(binding.VariantStore))
	case "inferno":
		opts = append(opts, binding.WithVariant(binding.VariantInferno))
	default:
		return nil, fmt.Errorf("unknown binding variant %q", cfg.Variant)
	}

	if cfg.Sync {
		opts = append(opts, binding.WithCommit(binding.CommitSync))
	}

	debounce, err := cfg.DebounceDuration()
	if err != nil {
		return nil, err
	}
	if debounce > 0 {
		opts = append(opts, binding.WithDebounce(debounce))
	}

	return opts, nil
}
