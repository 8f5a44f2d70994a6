// Package app is the counter demo: a store with effects, provided to a view
// whose state is bound to store selections.
package app

import (
	"log/slog"

	"github.com/ItsNotGoodName/x-rxstore/internal/config"
	"github.com/ItsNotGoodName/x-rxstore/pkg/component"
	"github.com/ItsNotGoodName/x-rxstore/pkg/provider"
	"github.com/ItsNotGoodName/x-rxstore/pkg/store"
)

type App struct {
	Store    *store.Store[State]
	Provider *provider.Provider[State]
	View     *View
}

// New builds and mounts the counter tree. Commits of the view are run by
// scheduler.
func New(cfg config.Config, scheduler component.Scheduler) (*App, error) {
	delay, err := cfg.Counter.AsyncDelayDuration()
	if err != nil {
		return nil, err
	}
	tick, err := cfg.Counter.TickDuration()
	if err != nil {
		return nil, err
	}

	step := cfg.Counter.Step
	if step == 0 {
		step = 1
	}

	st := store.New(Reducer(cfg.Counter.Start, step), State{Count: cfg.Counter.Start}, store.WithLogger(slog.Default()))
	st.AddEffects(AsyncEffects(delay), TickEffects(tick))

	view := NewView(scheduler)
	p := provider.New(st, view.Component)
	if err := view.Bind(cfg.Binding); err != nil {
		st.Close()
		return nil, err
	}
	if err := p.Mount(); err != nil {
		st.Close()
		return nil, err
	}

	return &App{
		Store:    st,
		Provider: p,
		View:     view,
	}, nil
}

// Close unmounts the tree and releases the store effects.
func (a *App) Close() {
	a.Provider.Unmount()
	a.Store.Close()
}
