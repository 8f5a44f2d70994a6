// Package binding pushes the values of streams into a component's render
// state for as long as the component is mounted.
//
// A Binder is the per component record shared by every bound property: the
// property to state key mapping, the live subscriptions and the single
// unmounted signal that releases all of them together.
package binding

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"sync"

	"github.com/ItsNotGoodName/x-rxstore/pkg/component"
	"github.com/ItsNotGoodName/x-rxstore/pkg/rx"
)

var (
	ErrUnmounted     = errors.New("component is unmounted")
	ErrEmptyProperty = errors.New("property name is empty")
	ErrNilStream     = errors.New("stream is nil")
	ErrNotState      = errors.New("emission is not a state map")
)

// Target is the part of a component a Binder needs. *component.Component
// implements it.
type Target interface {
	SetState(patch component.State)
	SetStateSync(patch component.State)
	OnMount(fn func())
	OnUnmount(fn func())
}

// Binding is the handle of one bound property.
type Binding struct {
	binder *Binder
	prop   string
	key    string
	spread bool
	source rx.Observable[any]
}

func (b *Binding) Property() string { return b.prop }

// Key is the state key emissions are committed under. It is empty for
// spread bindings.
func (b *Binding) Key() string {
	if b.spread {
		return ""
	}
	return b.key
}

func (b *Binding) Spread() bool { return b.spread }

// ErrorKey is where ErrorSurface commits a failure of this binding.
func (b *Binding) ErrorKey() string {
	if b.spread {
		return "error"
	}
	return b.key + "Error"
}

// Unbind releases the subscription and forgets the property.
func (b *Binding) Unbind() {
	b.binder.unbind(b)
}

func (b *Binding) patch(v any) (component.State, error) {
	if !b.spread {
		return component.State{b.key: v}, nil
	}

	switch s := v.(type) {
	case nil:
		return component.State{}, nil
	case component.State:
		return s.Clone(), nil
	case map[string]any:
		return component.State(maps.Clone(s)), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrNotState, v)
	}
}

type Binder struct {
	target     Target
	opts       options
	unmountedS *rx.Subject[struct{}]
	doneC      chan struct{}

	mu         sync.Mutex
	mounted    bool
	unmounted  bool
	order      []string
	bindings   map[string]*Binding
	subs       map[string]*rx.Subscription
	combined   *rx.Subscription
	generation int
}

func New(target Target, opts ...Option) *Binder {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	b := &Binder{
		target:     target,
		opts:       o,
		unmountedS: rx.NewSubject[struct{}](),
		doneC:      make(chan struct{}),
		bindings:   make(map[string]*Binding),
		subs:       make(map[string]*rx.Subscription),
	}
	target.OnUnmount(b.unmount)
	target.OnMount(b.mount)

	return b
}

// Bind assigns src to prop. A previous stream of prop is replaced and its
// subscription released. Before the component mounts, the subscription is
// deferred to the mount.
func (b *Binder) Bind(prop string, src rx.Observable[any], opts ...BindOption) (*Binding, error) {
	if prop == "" {
		return nil, ErrEmptyProperty
	}
	if src == nil {
		return nil, fmt.Errorf("%w: %s", ErrNilStream, prop)
	}

	o := bindOptions{key: prop}
	for _, opt := range opts {
		opt(&o)
	}
	if o.key == "" {
		o.key = prop
	}

	binding := &Binding{
		binder: b,
		prop:   prop,
		key:    o.key,
		spread: o.spread,
		source: src,
	}

	b.mu.Lock()
	if b.unmounted {
		b.mu.Unlock()
		return nil, fmt.Errorf("%w: cannot bind %s", ErrUnmounted, prop)
	}
	b.bindings[prop] = binding
	b.order = append(slices.DeleteFunc(b.order, func(p string) bool { return p == prop }), prop)
	mounted := b.mounted
	b.mu.Unlock()

	if mounted {
		if b.opts.strategy == Combined {
			b.subscribeCombined()
		} else {
			b.subscribe(binding)
		}
	}

	return binding, nil
}

// BindStream is Bind for typed streams.
func BindStream[T any](b *Binder, prop string, src rx.Observable[T], opts ...BindOption) (*Binding, error) {
	if src == nil {
		return b.Bind(prop, nil, opts...)
	}
	return b.Bind(prop, rx.Map(src, func(v T) any { return v }), opts...)
}

// Get returns the stream currently assigned to prop.
func (b *Binder) Get(prop string) rx.Observable[any] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if binding, ok := b.bindings[prop]; ok {
		return binding.source
	}
	return nil
}

// Properties returns the bound properties in assignment order.
func (b *Binder) Properties() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.order)
}

// Done is closed once the component unmounts.
func (b *Binder) Done() <-chan struct{} {
	return b.doneC
}

// Unmounted emits once when the component unmounts.
func (b *Binder) Unmounted() rx.Observable[struct{}] {
	return b.unmountedS
}

func (b *Binder) live(binding *Binding) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.unmounted && b.bindings[binding.prop] == binding
}

func (b *Binder) mount() {
	b.mu.Lock()
	if b.mounted || b.unmounted {
		b.mu.Unlock()
		return
	}
	b.mounted = true
	bindings := b.ordered()
	b.mu.Unlock()

	if b.opts.strategy == Combined {
		b.subscribeCombined()
		return
	}
	for _, binding := range bindings {
		b.subscribe(binding)
	}
}

func (b *Binder) unmount() {
	b.mu.Lock()
	if b.unmounted {
		b.mu.Unlock()
		return
	}
	b.unmounted = true
	b.mounted = false
	subs := make([]*rx.Subscription, 0, len(b.subs)+1)
	for _, sub := range b.subs {
		subs = append(subs, sub)
	}
	clear(b.subs)
	if b.combined != nil {
		subs = append(subs, b.combined)
		b.combined = nil
	}
	b.mu.Unlock()

	b.unmountedS.Next(struct{}{})
	b.unmountedS.Complete()
	close(b.doneC)

	for _, sub := range subs {
		sub.Unsubscribe()
	}

	b.opts.logger.Debug("Released bindings", "package", "binding", "count", len(subs))
}

func (b *Binder) unbind(binding *Binding) {
	b.mu.Lock()
	if b.bindings[binding.prop] != binding {
		b.mu.Unlock()
		return
	}
	delete(b.bindings, binding.prop)
	b.order = slices.DeleteFunc(b.order, func(p string) bool { return p == binding.prop })
	sub := b.subs[binding.prop]
	delete(b.subs, binding.prop)
	mounted := b.mounted
	b.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
	if mounted && b.opts.strategy == Combined {
		b.subscribeCombined()
	}
}

// ordered must be called with mu held.
func (b *Binder) ordered() []*Binding {
	bindings := make([]*Binding, 0, len(b.order))
	for _, prop := range b.order {
		bindings = append(bindings, b.bindings[prop])
	}
	return bindings
}

func (b *Binder) subscribe(binding *Binding) {
	b.mu.Lock()
	prev := b.subs[binding.prop]
	delete(b.subs, binding.prop)
	b.mu.Unlock()

	if prev != nil {
		prev.Unsubscribe()
	}

	stream := rx.TakeUntil[any, struct{}](b.distinct(binding.source), b.unmountedS)
	sub := recoverStream(b, stream, binding.prop).Subscribe(rx.Observer[any]{
		Next: func(v any) {
			if !b.live(binding) {
				return
			}
			patch, err := binding.patch(v)
			if err != nil {
				b.opts.logger.Warn("Skipping bound value", "package", "binding", "property", binding.prop, "error", err)
				return
			}
			b.commit(patch)
		},
		Error: func(err error) { b.fail(binding.prop, binding.ErrorKey(), err) },
	})

	b.mu.Lock()
	if b.unmounted || b.bindings[binding.prop] != binding {
		b.mu.Unlock()
		sub.Unsubscribe()
		return
	}
	b.subs[binding.prop] = sub
	b.mu.Unlock()
}

func (b *Binder) subscribeCombined() {
	b.mu.Lock()
	b.generation++
	gen := b.generation
	prev := b.combined
	b.combined = nil
	bindings := b.ordered()
	b.mu.Unlock()

	if prev != nil {
		prev.Unsubscribe()
	}
	if len(bindings) == 0 {
		return
	}

	sources := make([]rx.Observable[any], len(bindings))
	for i, binding := range bindings {
		sources[i] = b.distinct(binding.source)
	}

	stream := rx.TakeUntil[[]any, struct{}](rx.CombineLatest(sources...), b.unmountedS)
	if b.opts.debounce >= 0 {
		stream = rx.Debounce(stream, b.opts.debounce)
	}

	current := func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		return !b.unmounted && b.generation == gen
	}

	sub := recoverStream(b, stream, "combined").Subscribe(rx.Observer[[]any]{
		Next: func(values []any) {
			if !current() {
				return
			}
			patch := component.State{}
			for i, binding := range bindings {
				p, err := binding.patch(values[i])
				if err != nil {
					b.opts.logger.Warn("Skipping bound value", "package", "binding", "property", binding.prop, "error", err)
					continue
				}
				maps.Copy(patch, p)
			}
			b.commit(patch)
		},
		Error: func(err error) { b.fail("combined", "error", err) },
	})

	if !current() {
		sub.Unsubscribe()
		return
	}
	b.mu.Lock()
	b.combined = sub
	b.mu.Unlock()
}

func (b *Binder) distinct(src rx.Observable[any]) rx.Observable[any] {
	if !b.opts.distinct {
		return src
	}
	return rx.DistinctUntilChangedFunc(src, equal)
}

func recoverStream[T any](b *Binder, stream rx.Observable[T], prop string) rx.Observable[T] {
	if b.opts.policy != ErrorResubscribe {
		return stream
	}
	return rx.Retry(stream, b.opts.maxRetries, func(err error) {
		b.opts.logger.Warn("Resubscribing to bound stream", "package", "binding", "property", prop, "error", err)
	})
}

func (b *Binder) commit(patch component.State) {
	if b.opts.commit == CommitSync {
		b.target.SetStateSync(patch)
	} else {
		b.target.SetState(patch)
	}
}

func (b *Binder) fail(prop, key string, err error) {
	b.opts.logger.Error("Bound stream failed", "package", "binding", "property", prop, "policy", b.opts.policy.String(), "error", err)

	if b.opts.policy != ErrorSurface {
		return
	}

	b.mu.Lock()
	unmounted := b.unmounted
	b.mu.Unlock()
	if !unmounted {
		b.commit(component.State{key: err})
	}
}

// equal compares like ===: comparable values by value, everything else is
// always different.
func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}
