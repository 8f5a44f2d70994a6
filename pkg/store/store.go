// Package store is a Redux style store whose dispatched actions are also an
// observable stream, so effects can react to them and dispatch more actions.
package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ItsNotGoodName/x-rxstore/pkg/actions"
	"github.com/ItsNotGoodName/x-rxstore/pkg/rx"
)

// ActionInit is reduced once by Register to build the initial state.
const ActionInit = "@x-rxstore/init"

type Action = actions.Action

type Reducer[S any] func(state S, action Action) S

// CombineReducers builds a map state where each key is owned by one reducer.
func CombineReducers(reducers map[string]Reducer[any]) Reducer[map[string]any] {
	return func(state map[string]any, action Action) map[string]any {
		next := make(map[string]any, len(reducers))
		for key, reducer := range reducers {
			next[key] = reducer(state[key], action)
		}
		return next
	}
}

// Init runs reducer against its zero state with ActionInit.
func Init[S any](reducer Reducer[S]) S {
	var zero S
	return reducer(zero, Action{Type: ActionInit})
}

type Dispatcher struct {
	*rx.Subject[Action]
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{Subject: rx.NewSubject[Action]()}
}

func (d *Dispatcher) Dispatch(action Action) {
	d.Next(action)
}

type Option func(*options)

type options struct {
	logger *slog.Logger
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

type Store[S any] struct {
	logger     *slog.Logger
	dispatcher *Dispatcher
	reducer    Reducer[S]
	state      *rx.BehaviorSubject[S]
	actions    *actions.Actions

	mu       sync.Mutex
	queue    []Action
	draining bool
	enqueued uint64
	reduced  uint64
	reducedC chan struct{}

	stateSub *rx.Subscription
	effects  *rx.Subscription
}

// Register creates a store whose initial state comes from Init.
func Register[S any](reducer Reducer[S], opts ...Option) *Store[S] {
	return New(reducer, Init(reducer), opts...)
}

func New[S any](reducer Reducer[S], initial S, opts ...Option) *Store[S] {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	dispatcher := NewDispatcher()
	s := &Store[S]{
		logger:     o.logger,
		dispatcher: dispatcher,
		reducer:    reducer,
		state:      rx.NewBehaviorSubject(initial),
		actions:    actions.New(dispatcher),
		effects:    rx.NewSubscription(),
		reducedC:   make(chan struct{}),
	}
	s.stateSub = dispatcher.Subscribe(rx.Observer[Action]{Next: s.reduce})

	return s
}

// reduce serializes reducer runs. An action dispatched while another is
// being reduced, including from a state subscriber, is queued behind it.
func (s *Store[S]) reduce(action Action) {
	s.mu.Lock()
	s.queue = append(s.queue, action)
	s.enqueued++
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true

	for len(s.queue) > 0 {
		next := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		s.state.Next(s.reducer(s.state.Value(), next))

		s.mu.Lock()
		s.reduced++
		close(s.reducedC)
		s.reducedC = make(chan struct{})
	}

	s.draining = false
	s.mu.Unlock()
}

func (s *Store[S]) Dispatch(action Action) {
	s.logger.Debug("Dispatching action", "package", "store", "type", action.Type)
	s.dispatcher.Dispatch(action)
}

// DispatchWait dispatches action and returns the state once action and
// everything queued before it have been reduced. When another goroutine is
// draining the queue the result may also include actions queued after this
// one. It must not be called from a state subscriber.
func (s *Store[S]) DispatchWait(ctx context.Context, action Action) (S, error) {
	s.Dispatch(action)

	s.mu.Lock()
	target := s.enqueued
	for s.reduced < target {
		waitC := s.reducedC
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return s.State(), ctx.Err()
		case <-waitC:
		}

		s.mu.Lock()
	}
	s.mu.Unlock()

	return s.State(), nil
}

// Next makes the store an observer of actions.
func (s *Store[S]) Next(action Action) {
	s.Dispatch(action)
}

func (s *Store[S]) Observer() rx.Observer[Action] {
	return rx.Observer[Action]{
		Next: s.Next,
		Error: func(err error) {
			s.logger.Error("Effect stream failed", "package", "store", "error", err)
		},
	}
}

func (s *Store[S]) State() S {
	return s.state.Value()
}

// Subscribe observes the state, starting with the current one.
func (s *Store[S]) Subscribe(observer rx.Observer[S]) *rx.Subscription {
	return s.state.Subscribe(observer)
}

func (s *Store[S]) Actions() *actions.Actions {
	return s.actions
}

// Close releases every effect and completes the state stream.
func (s *Store[S]) Close() {
	s.effects.Unsubscribe()
	s.stateSub.Unsubscribe()
	s.dispatcher.Complete()
	s.state.Complete()
}

// Select projects the state and only emits when the projection changes.
func Select[S any, T comparable](s *Store[S], fn func(S) T) rx.Observable[T] {
	return rx.DistinctUntilChanged(rx.Map[S, T](s, fn))
}

// SelectFunc is Select for projections that are not comparable.
func SelectFunc[S, T any](s *Store[S], fn func(S) T, equal func(a, b T) bool) rx.Observable[T] {
	return rx.DistinctUntilChangedFunc(rx.Map[S, T](s, fn), equal)
}
