// Package rx is the push based stream layer the store and the bindings are
// built on.
//
// Delivery is synchronous: a source calls Next on its subscribers from
// whatever goroutine produced the value. Subjects, Merge, CombineLatest and
// TakeUntil are implemented here. Every other operator is a
// github.com/cilium/stream observable reached through FromStream and
// ToStream, and only the time based ones (Debounce, Delay, Interval) add
// goroutines.
package rx

import (
	"log/slog"
	"sync/atomic"
)

// Observer receives notifications. Nil callbacks are ignored, except Error
// which is logged when nil.
type Observer[T any] struct {
	Next     func(T)
	Error    func(error)
	Complete func()
}

type Observable[T any] interface {
	Subscribe(observer Observer[T]) *Subscription
}

// Subscriber wraps an Observer so that nothing is delivered after Error,
// Complete or Unsubscribe.
type Subscriber[T any] struct {
	*Subscription
	observer Observer[T]
	stopped  atomic.Bool
}

func newSubscriber[T any](observer Observer[T]) *Subscriber[T] {
	return &Subscriber[T]{
		Subscription: NewSubscription(),
		observer:     observer,
	}
}

func (s *Subscriber[T]) Next(value T) {
	if s.stopped.Load() || s.Closed() {
		return
	}
	if s.observer.Next != nil {
		s.observer.Next(value)
	}
}

func (s *Subscriber[T]) Error(err error) {
	if !s.stopped.CompareAndSwap(false, true) || s.Closed() {
		return
	}
	if s.observer.Error != nil {
		s.observer.Error(err)
	} else {
		slog.Error("Unhandled stream error", "package", "rx", "error", err)
	}
	s.Unsubscribe()
}

func (s *Subscriber[T]) Complete() {
	if !s.stopped.CompareAndSwap(false, true) || s.Closed() {
		return
	}
	if s.observer.Complete != nil {
		s.observer.Complete()
	}
	s.Unsubscribe()
}

// Func is an Observable implemented by its subscribe function.
type Func[T any] func(s *Subscriber[T])

func (f Func[T]) Subscribe(observer Observer[T]) *Subscription {
	s := newSubscriber(observer)
	f(s)
	return s.Subscription
}

func Create[T any](fn func(s *Subscriber[T])) Observable[T] {
	return Func[T](fn)
}

func Of[T any](values ...T) Observable[T] {
	return Create(func(s *Subscriber[T]) {
		for _, v := range values {
			if s.Closed() {
				return
			}
			s.Next(v)
		}
		s.Complete()
	})
}
