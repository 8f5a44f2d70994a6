package rx

import (
	"context"
	"sync"

	"github.com/cilium/stream"
)

type ownerKey struct{}

// FromStream subscribes by observing src. Unsubscribing cancels the
// observation context; the completion caused by that cancel is not
// forwarded.
func FromStream[T any](src stream.Observable[T]) Observable[T] {
	return Create(func(s *Subscriber[T]) {
		ctx, cancel := context.WithCancel(context.WithValue(context.Background(), ownerKey{}, s.Subscription))
		s.Add(cancel)

		src.Observe(ctx, s.Next, func(err error) {
			switch {
			case ctx.Err() != nil:
			case err != nil:
				s.Error(err)
			default:
				s.Complete()
			}
		})
	})
}

// ToStream observes src by subscribing to it. The subscription is released
// when ctx is done, and complete is called exactly once. Under FromStream the
// subscription is also tied to the outer one, so unsubscribing releases src
// before Unsubscribe returns.
func ToStream[T any](src Observable[T]) stream.Observable[T] {
	return stream.FuncObservable[T](func(ctx context.Context, next func(T), complete func(error)) {
		if err := ctx.Err(); err != nil {
			complete(err)
			return
		}

		var once sync.Once
		done := func(err error) { once.Do(func() { complete(err) }) }

		sub := src.Subscribe(Observer[T]{
			Next:     next,
			Error:    done,
			Complete: func() { done(nil) },
		})
		stop := context.AfterFunc(ctx, func() {
			sub.Unsubscribe()
			done(ctx.Err())
		})
		sub.Add(func() { stop() })
		if owner, ok := ctx.Value(ownerKey{}).(*Subscription); ok {
			owner.AddSubscription(sub)
		}
	})
}
