package rx

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cilium/stream"
)

func forward[T any](s *Subscriber[T]) Observer[T] {
	return Observer[T]{
		Next:     s.Next,
		Error:    s.Error,
		Complete: s.Complete,
	}
}

func Filter[T any](src Observable[T], keep func(T) bool) Observable[T] {
	return FromStream(stream.Filter(ToStream(src), keep))
}

func Map[A, B any](src Observable[A], apply func(A) B) Observable[B] {
	return FromStream(stream.Map(ToStream(src), apply))
}

// Merge interleaves the values of every source. It completes when all
// sources complete. An error from any source ends the merged stream and
// releases every other source.
func Merge[T any](srcs ...Observable[T]) Observable[T] {
	return Create(func(s *Subscriber[T]) {
		if len(srcs) == 0 {
			s.Complete()
			return
		}

		var active atomic.Int32
		active.Store(int32(len(srcs)))
		for _, src := range srcs {
			if s.Closed() {
				return
			}
			s.AddSubscription(src.Subscribe(Observer[T]{
				Next:  s.Next,
				Error: s.Error,
				Complete: func() {
					if active.Add(-1) == 0 {
						s.Complete()
					}
				},
			}))
		}
	})
}

// TakeUntil mirrors src until notifier emits or completes, then completes.
func TakeUntil[T, U any](src Observable[T], notifier Observable[U]) Observable[T] {
	return Create(func(s *Subscriber[T]) {
		s.AddSubscription(notifier.Subscribe(Observer[U]{
			Next:     func(U) { s.Complete() },
			Error:    s.Error,
			Complete: s.Complete,
		}))
		if s.Closed() {
			return
		}
		s.AddSubscription(src.Subscribe(forward(s)))
	})
}

func DistinctUntilChanged[T comparable](src Observable[T]) Observable[T] {
	return FromStream(stream.Distinct(ToStream(src)))
}

// DistinctUntilChangedFunc drops values equal to the previous value.
func DistinctUntilChangedFunc[T any](src Observable[T], equal func(a, b T) bool) Observable[T] {
	return Create(func(s *Subscriber[T]) {
		var (
			mu   sync.Mutex
			last T
			seen bool
		)
		changed := func(v T) bool {
			mu.Lock()
			defer mu.Unlock()
			if seen && equal(last, v) {
				return false
			}
			seen = true
			last = v
			return true
		}
		s.AddSubscription(FromStream(stream.Filter(ToStream(src), changed)).Subscribe(forward(s)))
	})
}

// Debounce emits the latest value of src once d has passed without another
// value. A pending value is flushed when src completes.
func Debounce[T any](src Observable[T], d time.Duration) Observable[T] {
	return FromStream(debounce(ToStream(src), d))
}

// debounce does not go through stream.Debounce, which reads src with
// stream.ToChannel and so needs sources that never emit during Observe.
// Subjects replaying a value do.
func debounce[T any](src stream.Observable[T], d time.Duration) stream.Observable[T] {
	return stream.FuncObservable[T](func(ctx context.Context, next func(T), complete func(error)) {
		var (
			mu      sync.Mutex
			emitMu  sync.Mutex
			timer   *time.Timer
			latest  T
			pending bool
		)
		flush := func() {
			emitMu.Lock()
			defer emitMu.Unlock()

			mu.Lock()
			if !pending || ctx.Err() != nil {
				mu.Unlock()
				return
			}
			v := latest
			pending = false
			mu.Unlock()

			next(v)
		}

		src.Observe(ctx, func(v T) {
			mu.Lock()
			defer mu.Unlock()

			latest = v
			pending = true
			if timer == nil {
				timer = time.AfterFunc(d, flush)
			} else {
				timer.Reset(d)
			}
		}, func(err error) {
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			mu.Unlock()

			if err == nil {
				flush()
			}
			emitMu.Lock()
			complete(err)
			emitMu.Unlock()
		})
	})
}

// Delay shifts every value forward in time by d.
func Delay[T any](src Observable[T], d time.Duration) Observable[T] {
	return FromStream(delay(ToStream(src), d))
}

func delay[T any](src stream.Observable[T], d time.Duration) stream.Observable[T] {
	return stream.FuncObservable[T](func(ctx context.Context, next func(T), complete func(error)) {
		var (
			mu sync.Mutex
			wg sync.WaitGroup
		)
		src.Observe(ctx, func(v T) {
			wg.Add(1)
			time.AfterFunc(d, func() {
				defer wg.Done()
				if ctx.Err() != nil {
					return
				}
				mu.Lock()
				next(v)
				mu.Unlock()
			})
		}, func(err error) {
			go func() {
				wg.Wait()
				complete(err)
			}()
		})
	})
}

// Interval emits 0, 1, 2, ... every d until unsubscribed.
func Interval(d time.Duration) Observable[int] {
	return FromStream(stream.FuncObservable[int](func(ctx context.Context, next func(int), complete func(error)) {
		go func() {
			ticker := time.NewTicker(d)
			defer ticker.Stop()

			for i := 0; ; i++ {
				select {
				case <-ctx.Done():
					complete(ctx.Err())
					return
				case <-ticker.C:
					next(i)
				}
			}
		}()
	}))
}

// CombineLatest emits the latest value of every source once all of them
// have emitted, and again on every later emission.
func CombineLatest[T any](srcs ...Observable[T]) Observable[[]T] {
	return Create(func(s *Subscriber[[]T]) {
		if len(srcs) == 0 {
			s.Complete()
			return
		}

		var (
			mu        sync.Mutex
			values    = make([]T, len(srcs))
			has       = make([]bool, len(srcs))
			ready     int
			completed int
		)

		for i, src := range srcs {
			if s.Closed() {
				return
			}
			s.AddSubscription(src.Subscribe(Observer[T]{
				Next: func(v T) {
					mu.Lock()
					if !has[i] {
						has[i] = true
						ready++
					}
					values[i] = v
					if ready < len(srcs) {
						mu.Unlock()
						return
					}
					out := slices.Clone(values)
					mu.Unlock()

					s.Next(out)
				},
				Error: s.Error,
				Complete: func() {
					mu.Lock()
					completed++
					done := completed == len(srcs) || !has[i]
					mu.Unlock()
					if done {
						s.Complete()
					}
				},
			}))
		}
	})
}

// Retry resubscribes to src when it fails, at most count times per
// subscription. onRetry, when set, is called with every error that leads to
// a resubscription. Nothing is retried once the subscription is released.
func Retry[T any](src Observable[T], count int, onRetry func(error)) Observable[T] {
	return Create(func(s *Subscriber[T]) {
		var attempts atomic.Int32
		shouldRetry := func(err error) bool {
			if s.Closed() || errors.Is(err, context.Canceled) || int(attempts.Load()) >= count {
				return false
			}
			attempts.Add(1)
			if onRetry != nil {
				onRetry(err)
			}
			return true
		}

		s.AddSubscription(FromStream(stream.Retry(ToStream(src), shouldRetry)).Subscribe(forward(s)))
	})
}
