package rx

import (
	"slices"
	"sync"
)

// Subject multicasts to its subscribers in subscription order. The
// subscriber list is copied before delivery, so Next may be called again
// from inside a subscriber.
type Subject[T any] struct {
	mu          sync.Mutex
	subscribers []*Subscriber[T]
	done        bool
	err         error
}

func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{}
}

func (sub *Subject[T]) Subscribe(observer Observer[T]) *Subscription {
	s := newSubscriber(observer)

	sub.mu.Lock()
	if sub.done {
		err := sub.err
		sub.mu.Unlock()
		if err != nil {
			s.Error(err)
		} else {
			s.Complete()
		}
		return s.Subscription
	}
	sub.subscribers = append(sub.subscribers, s)
	sub.mu.Unlock()

	s.Add(func() { sub.remove(s) })

	return s.Subscription
}

func (sub *Subject[T]) remove(s *Subscriber[T]) {
	sub.mu.Lock()
	defer sub.mu.Unlock()

	if idx := slices.Index(sub.subscribers, s); idx != -1 {
		sub.subscribers = slices.Delete(sub.subscribers, idx, idx+1)
	}
}

func (sub *Subject[T]) snapshot() []*Subscriber[T] {
	sub.mu.Lock()
	defer sub.mu.Unlock()

	if sub.done {
		return nil
	}
	return slices.Clone(sub.subscribers)
}

func (sub *Subject[T]) Next(value T) {
	for _, s := range sub.snapshot() {
		s.Next(value)
	}
}

func (sub *Subject[T]) Error(err error) {
	for _, s := range sub.finish(err) {
		s.Error(err)
	}
}

func (sub *Subject[T]) Complete() {
	for _, s := range sub.finish(nil) {
		s.Complete()
	}
}

func (sub *Subject[T]) finish(err error) []*Subscriber[T] {
	sub.mu.Lock()
	defer sub.mu.Unlock()

	if sub.done {
		return nil
	}
	sub.done = true
	sub.err = err
	subscribers := sub.subscribers
	sub.subscribers = nil
	return subscribers
}

func (sub *Subject[T]) Observed() bool {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	return len(sub.subscribers) > 0
}

// BehaviorSubject is a Subject that holds a current value and replays it to
// every new subscriber.
type BehaviorSubject[T any] struct {
	subject *Subject[T]
	mu      sync.RWMutex
	value   T
}

func NewBehaviorSubject[T any](initial T) *BehaviorSubject[T] {
	return &BehaviorSubject[T]{
		subject: NewSubject[T](),
		value:   initial,
	}
}

func (b *BehaviorSubject[T]) Value() T {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.value
}

// Next stores value and delivers it to the subscribers present when it was
// stored, so a concurrent Subscribe sees it exactly once.
func (b *BehaviorSubject[T]) Next(value T) {
	b.mu.Lock()
	b.value = value
	subscribers := b.subject.snapshot()
	b.mu.Unlock()

	for _, s := range subscribers {
		s.Next(value)
	}
}

func (b *BehaviorSubject[T]) Error(err error) { b.subject.Error(err) }

func (b *BehaviorSubject[T]) Complete() { b.subject.Complete() }

// Subscribe replays the current value, then every value stored after it.
// Values arriving while the current value is being replayed are queued
// behind it.
func (b *BehaviorSubject[T]) Subscribe(observer Observer[T]) *Subscription {
	return Create(func(s *Subscriber[T]) {
		var (
			mu        sync.Mutex
			replaying = true
			pending   []T
			terminal  func()
		)
		// queued reports whether fn must wait for the replay to finish.
		queued := func(fn func()) bool {
			mu.Lock()
			defer mu.Unlock()
			if !replaying {
				return false
			}
			if terminal == nil {
				terminal = fn
			}
			return true
		}

		b.mu.RLock()
		current := b.value
		s.AddSubscription(b.subject.Subscribe(Observer[T]{
			Next: func(v T) {
				mu.Lock()
				if replaying {
					pending = append(pending, v)
					mu.Unlock()
					return
				}
				mu.Unlock()
				s.Next(v)
			},
			Error: func(err error) {
				fn := func() { s.Error(err) }
				if !queued(fn) {
					fn()
				}
			},
			Complete: func() {
				if !queued(s.Complete) {
					s.Complete()
				}
			},
		}))
		b.mu.RUnlock()

		s.Next(current)
		for {
			mu.Lock()
			if len(pending) == 0 {
				replaying = false
				fn := terminal
				mu.Unlock()
				if fn != nil {
					fn()
				}
				return
			}
			values := pending
			pending = nil
			mu.Unlock()

			for _, v := range values {
				s.Next(v)
			}
		}
	}).Subscribe(observer)
}
