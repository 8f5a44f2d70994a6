package rx

import "sync"

// Subscription is a teardown handle. Teardowns run once, in the order they
// were added, when Unsubscribe is called.
type Subscription struct {
	mu        sync.Mutex
	closed    bool
	teardowns []func()
}

func NewSubscription() *Subscription {
	return &Subscription{}
}

// Add registers a teardown. It runs immediately if the subscription is
// already closed.
func (s *Subscription) Add(teardown func()) {
	if teardown == nil {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		teardown()
		return
	}
	s.teardowns = append(s.teardowns, teardown)
	s.mu.Unlock()
}

// AddSubscription ties the lifetime of child to s.
func (s *Subscription) AddSubscription(child *Subscription) {
	if child == nil || child == s {
		return
	}
	s.Add(child.Unsubscribe)
}

func (s *Subscription) Unsubscribe() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	teardowns := s.teardowns
	s.teardowns = nil
	s.mu.Unlock()

	for _, fn := range teardowns {
		fn()
	}
}

func (s *Subscription) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
