package component

import (
	"context"
	"sync"

	"github.com/ItsNotGoodName/x-rxstore/internal/core"
)

// Scheduler decides when a queued state commit runs.
type Scheduler interface {
	Schedule(fn func())
}

type SchedulerFunc func(fn func())

func (f SchedulerFunc) Schedule(fn func()) { f(fn) }

// Immediate commits on the calling goroutine.
var Immediate Scheduler = SchedulerFunc(func(fn func()) { fn() })

// Manual holds work until Flush is called.
type Manual struct {
	mu    sync.Mutex
	queue []func()
}

func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) Schedule(fn func()) {
	m.mu.Lock()
	m.queue = append(m.queue, fn)
	m.mu.Unlock()
}

func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Flush runs queued work, including work queued while flushing, and
// returns how many functions ran.
func (m *Manual) Flush() int {
	count := 0
	for {
		m.mu.Lock()
		queue := m.queue
		m.queue = nil
		m.mu.Unlock()

		if len(queue) == 0 {
			return count
		}
		for _, fn := range queue {
			fn()
			count++
		}
	}
}

// Loop runs scheduled work on its own goroutine in FIFO order. It is a
// suture service.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	signalC chan struct{}
}

func NewLoop() *Loop {
	return &Loop{
		signalC: make(chan struct{}, 1),
	}
}

func (l *Loop) String() string {
	return "component.Loop"
}

func (l *Loop) Schedule(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	core.FlagChannel(l.signalC)
}

func (l *Loop) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.signalC:
			l.drain()
		}
	}
}

func (l *Loop) drain() {
	for {
		l.mu.Lock()
		queue := l.queue
		l.queue = nil
		l.mu.Unlock()

		if len(queue) == 0 {
			return
		}
		for _, fn := range queue {
			fn()
		}
	}
}
