package realtime

import (
	"context"
	"sync"
	"time"
)

// IntervalScheduler runs a callback on a fixed interval in its own goroutine
// until the returned cancel function is called.
type IntervalScheduler struct{}

// Schedule starts calling fn every interval. The first call happens one full
// interval after Schedule returns. Calling cancel more than once is safe.
func (IntervalScheduler) Schedule(interval time.Duration, fn func()) func() {
	if interval <= 0 {
		interval = time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				// A tick that raced with cancel must not run.
				if ctx.Err() != nil {
					return
				}
				fn()
			}
		}
	}()
	return cancel
}

// ManualScheduler records scheduled callbacks and runs them only when Fire is
// called. It lets timing code be driven step by step without real time.
type ManualScheduler struct {
	mu     sync.Mutex
	nextID int
	jobs   map[int]func()
	order  []int
	count  int
}

// NewManualScheduler returns a scheduler with nothing scheduled.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{jobs: make(map[int]func())}
}

// Schedule records fn. The interval is ignored.
func (m *ManualScheduler) Schedule(_ time.Duration, fn func()) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.jobs[id] = fn
	m.order = append(m.order, id)
	m.count++
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.jobs, id)
		m.mu.Unlock()
	}
}

// Fire runs every active callback once, in scheduling order.
func (m *ManualScheduler) Fire() {
	m.mu.Lock()
	fns := make([]func(), 0, len(m.jobs))
	for _, id := range m.order {
		if fn, ok := m.jobs[id]; ok {
			fns = append(fns, fn)
		}
	}
	m.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// FireN calls Fire n times.
func (m *ManualScheduler) FireN(n int) {
	for i := 0; i < n; i++ {
		m.Fire()
	}
}

// Active returns the number of callbacks that have not been cancelled.
func (m *ManualScheduler) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}

// Scheduled returns how many times Schedule has been called.
func (m *ManualScheduler) Scheduled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}
