package taskgroup

import (
	"sync"
	"sync/atomic"
)

// Signal is a monotonically increasing completion counter.
type Signal struct {
	count atomic.Uint64

	mu   sync.Mutex
	cond *sync.Cond
}

// NewSignal creates a Signal at zero.
func NewSignal() *Signal {
	s := &Signal{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Increment adds one and wakes waiters.
func (s *Signal) Increment() {
	s.mu.Lock()
	s.count.Add(1)
	s.cond.Broadcast()
	s.mu.Unlock()
}

// Count returns the current value without blocking.
func (s *Signal) Count() uint64 {
	return s.count.Load()
}

// WaitUntilAtLeast blocks until the counter reaches n.
func (s *Signal) WaitUntilAtLeast(n uint64) {
	if s.count.Load() >= n {
		return
	}
	s.mu.Lock()
	for s.count.Load() < n {
		s.cond.Wait()
	}
	s.mu.Unlock()
}
