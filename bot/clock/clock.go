// Package clock provides a mockable time source so state-machine timeouts
// can be tested without sleeping.
package clock

import (
	"sync"
	"time"
)

// Clock is the interface for time operations.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}

// Real provides the actual system time.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

func (Real) Since(t time.Time) time.Duration { return time.Since(t) }

// Mock is a test clock with controllable time.
type Mock struct {
	mu      sync.RWMutex
	current time.Time
}

// NewMock creates a mock clock set to the given time.
func NewMock(t time.Time) *Mock {
	return &Mock{current: t}
}

func (m *Mock) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *Mock) Since(t time.Time) time.Duration {
	return m.Now().Sub(t)
}

// Advance moves the mock time forward.
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.current.Add(d)
}
