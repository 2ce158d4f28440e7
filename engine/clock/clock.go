// Package clock provides the time sources used by the frame scheduler.
package clock

import (
	"sync"
	"time"
)

// TimeProvider supplies the current time to the scheduler.
type TimeProvider interface {
	// Now returns the current time.
	//
	// Returns:
	//   - time.Time: the current time
	Now() time.Time
}

type wallClock struct{}

// NewTimeProvider returns a TimeProvider backed by the system clock. The
// returned times carry a monotonic reading, so deltas are immune to wall-clock jumps.
//
// Returns:
//   - TimeProvider: the wall-clock provider
func NewTimeProvider() TimeProvider {
	return wallClock{}
}

func (wallClock) Now() time.Time {
	return time.Now()
}

// MockTimeProvider is a controllable TimeProvider for tests.
type MockTimeProvider struct {
	mu      sync.RWMutex
	current time.Time
}

var _ TimeProvider = &MockTimeProvider{}

// NewMockTimeProvider creates a MockTimeProvider starting at the given time.
func NewMockTimeProvider(start time.Time) *MockTimeProvider {
	return &MockTimeProvider{current: start}
}

// Now returns the mocked time.
func (m *MockTimeProvider) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// SetTime moves the mocked time to t. Moving backwards is allowed.
func (m *MockTimeProvider) SetTime(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = t
}

// Advance moves the mocked time forward by d.
func (m *MockTimeProvider) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.current.Add(d)
}
