package utils

import (
	"sort"
	"sync"
	"time"
)

// -----------------------------------------------------------------------------
// MockClock is a virtual clock. Timers only fire from Advance, on the
// caller's goroutine, in deadline order (ties in scheduling order).
// -----------------------------------------------------------------------------

type MockClock struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers []*mockTimer
}

type mockTimer struct {
	clock *MockClock
	when  time.Time
	seq   uint64
	fn    func()
}

// -----------------------------------------------------------------------------

func NewMockClock(start time.Time) *MockClock {
	return &MockClock{now: start}
}

// -----------------------------------------------------------------------------

func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// -----------------------------------------------------------------------------

func (m *MockClock) AfterFunc(d time.Duration, fn func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	if d < 0 {
		d = 0
	}
	m.seq++
	t := &mockTimer{clock: m, when: m.now.Add(d), seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// -----------------------------------------------------------------------------

// Advance moves the clock forward by d, firing every timer that falls due,
// including timers scheduled by callbacks during the advance.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next := m.popDue(target)
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = next.when
		m.mu.Unlock()

		next.fn()
	}
}

// -----------------------------------------------------------------------------

// Pending returns the number of scheduled timers.
func (m *MockClock) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// -----------------------------------------------------------------------------

func (m *MockClock) popDue(target time.Time) *mockTimer {
	if len(m.timers) == 0 {
		return nil
	}
	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].when.Equal(m.timers[j].when) {
			return m.timers[i].seq < m.timers[j].seq
		}
		return m.timers[i].when.Before(m.timers[j].when)
	})
	first := m.timers[0]
	if first.when.After(target) {
		return nil
	}
	m.timers = m.timers[1:]
	return first
}

// -----------------------------------------------------------------------------

func (t *mockTimer) Stop() bool {
	m := t.clock
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, pending := range m.timers {
		if pending == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return true
		}
	}
	return false
}
