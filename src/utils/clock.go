package utils

import "time"

// -----------------------------------------------------------------------------
// Clock is the timer abstraction used by every scheduled component.
// Production code uses RealClock; tests drive a MockClock.
// -----------------------------------------------------------------------------

type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is a cancellable pending callback.
type Timer interface {
	// Stop prevents the callback from firing. It returns false if the
	// timer already fired or was stopped.
	Stop() bool
}

// -----------------------------------------------------------------------------

type RealClock struct{}

func NewRealClock() RealClock {
	return RealClock{}
}

func (RealClock) Now() time.Time {
	return time.Now()
}

func (RealClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// -----------------------------------------------------------------------------

// UnixMilli returns the clock's current time in milliseconds.
func UnixMilli(c Clock) int64 {
	return c.Now().UnixMilli()
}
