package scoring

import "time"

// Clock abstracts the current time so time-zone scoring is reproducible.
// Production code uses RealClock; tests use FixedClock.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock
type RealClock struct{}

// Now returns time.Now()
func (RealClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant
type FixedClock struct {
	T time.Time
}

// Now returns the fixed instant
func (c FixedClock) Now() time.Time { return c.T }
