package testutils

import "time"

// ManualClock is a settable time source for deterministic throttle tests.
type ManualClock struct {
	now time.Time
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time { return c.now }

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// SetTo jumps the clock to t.
func (c *ManualClock) SetTo(t time.Time) { c.now = t }
