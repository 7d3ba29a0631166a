package entity

import "time"

// stubClock is a fixed-time TimeProvider for deterministic tests
type stubClock struct {
	now time.Time
}

func (c *stubClock) Now() time.Time                  { return c.now }
func (c *stubClock) Since(t time.Time) time.Duration { return c.now.Sub(t) }
func (c *stubClock) Until(t time.Time) time.Duration { return t.Sub(c.now) }
