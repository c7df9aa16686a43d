package clock

import (
	"sync"
	"time"
)

// Clock abstracts time retrieval so business logic is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// Real returns the actual current time in UTC.
type Real struct{}

func (Real) Now() time.Time { return time.Now().UTC() }

// Stub returns a controllable time. Safe for concurrent use.
type Stub struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewStub creates a Stub set to t. Every call to Now advances the clock by step,
// which keeps creation timestamps strictly ordered in tests.
func NewStub(t time.Time, step time.Duration) *Stub {
	return &Stub{now: t.UTC(), step: step}
}

// Fixed returns a Stub frozen at 2024-01-15 10:30:00 UTC.
func Fixed() *Stub {
	return NewStub(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), 0)
}

func (c *Stub) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

// Advance moves the clock forward by d.
func (c *Stub) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
