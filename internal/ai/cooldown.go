package ai

import (
	"sync/atomic"
	"time"
)

// Cooldown gates further generative calls after a rate-limit response. One
// instance is shared per process and injected into the request path; reads
// and writes are last-write-wins, which keeps concurrent requests benign at
// worst a stale read.
type Cooldown struct {
	until atomic.Int64
}

// NewCooldown returns an inactive cooldown.
func NewCooldown() *Cooldown {
	return &Cooldown{}
}

// Arm suppresses generative calls for the given duration from now.
func (c *Cooldown) Arm(d time.Duration) {
	if c == nil || d <= 0 {
		return
	}
	c.until.Store(time.Now().Add(d).UnixNano())
}

// Remaining returns the time left on the cooldown, or zero when inactive.
func (c *Cooldown) Remaining() time.Duration {
	if c == nil {
		return 0
	}
	until := c.until.Load()
	if until == 0 {
		return 0
	}
	remaining := time.Until(time.Unix(0, until))
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Active reports whether generative calls should currently be skipped.
func (c *Cooldown) Active() bool {
	return c.Remaining() > 0
}
