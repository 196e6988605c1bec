// Package clock supplies the logical time every store reads. The host
// environment guarantees a monotonically non-decreasing counter; each
// operation reads it exactly once so expiry checks stay internally
// consistent within a single call.
package clock

import (
	"sync"
	"time"
)

// Clock yields the current logical time. Implementations must be
// monotonically non-decreasing.
type Clock interface {
	Now() uint64
}

// System is the production clock: Unix seconds with a monotonic guard so a
// wall-clock step backwards never violates the non-decreasing contract.
type System struct {
	mu   sync.Mutex
	last uint64
}

func NewSystem() *System {
	return &System{}
}

func (c *System) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := uint64(time.Now().Unix())
	if now < c.last {
		return c.last
	}
	c.last = now
	return now
}

// Manual is a hand-advanced clock for tests. The zero value starts at 0.
type Manual struct {
	mu  sync.Mutex
	now uint64
}

func NewManual(start uint64) *Manual {
	return &Manual{now: start}
}

func (c *Manual) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock forward. Moving backwards is ignored to preserve the
// non-decreasing contract.
func (c *Manual) Set(t uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t > c.now {
		c.now = t
	}
}

// Advance moves the clock forward by d ticks.
func (c *Manual) Advance(d uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += d
}
