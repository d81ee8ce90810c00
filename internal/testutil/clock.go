// Package testutil provides deterministic helpers for tests: a fixed-epoch
// clock and a sequential id generator, so the same scenario produces the
// same trace byte-for-byte (required for golden file comparison).
package testutil

import (
	"sync"
	"time"
)

// Epoch is the first timestamp a FixedClock returns.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// FixedClock hands out timestamps advancing one second per call from a
// fixed epoch. Timestamps are display metadata, so the spacing only needs
// to be stable, not realistic.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type FixedClock struct {
	mu   sync.Mutex
	next time.Time
}

// NewFixedClock creates a clock starting at Epoch.
func NewFixedClock() *FixedClock {
	return &FixedClock{next: Epoch}
}

// Now returns the current tick and advances the clock by one second.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.next
	c.next = c.next.Add(time.Second)
	return t
}

// Reset rewinds the clock to Epoch for test reuse.
func (c *FixedClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next = Epoch
}
