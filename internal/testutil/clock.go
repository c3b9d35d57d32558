// Package testutil provides deterministic clocks and randomness sources for
// tests. Production code never imports this package.
package testutil

import (
	"sync"
	"time"
)

// StepClock is a deterministic wall clock for tests: every Now call returns
// the current time and then advances it by a fixed step.
//
// This makes elapsed-time behavior (echo decay, attention decay, phase
// accumulation) exact and repeatable without sleeping.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type StepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration

	start time.Time
}

// NewStepClock creates a clock that starts at start and advances by step on
// every Now call.
func NewStepClock(start time.Time, step time.Duration) *StepClock {
	return &StepClock{now: start, step: step, start: start}
}

// Now returns the current time and advances the clock by one step.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// Peek returns the time the next Now call will return, without advancing.
func (c *StepClock) Peek() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d without producing a tick time.
func (c *StepClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Reset returns the clock to its start time for test reuse.
func (c *StepClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.start
}
