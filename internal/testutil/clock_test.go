package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStepClockAdvancesPerCall(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewStepClock(start, time.Second)

	assert.Equal(t, start, clock.Now(), "first Now should return the start time")
	assert.Equal(t, start.Add(time.Second), clock.Now(), "second Now should be one step later")
	assert.Equal(t, start.Add(2*time.Second), clock.Peek(), "Peek should not advance")
	assert.Equal(t, start.Add(2*time.Second), clock.Now())
}

func TestStepClockAdvanceAndReset(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewStepClock(start, time.Second)

	clock.Advance(10 * time.Second)
	assert.Equal(t, start.Add(10*time.Second), clock.Now(), "Advance should shift the next tick time")

	clock.Reset()
	assert.Equal(t, start, clock.Now(), "Reset should rewind to the start time")
}
