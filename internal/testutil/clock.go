package testutil

import "sync/atomic"

// StepClock numbers the lines of a scenario trace. Every Next is one step;
// Rewind puts the clock back where it started so a replayed scenario gets
// the same numbers, which golden files depend on.
//
// Safe for concurrent use.
type StepClock struct {
	origin int64
	seq    atomic.Int64
}

// NewStepClock returns a clock whose first step is 1.
func NewStepClock() *StepClock {
	return NewStepClockAt(0)
}

// NewStepClockAt returns a clock whose first step is origin+1.
func NewStepClockAt(origin int64) *StepClock {
	c := &StepClock{origin: origin}
	c.seq.Store(origin)
	return c
}

// Next advances the clock by one step and returns the new value.
func (c *StepClock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last value handed out, or the origin.
func (c *StepClock) Current() int64 {
	return c.seq.Load()
}

// Steps reports how many steps were taken since the origin.
func (c *StepClock) Steps() int64 {
	return c.seq.Load() - c.origin
}

// Rewind returns the clock to its origin.
func (c *StepClock) Rewind() {
	c.seq.Store(c.origin)
}
