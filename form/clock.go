package form

import "sync/atomic"

// Clock is a monotonic logical clock for commit ordering.
//
// Every commit is stamped with a strictly increasing seq number from this
// clock, so ordering across runs is explicit and free of wall-clock races.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations),
// though the engine's single-writer design means only the run loop
// typically calls Next().
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
// Calls are linearizable - each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
