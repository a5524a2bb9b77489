// Package seq provides the monotonic counters and session identifiers used
// to stamp journal entries and cloud-save request ids.
package seq

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Source hands out strictly increasing numbers.
type Source interface {
	Next() int64
}

// Clock is a monotonic logical clock. Every journal entry is stamped with
// a seq from it so ordering never depends on wall time.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock whose first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock resuming after start, e.g. the highest seq
// already stored in a journal.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last value handed out without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

// SessionGenerator names one process run of the SDK.
type SessionGenerator interface {
	Generate() string
}

// UUIDv7 generates time-sortable session ids, so sessions list in the
// order they started.
type UUIDv7 struct{}

// Generate returns a hyphenated UUIDv7. Panics if the random source fails.
func (UUIDv7) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
