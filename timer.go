package metrics

import (
	"context"
	"time"

	"github.com/tilinna/clock"
)

// Timer measures the elapsed time of a unit of work in milliseconds, ready
// to be reported through a timing metric. The clock is taken from the
// context, so tests can attach a mock with clock.Context.
type Timer struct {
	clck  clock.Clock
	start time.Time
	ms    int64
}

// NewTimer creates a Timer started at the current clock time.
func NewTimer(ctx context.Context) *Timer {
	t := &Timer{clck: clock.FromContext(ctx)}
	t.start = t.clck.Now()
	return t
}

// Restart resets the timer to the current clock time.
func (t *Timer) Restart() {
	t.start = t.clck.Now()
	t.ms = 0
}

// Stop records and returns the elapsed milliseconds since start.
func (t *Timer) Stop() int64 {
	t.ms = int64(t.clck.Now().Sub(t.start) / time.Millisecond)
	return t.ms
}

// Ms returns the elapsed milliseconds recorded by the last Stop.
func (t *Timer) Ms() int64 {
	return t.ms
}
