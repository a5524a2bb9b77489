package tapsdk

import (
	"context"
	"time"
)

// DefaultPollInterval is the Run cadence when none is given.
const DefaultPollInterval = 50 * time.Millisecond

// Run polls every interval and hands each event to deliver, in order,
// until ctx is cancelled or the Handle is closed. Cancellation is checked
// once per tick; an in-flight native call is never interrupted.
//
// Run returns ctx.Err() on cancellation and nil when the Handle closes.
func (h *Handle) Run(ctx context.Context, interval time.Duration, deliver func(Event)) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-h.done:
			return nil
		case <-ticker.C:
			for _, ev := range h.Poll() {
				deliver(ev)
			}
		}
	}
}
