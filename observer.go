package tapsdk

import "github.com/roach88/tapsdk/sys"

// Observer receives counters from the dispatcher and the request paths.
// Implementations must be safe for concurrent use and must not block:
// EventDispatched and EventDropped run inside the native callback.
type Observer interface {
	// EventDispatched is called after an event was queued.
	EventDispatched(id sys.EventID)

	// EventDropped is called when an event arrived after Close.
	EventDropped(id sys.EventID)

	// Polled is called once per Poll with the number of events drained.
	Polled(n int)

	// Requested is called once per authorize or cloud-save request with
	// the operation name and the error it returned (nil on success).
	Requested(op string, err error)
}

type nopObserver struct{}

func (nopObserver) EventDispatched(sys.EventID) {}
func (nopObserver) EventDropped(sys.EventID)    {}
func (nopObserver) Polled(int)                  {}
func (nopObserver) Requested(string, error)     {}
