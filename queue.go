package tapsdk

import "sync"

// eventQueue is a thread-safe FIFO queue for converted events.
//
// The queue is unbounded: the native SDK gives no backpressure signal, so
// a slow consumer must not cause callbacks to block or lose events.
//
// Enqueue is called from the dispatcher, which runs on whatever goroutine
// is inside RunCallbacks. Drain is called by Poll.
type eventQueue struct {
	mu     sync.Mutex
	events []Event
	closed bool
}

// newEventQueue creates an empty event queue.
func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]Event, 0, 16),
	}
}

// Enqueue adds an event to the back of the queue.
// Returns false if the queue is closed; the event is dropped.
func (q *eventQueue) Enqueue(e Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.events = append(q.events, e)
	return true
}

// Drain removes and returns every queued event in FIFO order.
// Returns nil if the queue is empty.
func (q *eventQueue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return nil
	}

	out := q.events
	// Hand the backing array to the caller and start a fresh one so the
	// drained events are not retained by the queue.
	q.events = make([]Event, 0, cap(out))
	return out
}

// Len returns the current queue length.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Close marks the queue as closed. Subsequent Enqueue calls fail.
// Queued events remain drainable.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}
