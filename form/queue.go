package form

import (
	"context"
	"sync"
)

// request is one pending commit: the caller's modifications plus the
// channel its merge is delivered on.
type request struct {
	ctx    context.Context
	author Author
	mods   []Modification
	reply  chan Merge
}

// requestQueue is a thread-safe FIFO queue of pending commit requests.
//
// The queue is unbounded so concurrent callers never block each other on
// enqueue; fairness comes from strict FIFO dequeue order in the run loop.
//
// The queue uses a channel for signaling so the run loop can wait without
// spinning; closing the queue closes the signal channel and wakes the loop
// for drain-and-exit.
type requestQueue struct {
	mu       sync.Mutex
	requests []request
	closed   bool
	signal   chan struct{} // Signals request availability (buffered, size 1)
}

func newRequestQueue() *requestQueue {
	return &requestQueue{
		requests: make([]request, 0, 16),
		signal:   make(chan struct{}, 1),
	}
}

// Enqueue adds a request to the back of the queue.
// Thread-safe: may be called from any goroutine.
// Returns false if the queue is closed.
func (q *requestQueue) Enqueue(r request) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.requests = append(q.requests, r)

	// Signal availability (non-blocking - buffer of 1 coalesces multiple signals)
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue attempts to dequeue without blocking.
// Returns (request{}, false) if the queue is empty.
func (q *requestQueue) TryDequeue() (request, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.requests) == 0 {
		return request{}, false
	}

	r := q.requests[0]

	// Nil out the slot so the dequeued request's references are released
	// even while the backing array lives on.
	q.requests[0] = request{}

	if len(q.requests) == 1 {
		q.requests = q.requests[:0]
	} else {
		q.requests = q.requests[1:]
	}

	return r, true
}

// Wait returns a channel that signals when requests may be available.
// The channel is closed when the queue closes, so waiters always wake.
func (q *requestQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *requestQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.requests)
}

// Closed reports whether Close has been called.
func (q *requestQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close signals that no more requests will be enqueued.
// Wakes any blocked waiters by closing the signal channel.
func (q *requestQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return // Already closed
	}

	q.closed = true
	close(q.signal) // Wakes all waiters
}
