package bridge

import (
	"context"
	"sync"
)

// lineQueue is a thread-safe FIFO of complete text lines.
//
// The queue is unbounded: a host that never fetches replies accumulates them
// in memory. Enqueue never blocks; Dequeue blocks until a line is available.
//
// All mutation happens under mu. Waiters sleep on cond and re-check the
// predicate after every wakeup, so spurious wakeups are harmless.
type lineQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	lines  []string
	closed bool
}

// newLineQueue creates an empty line queue.
func newLineQueue() *lineQueue {
	q := &lineQueue{
		lines: make([]string, 0, 64),
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends a line to the tail and wakes one blocked dequeuer.
// Thread-safe: may be called from any goroutine.
// Returns false if the queue is closed.
func (q *lineQueue) Enqueue(line string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.lines = append(q.lines, line)
	q.cond.Signal()
	return true
}

// Dequeue removes and returns the head line, blocking until one is
// available. Returns ErrClosed once the queue is closed and drained.
func (q *lineQueue) Dequeue() (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.lines) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.lines) == 0 {
		return "", ErrClosed
	}
	return q.pop(), nil
}

// DequeueContext is Dequeue with a caller-side cancellable wait.
// Returns ctx.Err() if the context ends before a line arrives.
func (q *lineQueue) DequeueContext(ctx context.Context) (string, error) {
	if ctx.Done() == nil {
		return q.Dequeue()
	}

	// Broadcast on cancellation so the waiter below wakes up and can
	// observe ctx.Err(). Same pattern as a context-aware semaphore.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			q.mu.Lock()
			q.cond.Broadcast()
			q.mu.Unlock()
		case <-done:
		}
	}()

	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.lines) == 0 && !q.closed {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		q.cond.Wait()
	}
	if len(q.lines) == 0 {
		return "", ErrClosed
	}
	return q.pop(), nil
}

// TryDequeue removes the head line without blocking.
// Returns ("", false) if the queue is empty.
func (q *lineQueue) TryDequeue() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.lines) == 0 {
		return "", false
	}
	return q.pop(), true
}

// pop removes the head. Caller must hold mu and ensure len > 0.
func (q *lineQueue) pop() string {
	line := q.lines[0]

	// Release the string to the GC; the backing array outlives the slot.
	q.lines[0] = ""

	if len(q.lines) == 1 {
		q.lines = q.lines[:0]
	} else {
		q.lines = q.lines[1:]
	}
	return line
}

// Len returns the number of queued lines.
func (q *lineQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.lines)
}

// Close stops further enqueues and wakes every waiter. Lines already queued
// can still be dequeued. Closing twice is a no-op.
func (q *lineQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.cond.Broadcast()
}

// Closed reports whether Close has been called.
func (q *lineQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
