// Package delivery holds the bounded per-listener envelope queues between
// the fan-out orchestrator and each listener's connection.
package delivery

import (
	"context"
	"sync"

	"github.com/eyepyon/waiwine/internal/model"
)

// Queue is a bounded FIFO of delivery envelopes for one listener. When a
// kind is at capacity, the oldest pending envelope of that kind is evicted
// in favor of the new one: captions are transient, so staleness is worse
// than loss. Eviction is policy, not an error.
type Queue struct {
	mu       sync.Mutex
	capacity int // per envelope kind
	items    []model.Envelope
	counts   map[model.EnvelopeKind]int
	evicted  uint64
	closed   bool

	notify chan struct{}
	done   chan struct{}
}

// NewQueue creates a queue holding up to capacity envelopes per kind.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 1
	}
	return &Queue{
		capacity: capacity,
		counts:   make(map[model.EnvelopeKind]int),
		notify:   make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Enqueue adds an envelope. It returns false only when the queue is closed
// (listener torn down mid fan-out); the caller drops the envelope silently.
func (q *Queue) Enqueue(env model.Envelope) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	kind := env.Kind()
	if q.counts[kind] >= q.capacity {
		q.evictOldest(kind)
	}
	q.items = append(q.items, env)
	q.counts[kind]++
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return true
}

// evictOldest removes the first pending envelope of the given kind while
// keeping the relative order of everything else. Caller holds q.mu.
func (q *Queue) evictOldest(kind model.EnvelopeKind) {
	for i, env := range q.items {
		if env.Kind() == kind {
			q.items = append(q.items[:i], q.items[i+1:]...)
			q.counts[kind]--
			q.evicted++
			return
		}
	}
}

// Dequeue blocks until an envelope is available, the queue is closed and
// drained, or ctx is cancelled. The second return is false when no more
// envelopes will arrive.
func (q *Queue) Dequeue(ctx context.Context) (model.Envelope, bool) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			env := q.items[0]
			q.items = q.items[1:]
			q.counts[env.Kind()]--
			q.mu.Unlock()
			return env, true
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return nil, false
		}
		select {
		case <-q.notify:
		case <-q.done:
		case <-ctx.Done():
			return nil, false
		}
	}
}

// Close tears the queue down. Pending envelopes remain drainable; further
// Enqueue calls report dropped.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()
	close(q.done)
}

// Len returns the number of pending envelopes.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Evicted returns how many envelopes were displaced by the latest-wins
// overflow policy.
func (q *Queue) Evicted() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.evicted
}
