// Package ingest buffers submissions between the listener-facing surface
// and the batch scheduler.
//
// The ingestion boundary is fire-and-forget: Enqueue never blocks the
// caller, it only reports whether the submission was buffered.
package ingest

import (
	"context"
	"sync"

	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/domain/model"
	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultCapacity = 10_000
)

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue buffers a submission. Returns false if the queue is full or
	// closed and the submission was not buffered.
	Enqueue(ctx context.Context, s model.Submission) bool

	// Dequeue returns a channel that receives submissions as they become
	// available. The channel closes when the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan model.Submission

	// Len returns the current number of buffered submissions.
	Len() int

	// Close stops accepting new submissions; buffered ones still drain.
	Close() error
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	submissions chan model.Submission
	capacity    int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.submissions = make(chan model.Submission, q.capacity)
	metrics.UpdateIngestQueueSize(0)
	return q
}

// Enqueue buffers a submission without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, s model.Submission) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return false
	}

	select {
	case q.submissions <- s:
		metrics.UpdateIngestQueueSize(len(q.submissions))
		return true
	default:
		metrics.RecordSubmissionDropped()
		return false
	}
}

// Dequeue returns the receive side of the queue.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan model.Submission {
	out := make(chan model.Submission)
	go func() {
		defer close(out)
		for s := range q.submissions {
			select {
			case out <- s:
				metrics.UpdateIngestQueueSize(len(q.submissions))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of buffered submissions.
func (q *InMemoryQueue) Len() int {
	return len(q.submissions)
}

// Close stops accepting new submissions.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.submissions)
	q.closed = true
	return nil
}
