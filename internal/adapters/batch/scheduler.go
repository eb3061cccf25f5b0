// Package batch groups incoming submissions into time-boxed batches per
// origin channel/guild.
package batch

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/domain/model"
	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/pkg/logger"
	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/pkg/metrics"
)

// Default scheduler configuration constants.
const (
	defaultWindow       = 30 * time.Second
	defaultOutputBuffer = 256
)

type openBatch struct {
	batch model.Batch
	timer *time.Timer
}

// Scheduler buffers submissions into one open batch per origin. A window
// timer starts on the first submission for an origin; when it fires the
// batch is emitted exactly once and the next arrival opens a fresh batch.
// Two origins never share a batch.
type Scheduler struct {
	window       time.Duration
	outputBuffer int
	log          logger.Logger

	mu      sync.Mutex
	open    map[string]*openBatch
	pending []model.Batch
	closed  bool

	wake chan struct{}
	out  chan model.Batch
}

// NewScheduler creates a scheduler with configuration options.
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{
		window:       defaultWindow,
		outputBuffer: defaultOutputBuffer,
		open:         make(map[string]*openBatch),
		wake:         make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.out = make(chan model.Batch, s.outputBuffer)
	go s.deliver()
	return s
}

// Enqueue appends the submission to its origin's open batch, opening a new
// one if none is open. Returns false once the scheduler is closed.
func (s *Scheduler) Enqueue(ctx context.Context, sub model.Submission) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	ob, ok := s.open[sub.OriginID]
	if !ok {
		batchID := uuid.NewString()
		ob = &openBatch{
			batch: model.Batch{
				ID:       batchID,
				OriginID: sub.OriginID,
				OpenedAt: time.Now(),
			},
		}
		originID := sub.OriginID
		ob.timer = time.AfterFunc(s.window, func() {
			s.closeWindow(originID, batchID)
		})
		s.open[sub.OriginID] = ob
		if s.log != nil {
			s.log.Debug(ctx, "batch window opened",
				logger.String("batchID", batchID),
				logger.String("originID", sub.OriginID),
				logger.Duration("window", s.window),
			)
		}
	}
	ob.batch.Submissions = append(ob.batch.Submissions, sub)
	return true
}

// Batches returns the channel closed batches are emitted on.
func (s *Scheduler) Batches() <-chan model.Batch {
	return s.out
}

// closeWindow hands the origin's open batch to the output channel. The
// batch id guards against closing a successor window opened in the
// meantime.
func (s *Scheduler) closeWindow(originID, batchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	ob, ok := s.open[originID]
	if !ok || ob.batch.ID != batchID {
		return
	}
	delete(s.open, originID)
	s.emitLocked(ob.batch)
}

// Close flushes every open window immediately; the output channel closes
// once those batches are delivered. Further enqueues are refused.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	for originID, ob := range s.open {
		ob.timer.Stop()
		delete(s.open, originID)
		s.emitLocked(ob.batch)
	}
	s.closed = true
	s.wakeDeliver()
	return nil
}

// emitLocked queues a non-empty batch for delivery. Must hold s.mu.
func (s *Scheduler) emitLocked(b model.Batch) {
	if len(b.Submissions) == 0 {
		// A window with zero submissions emits nothing.
		return
	}
	b.ClosedAt = time.Now()
	s.pending = append(s.pending, b)
	metrics.RecordBatchClosed(len(b.Submissions))
	s.wakeDeliver()
}

func (s *Scheduler) wakeDeliver() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// deliver drains pending batches onto the output channel in close order.
// A slow consumer stalls delivery; a closed window is never discarded.
// The output channel closes once the scheduler is closed and drained.
func (s *Scheduler) deliver() {
	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			if s.closed {
				s.mu.Unlock()
				close(s.out)
				return
			}
			s.mu.Unlock()
			<-s.wake
			continue
		}
		b := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()

		s.out <- b
	}
}
