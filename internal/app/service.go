// Package service wires the standings validation pipeline together and
// implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/adapters/batch"
	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/adapters/ingest"
	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/adapters/notify"
	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/adapters/repository"
	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/domain/dedupe"
	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/domain/model"
	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/domain/roster"
	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/domain/structuring"
	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/domain/validation"
	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/pkg/logger"
	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/pkg/metrics"
)

// ErrNoRecognizer is returned by Start when no recognition backend was
// configured.
var ErrNoRecognizer = errors.New("no recognizer configured")

// SubmitOutcome reports what happened to a submitted screenshot.
type SubmitOutcome int

const (
	SubmitAccepted SubmitOutcome = iota
	SubmitDuplicate
	SubmitBackpressure
	SubmitNotStarted
)

// Service owns the ingestion queue, batch scheduler and processing
// pipeline for the standings validation system.
type Service struct {
	mu sync.RWMutex

	// Core components
	queue     ingest.Queue
	deduper   dedupe.Deduper
	scheduler *batch.Scheduler
	rosters   *roster.Cache
	pipeline  *Pipeline

	// Injected dependencies
	recognizer     Recognizer
	store          repository.Store
	notifier       notify.Notifier
	rosterProvider roster.Provider

	// Configuration
	queueSize               int
	dedupeSize              int
	batchWindow             time.Duration
	rosterRefresh           time.Duration
	classificationEnabled   bool
	classificationThreshold float64
	matcherOpts             []roster.Option
	gateOpts                []validation.Option

	// Per-origin batch serialization
	originLocks map[string]*sync.Mutex

	// State
	started    bool
	cancel     context.CancelFunc
	drainDone  chan struct{}
	batchesWG  sync.WaitGroup
	dispatchWG sync.WaitGroup

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithRecognizer sets the recognition backend. Required.
func WithRecognizer(r Recognizer) Option {
	return func(s *Service) {
		s.recognizer = r
	}
}

// WithStore sets the validation result store. Defaults to in-memory.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithNotifier sets the batch summary notifier. Defaults to log output.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithRosterProvider sets where the roster is loaded from.
func WithRosterProvider(p roster.Provider) Option {
	return func(s *Service) {
		if p != nil {
			s.rosterProvider = p
		}
	}
}

// WithRosterRefreshInterval sets how often the roster snapshot reloads.
func WithRosterRefreshInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.rosterRefresh = interval
		}
	}
}

// WithQueueSize sets the maximum size of the ingestion queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithBatchWindow sets how long a batch stays open after its first
// submission.
func WithBatchWindow(window time.Duration) Option {
	return func(s *Service) {
		if window > 0 {
			s.batchWindow = window
		}
	}
}

// WithClassificationGate configures the screenshot classification gate.
func WithClassificationGate(enabled bool, threshold float64) Option {
	return func(s *Service) {
		s.classificationEnabled = enabled
		if threshold > 0 {
			s.classificationThreshold = threshold
		}
	}
}

// WithMatcherOptions forwards options to the roster matcher.
func WithMatcherOptions(opts ...roster.Option) Option {
	return func(s *Service) {
		s.matcherOpts = append(s.matcherOpts, opts...)
	}
}

// WithGateOptions forwards options to the validation gate.
func WithGateOptions(opts ...validation.Option) Option {
	return func(s *Service) {
		s.gateOpts = append(s.gateOpts, opts...)
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		queueSize:               10000,
		dedupeSize:              50000,
		batchWindow:             30 * time.Second,
		rosterRefresh:           5 * time.Minute,
		classificationEnabled:   true,
		classificationThreshold: 0.5,
		originLocks:             make(map[string]*sync.Mutex),
		drainDone:               make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.recognizer == nil {
		return ErrNoRecognizer
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.notifier == nil {
		s.notifier = notify.NewLogNotifier(s.logger.Named("notify"))
	}
	if s.rosterProvider == nil {
		s.rosterProvider = roster.NewStaticProvider(nil)
	}

	s.logger.Info(ctx, "starting standings validation service...")

	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.queue = ingest.NewInMemoryQueue(
		ingest.WithCapacity(s.queueSize),
	)
	s.scheduler = batch.NewScheduler(
		batch.WithWindow(s.batchWindow),
		batch.WithLogger(s.logger.Named("batch")),
	)

	s.rosters = roster.NewCache(s.rosterProvider, s.logger.Named("roster"))
	if err := s.rosters.Refresh(ctx); err != nil {
		s.logger.Warn(ctx, "initial roster load failed; starting with empty roster",
			logger.Error(err),
		)
	}

	s.pipeline = NewPipeline(
		s.recognizer,
		structuring.New(),
		s.rosters,
		roster.NewMatcher(s.matcherOpts...),
		validation.New(s.gateOpts...),
		s.store,
		s.notifier,
		WithClassification(s.classificationEnabled, s.classificationThreshold),
		WithPipelineLogger(s.logger.Named("pipeline")),
	)

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	go s.rosters.Run(runCtx, s.rosterRefresh)
	go s.drainQueue(runCtx)

	s.dispatchWG.Add(1)
	go s.dispatchBatches(runCtx)

	s.started = true
	s.logger.Info(ctx, "standings validation service started",
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Duration("batchWindow", s.batchWindow),
	)

	return nil
}

// Stop gracefully shuts down the service. Buffered submissions are
// drained, open batch windows are flushed and in-flight batches finish
// before Stop returns.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	ctx := context.Background()
	s.logger.Info(ctx, "stopping standings validation service...")

	// Stop intake, let the queue drain into the scheduler, then flush the
	// open windows and wait for the batches to finish processing.
	_ = s.queue.Close()
	<-s.drainDone
	_ = s.scheduler.Close()
	s.dispatchWG.Wait()
	s.batchesWG.Wait()

	s.cancel()

	s.logger.Info(ctx, "standings validation service stopped")
}

// drainQueue moves buffered submissions into the batch scheduler.
func (s *Service) drainQueue(ctx context.Context) {
	defer close(s.drainDone)
	for sub := range s.queue.Dequeue(ctx) {
		s.scheduler.Enqueue(ctx, sub)
	}
}

// dispatchBatches launches batch processing as windows close. Batches from
// different origins run concurrently; batches sharing an origin are
// serialized in emission order.
func (s *Service) dispatchBatches(ctx context.Context) {
	defer s.dispatchWG.Done()
	for b := range s.scheduler.Batches() {
		lock := s.originLock(b.OriginID)
		s.batchesWG.Add(1)
		go func(b model.Batch) {
			defer s.batchesWG.Done()
			lock.Lock()
			defer lock.Unlock()
			s.pipeline.ProcessBatch(ctx, b)
		}(b)
	}
}

func (s *Service) originLock(originID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.originLocks[originID]
	if !ok {
		lock = &sync.Mutex{}
		s.originLocks[originID] = lock
	}
	return lock
}

// Submit offers a screenshot submission to the pipeline. Duplicate
// submission ids are absorbed; a full queue reports backpressure and the
// id is released so the caller may retry.
func (s *Service) Submit(ctx context.Context, sub model.Submission) SubmitOutcome {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return SubmitNotStarted
	}

	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.ArrivalTime.IsZero() {
		sub.ArrivalTime = time.Now()
	}
	sub.State = model.StatePending

	if s.deduper.SeenAndRecord(ctx, sub.ID) {
		metrics.RecordSubmissionDuplicate()
		s.logger.Debug(ctx, "duplicate submission absorbed",
			logger.String("submissionID", sub.ID),
		)
		return SubmitDuplicate
	}

	if !s.queue.Enqueue(ctx, sub) {
		s.deduper.Unrecord(ctx, sub.ID)
		return SubmitBackpressure
	}

	metrics.RecordSubmissionEnqueued()
	return SubmitAccepted
}

// Result returns the stored validation result for a submission.
func (s *Service) Result(ctx context.Context, submissionID string) (model.ValidationResult, error) {
	return s.store.Get(ctx, submissionID)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"batchWindow": s.batchWindow.String(),
	}

	if s.started {
		stats["queueLength"] = s.queue.Len()
		stats["dedupeEntries"] = s.deduper.Size()
		stats["rosterEntries"] = s.rosters.Snapshot().Len()
	}

	return stats
}
