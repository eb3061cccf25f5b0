package recognition

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/domain/model"
	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/pkg/logger"
	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/pkg/metrics"
)

// Default adapter configuration constants.
const (
	defaultMaxConcurrent  = 4
	defaultAttemptTimeout = 20 * time.Second
	defaultMaxAttempts    = 3
	defaultRetryBaseDelay = 500 * time.Millisecond
	defaultRetryMaxDelay  = 8 * time.Second
)

// Adapter wraps one or more Recognizers with a concurrency cap, a
// per-attempt deadline and bounded retries with exponential backoff.
// Extraction walks the backends in order; a backend whose retries are
// exhausted hands over to the next one.
type Adapter struct {
	backends []Recognizer
	sem      *semaphore.Weighted
	log      logger.Logger

	maxConcurrent  int64
	attemptTimeout time.Duration
	maxAttempts    int
	retryBaseDelay time.Duration
	retryMaxDelay  time.Duration
	sleeper        func(time.Duration)

	inFlight atomic.Int64
}

// NewAdapter creates an adapter over the given backends. The first backend
// is the primary, the rest are fallbacks in order.
func NewAdapter(backends []Recognizer, opts ...Option) *Adapter {
	a := &Adapter{
		backends:       backends,
		maxConcurrent:  defaultMaxConcurrent,
		attemptTimeout: defaultAttemptTimeout,
		maxAttempts:    defaultMaxAttempts,
		retryBaseDelay: defaultRetryBaseDelay,
		retryMaxDelay:  defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.sem = semaphore.NewWeighted(a.maxConcurrent)
	return a
}

// Classify runs the primary backend's classifier under the shared
// concurrency cap.
func (a *Adapter) Classify(ctx context.Context, imageRef string) (model.Classification, error) {
	if len(a.backends) == 0 {
		return model.Classification{}, fmt.Errorf("%w: no backends configured", ErrUnavailable)
	}
	if err := a.sem.Acquire(ctx, 1); err != nil {
		return model.Classification{}, fmt.Errorf("recognition classify: %w", err)
	}
	defer a.sem.Release(1)

	var result model.Classification
	err := a.withRetry(ctx, func(attemptCtx context.Context) error {
		var err error
		result, err = a.backends[0].Classify(attemptCtx, imageRef)
		return err
	})
	if err != nil {
		return model.Classification{}, err
	}
	return result, nil
}

// Extract runs fragment extraction under the concurrency cap, walking the
// backend chain until one succeeds.
func (a *Adapter) Extract(ctx context.Context, imageRef string) ([]model.Fragment, error) {
	if len(a.backends) == 0 {
		return nil, fmt.Errorf("%w: no backends configured", ErrUnavailable)
	}
	if err := a.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("recognition extract: %w", err)
	}
	defer a.sem.Release(1)

	metrics.UpdateExtractionsInFlight(int(a.inFlight.Add(1)))
	defer func() {
		metrics.UpdateExtractionsInFlight(int(a.inFlight.Add(-1)))
	}()

	start := time.Now()
	var last error
	for i, backend := range a.backends {
		var fragments []model.Fragment
		err := a.withRetry(ctx, func(attemptCtx context.Context) error {
			var err error
			fragments, err = backend.Extract(attemptCtx, imageRef)
			return err
		})
		if err == nil {
			metrics.RecordExtractionLatency(float64(time.Since(start).Milliseconds()))
			return fragments, nil
		}
		last = err
		if ctx.Err() != nil {
			break
		}
		if a.log != nil && i < len(a.backends)-1 {
			a.log.Warn(ctx, "extraction backend exhausted; trying fallback",
				logger.Int("backend", i),
				logger.Error(err),
			)
		}
	}

	metrics.RecordExtractionFailure(failureKind(last))
	return nil, fmt.Errorf("%w: %v", ErrRetriesExhausted, last)
}

// withRetry runs op with a per-attempt deadline, retrying transient
// failures with exponential backoff up to the attempt limit.
func (a *Adapter) withRetry(ctx context.Context, op func(context.Context) error) error {
	var last error
	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		metrics.RecordExtractionAttempt()

		attemptCtx, cancel := context.WithTimeout(ctx, a.attemptTimeout)
		err := op(attemptCtx)
		if err != nil && attemptCtx.Err() == context.DeadlineExceeded && !errors.Is(err, ErrTimeout) {
			err = fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		cancel()

		if err == nil {
			return nil
		}
		last = err

		if !retryable(err) || attempt == a.maxAttempts || ctx.Err() != nil {
			break
		}
		metrics.RecordExtractionRetry()
		a.sleep(ctx, a.backoffDelay(attempt))
	}
	return last
}

func retryable(err error) bool {
	return errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrUnavailable) ||
		errors.Is(err, ErrQuotaExceeded)
}

// failureKind names the failure class for metrics labels.
func failureKind(err error) string {
	switch {
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrQuotaExceeded):
		return "quota"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "other"
	}
}

// backoffDelay doubles from the base per completed attempt, capped at the
// max delay.
func (a *Adapter) backoffDelay(attempt int) time.Duration {
	delay := a.retryBaseDelay
	for i := 1; i < attempt; i++ {
		if delay > a.retryMaxDelay/2 {
			return a.retryMaxDelay
		}
		delay *= 2
	}
	if delay > a.retryMaxDelay {
		return a.retryMaxDelay
	}
	return delay
}

func (a *Adapter) sleep(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	if a.sleeper != nil {
		a.sleeper(delay)
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
