package recognition

import (
	"time"

	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/pkg/logger"
)

// Option applies a configuration option to the Adapter.
type Option func(*Adapter)

// WithMaxConcurrent caps how many recognition calls run at once.
func WithMaxConcurrent(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.maxConcurrent = int64(n)
		}
	}
}

// WithAttemptTimeout sets the deadline for a single recognition attempt.
func WithAttemptTimeout(timeout time.Duration) Option {
	return func(a *Adapter) {
		if timeout > 0 {
			a.attemptTimeout = timeout
		}
	}
}

// WithMaxAttempts sets how many attempts are made per backend.
func WithMaxAttempts(attempts int) Option {
	return func(a *Adapter) {
		if attempts > 0 {
			a.maxAttempts = attempts
		}
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(a *Adapter) {
		if baseDelay > 0 {
			a.retryBaseDelay = baseDelay
		}
		if maxDelay > 0 {
			a.retryMaxDelay = maxDelay
		}
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(a *Adapter) {
		if sleeper != nil {
			a.sleeper = sleeper
		}
	}
}

// WithLogger sets a custom logger for the adapter.
func WithLogger(log logger.Logger) Option {
	return func(a *Adapter) {
		if log != nil {
			a.log = log
		}
	}
}
