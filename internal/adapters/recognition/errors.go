package recognition

import "errors"

var (
	// ErrTimeout indicates a recognition attempt exceeded its deadline.
	ErrTimeout = errors.New("recognition timed out")

	// ErrQuotaExceeded indicates the recognition backend rate-limited us.
	ErrQuotaExceeded = errors.New("recognition quota exceeded")

	// ErrUnavailable indicates the recognition backend is down or overloaded.
	ErrUnavailable = errors.New("recognition service unavailable")

	// ErrRetriesExhausted indicates every attempt against every configured
	// backend failed.
	ErrRetriesExhausted = errors.New("recognition retries exhausted")
)
