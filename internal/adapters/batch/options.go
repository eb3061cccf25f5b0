package batch

import (
	"time"

	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/pkg/logger"
)

// Option applies a configuration option to the Scheduler.
type Option func(*Scheduler)

// WithWindow sets how long a batch window stays open after its first
// submission.
func WithWindow(window time.Duration) Option {
	return func(s *Scheduler) {
		if window > 0 {
			s.window = window
		}
	}
}

// WithOutputBuffer sets the emitted-batch channel buffer size.
func WithOutputBuffer(size int) Option {
	return func(s *Scheduler) {
		if size > 0 {
			s.outputBuffer = size
		}
	}
}

// WithLogger sets a custom logger for the scheduler.
func WithLogger(log logger.Logger) Option {
	return func(s *Scheduler) {
		if log != nil {
			s.log = log
		}
	}
}
