package validation

// Option applies a configuration option to the Gate.
type Option func(*Gate)

// WithAutoApproveThreshold sets the minimum aggregate confidence for
// auto-approval.
func WithAutoApproveThreshold(threshold float64) Option {
	return func(g *Gate) {
		if threshold >= 0 && threshold <= 1 {
			g.autoApproveThreshold = threshold
		}
	}
}

// WithRequiredRanks overrides how many distinct ranks a complete result
// carries.
func WithRequiredRanks(n int) Option {
	return func(g *Gate) {
		if n > 0 {
			g.requiredRanks = n
		}
	}
}
