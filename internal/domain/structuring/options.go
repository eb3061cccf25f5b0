package structuring

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithMaxRank overrides the highest rank the engine accepts.
func WithMaxRank(maxRank int) Option {
	return func(e *Engine) {
		if maxRank > 0 {
			e.maxRank = maxRank
		}
	}
}
