package roster

// Option applies a configuration option to the Matcher.
type Option func(*Matcher)

// WithMinFloor sets the minimum similarity for a fuzzy match to count.
func WithMinFloor(floor float64) Option {
	return func(m *Matcher) {
		if floor >= 0 && floor <= 1 {
			m.minFloor = floor
		}
	}
}

// WithTieMargin sets the absolute score margin under which the top two
// candidates are considered ambiguous.
func WithTieMargin(margin float64) Option {
	return func(m *Matcher) {
		if margin >= 0 && margin <= 1 {
			m.tieMargin = margin
		}
	}
}

// WithTieMarginPercent sets the tie margin from a percentage value, e.g.
// 2 -> 0.02.
func WithTieMarginPercent(percent float64) Option {
	return WithTieMargin(percent / 100)
}
