package model

// MaxRank is the number of placements a complete standings image carries.
const MaxRank = 8

// Fragment is one piece of recognized text with its positional hint,
// as returned by the external recognition service.
type Fragment struct {
	Text       string  `json:"text"`
	X          float64 `json:"x"` // positional hint, image coordinates
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence"` // 0..1
}

// Classification is the verdict of the admissibility classifier.
type Classification struct {
	Valid      bool    `json:"valid"`
	Confidence float64 `json:"confidence"` // 0..1
}

// PlacementRecord is one extracted rank-to-name candidate.
// Within one submission's structured result no two records share a rank.
type PlacementRecord struct {
	Rank       int     // 1..MaxRank
	RawName    string  // extracted name text, as recognized
	X          float64 // positional hint of the name fragment
	Y          float64
	Confidence float64 // extraction confidence, 0..1
}

// MatchMethod records how a name was resolved against the roster.
type MatchMethod string

// Match methods.
const (
	MatchExact MatchMethod = "exact"
	MatchFuzzy MatchMethod = "fuzzy"
	MatchNone  MatchMethod = "none"
)

// MatchResult binds a PlacementRecord to a roster identity. RosterID is
// empty when the name was unmatched or the match was ambiguous.
type MatchResult struct {
	Rank       int
	RawName    string
	RosterID   string
	Confidence float64
	Method     MatchMethod
	Ambiguous  bool
}
