package roster

import (
	"sort"

	"github.com/agnivade/levenshtein"

	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/domain/model"
)

// Default matcher thresholds.
const (
	defaultMinFloor  = 0.6
	defaultTieMargin = 0.02
)

// Candidate is one roster identity scored against an extracted name.
type Candidate struct {
	RosterID string
	Alias    string  // the alias that produced the score
	Score    float64 // 0..1
}

// Matcher resolves extracted names to roster identities. It never mutates
// the snapshot it reads.
type Matcher struct {
	minFloor  float64
	tieMargin float64
}

// NewMatcher creates a matcher with configuration options.
func NewMatcher(opts ...Option) *Matcher {
	m := &Matcher{
		minFloor:  defaultMinFloor,
		tieMargin: defaultTieMargin,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Candidates scores name against every roster entry, keeping the best alias
// per entry. The result is sorted best-first with roster id as tie-breaker.
func (m *Matcher) Candidates(snap *Snapshot, name string) []Candidate {
	key := Normalize(name)
	if key == "" || snap == nil {
		return nil
	}

	best := make(map[string]Candidate)
	for _, ak := range snap.aliases {
		score := similarity(key, ak.alias)
		if score < m.minFloor {
			continue
		}
		if cur, ok := best[ak.rosterID]; !ok || score > cur.Score {
			best[ak.rosterID] = Candidate{RosterID: ak.rosterID, Alias: ak.alias, Score: score}
		}
	}

	out := make([]Candidate, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].RosterID < out[j].RosterID
	})
	return out
}

// Match resolves one placement record's raw name against the snapshot.
// Exact normalized alias matches score 1.0 and take precedence; otherwise
// the best fuzzy score above the floor is kept. Top candidates within the
// tie margin of each other are declared ambiguous rather than guessed.
func (m *Matcher) Match(snap *Snapshot, rec model.PlacementRecord) model.MatchResult {
	res := model.MatchResult{
		Rank:    rec.Rank,
		RawName: rec.RawName,
		Method:  model.MatchNone,
	}

	key := Normalize(rec.RawName)
	if key == "" || snap == nil {
		return res
	}

	if ids := snap.exact[key]; len(ids) > 0 {
		res.Method = model.MatchExact
		res.Confidence = 1.0
		if len(ids) == 1 {
			res.RosterID = ids[0]
		} else {
			// Two roster entries share this alias; refuse to guess.
			res.Ambiguous = true
		}
		return res
	}

	cands := m.Candidates(snap, rec.RawName)
	if len(cands) == 0 {
		return res
	}

	res.Method = model.MatchFuzzy
	res.Confidence = cands[0].Score
	if len(cands) > 1 && cands[0].Score-cands[1].Score < m.tieMargin {
		res.Ambiguous = true
		return res
	}
	res.RosterID = cands[0].RosterID
	return res
}

// similarity converts levenshtein distance into a 0..1 score normalized by
// the longer string's rune length.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la := len([]rune(a))
	lb := len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	score := 1 - float64(dist)/float64(longest)
	if score < 0 {
		return 0
	}
	return score
}
