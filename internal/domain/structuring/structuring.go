// Package structuring turns raw recognized text fragments into ordered
// placement records.
package structuring

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/domain/model"
)

// Accepted rank marker notations: bare ordinal ("1", "1.", "1:"),
// hash-prefixed ("#1"), ordinal-suffix ("1st"), and "P"-prefixed ("P1").
var (
	ordinalMarker = regexp.MustCompile(`(?i)^#?\s*([0-9]{1,2})(?:st|nd|rd|th)?\s*[.:]?$`)
	playerMarker  = regexp.MustCompile(`(?i)^p([0-9]{1,2})$`)
)

// Finding records a rank that could not be structured cleanly. Partial
// results remain usable; completeness is judged by the validation gate.
type Finding struct {
	Rank   int
	Reason string // model.ReasonDuplicateRank or model.ReasonMissingRank
}

// Result is the outcome of structuring one submission's fragments.
type Result struct {
	Records   []model.PlacementRecord // ascending by rank, at most one per rank
	Discarded []model.PlacementRecord // tie-break losers, kept for diagnostics
	Findings  []Finding
}

// Engine pairs rank markers with name fragments by positional proximity.
// Structure is deterministic given identical input.
type Engine struct {
	maxRank int
}

// New creates a structuring engine with configuration options.
func New(opts ...Option) *Engine {
	e := &Engine{
		maxRank: model.MaxRank,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ParseRankMarker reports the rank a fragment text denotes, if any.
func ParseRankMarker(text string) (int, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}
	for _, re := range []*regexp.Regexp{playerMarker, ordinalMarker} {
		if m := re.FindStringSubmatch(text); m != nil {
			rank, err := strconv.Atoi(m[1])
			if err != nil || rank < 1 {
				return 0, false
			}
			return rank, true
		}
	}
	return 0, false
}

type pairing struct {
	markerIdx int
	nameIdx   int
	distance  float64
}

// Structure pairs each rank marker with the nearest name fragment and
// resolves collisions, emitting findings for ranks that end up with zero
// or more than one final record.
func (e *Engine) Structure(fragments []model.Fragment) Result {
	var markers []model.Fragment
	var markerRanks []int
	var names []model.Fragment

	for _, f := range fragments {
		text := strings.TrimSpace(f.Text)
		if text == "" {
			continue
		}
		if rank, ok := ParseRankMarker(text); ok {
			if rank > e.maxRank {
				// An out-of-range marker is noise, never a name.
				continue
			}
			markers = append(markers, f)
			markerRanks = append(markerRanks, rank)
			continue
		}
		names = append(names, f)
	}

	// Greedy nearest-pair assignment over all marker/name combinations.
	// Ties break on marker then name index so the result is deterministic.
	pairs := make([]pairing, 0, len(markers)*len(names))
	for mi := range markers {
		for ni := range names {
			pairs = append(pairs, pairing{
				markerIdx: mi,
				nameIdx:   ni,
				distance:  distance(markers[mi], names[ni]),
			})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].distance != pairs[j].distance {
			return pairs[i].distance < pairs[j].distance
		}
		if pairs[i].markerIdx != pairs[j].markerIdx {
			return pairs[i].markerIdx < pairs[j].markerIdx
		}
		return pairs[i].nameIdx < pairs[j].nameIdx
	})

	markerUsed := make([]bool, len(markers))
	nameUsed := make([]bool, len(names))
	candidates := make(map[int][]model.PlacementRecord, e.maxRank)
	for _, p := range pairs {
		if markerUsed[p.markerIdx] || nameUsed[p.nameIdx] {
			continue
		}
		markerUsed[p.markerIdx] = true
		nameUsed[p.nameIdx] = true

		rank := markerRanks[p.markerIdx]
		name := names[p.nameIdx]
		candidates[rank] = append(candidates[rank], model.PlacementRecord{
			Rank:       rank,
			RawName:    strings.TrimSpace(name.Text),
			X:          name.X,
			Y:          name.Y,
			Confidence: (markers[p.markerIdx].Confidence + name.Confidence) / 2,
		})
	}

	var res Result
	for rank := 1; rank <= e.maxRank; rank++ {
		cands := candidates[rank]
		switch {
		case len(cands) == 0:
			res.Findings = append(res.Findings, Finding{Rank: rank, Reason: model.ReasonMissingRank})
		case len(cands) == 1:
			res.Records = append(res.Records, cands[0])
		default:
			// Keep the higher-confidence candidate; an exact confidence tie
			// leaves the rank unresolved.
			sort.SliceStable(cands, func(i, j int) bool {
				return cands[i].Confidence > cands[j].Confidence
			})
			if cands[0].Confidence > cands[1].Confidence {
				res.Records = append(res.Records, cands[0])
				res.Discarded = append(res.Discarded, cands[1:]...)
			} else {
				res.Findings = append(res.Findings, Finding{Rank: rank, Reason: model.ReasonDuplicateRank})
				res.Discarded = append(res.Discarded, cands...)
			}
		}
	}

	return res
}

func distance(a, b model.Fragment) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}
