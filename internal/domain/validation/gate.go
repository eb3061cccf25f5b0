// Package validation decides the terminal status of a submission.
package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/domain/model"
	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/domain/structuring"
)

// Default gate configuration.
const (
	defaultAutoApproveThreshold = 0.85
)

// Input carries everything the gate needs to judge one submission. The gate
// is the only place a ValidationResult is created.
type Input struct {
	SubmissionID string

	ClassificationConfidence float64
	ClassificationRejected   bool

	ExtractionFailed bool
	ExtractionError  string // human-readable detail when ExtractionFailed

	Records  []model.PlacementRecord
	Findings []structuring.Finding
	Matches  []model.MatchResult
}

// Gate evaluates submissions into exactly one terminal verdict. It holds no
// mutable state; identical inputs always produce identical results.
type Gate struct {
	autoApproveThreshold float64
	requiredRanks        int
}

// New creates a validation gate with configuration options.
func New(opts ...Option) *Gate {
	g := &Gate{
		autoApproveThreshold: defaultAutoApproveThreshold,
		requiredRanks:        model.MaxRank,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Evaluate produces the single ValidationResult for a submission. Every
// contributing reason is enumerated, never just the first one found.
func (g *Gate) Evaluate(in Input) model.ValidationResult {
	res := model.ValidationResult{
		SubmissionID: in.SubmissionID,
		Reasons:      []string{},
	}

	// Rejected is reserved for classification failure; everything else that
	// parses structurally routes to needs_review.
	if in.ClassificationRejected {
		res.Status = model.StatusRejected
		res.Confidence = in.ClassificationConfidence
		res.Reasons = append(res.Reasons, fmt.Sprintf("%s: confidence %.2f", model.ReasonClassificationRejected, in.ClassificationConfidence))
		return res
	}

	if in.ExtractionFailed {
		res.Status = model.StatusNeedsReview
		detail := in.ExtractionError
		if detail == "" {
			detail = "retries exhausted"
		}
		res.Reasons = append(res.Reasons, fmt.Sprintf("%s: %s", model.ReasonExtractionFailed, detail))
		return res
	}

	if missing := g.missingRanks(in.Records); len(missing) > 0 {
		res.Reasons = append(res.Reasons, fmt.Sprintf("%s: ranks %s", model.ReasonMissingRank, formatRanks(missing)))
	}
	for _, f := range in.Findings {
		if f.Reason == model.ReasonDuplicateRank {
			res.Reasons = append(res.Reasons, fmt.Sprintf("%s: rank %d", model.ReasonDuplicateRank, f.Rank))
		}
	}

	for _, m := range in.Matches {
		switch {
		case m.Ambiguous:
			res.Reasons = append(res.Reasons, fmt.Sprintf("%s: rank %d %q", model.ReasonMatchAmbiguous, m.Rank, m.RawName))
		case m.RosterID == "":
			res.Reasons = append(res.Reasons, fmt.Sprintf("%s: rank %d %q", model.ReasonMatchNotFound, m.Rank, m.RawName))
		}
	}

	res.Confidence = g.aggregate(in)
	if res.Confidence < g.autoApproveThreshold {
		res.Reasons = append(res.Reasons, fmt.Sprintf("%s: aggregate %.2f below threshold %.2f", model.ReasonLowConfidence, res.Confidence, g.autoApproveThreshold))
	}

	if len(res.Reasons) == 0 {
		res.Status = model.StatusAutoApproved
	} else {
		res.Status = model.StatusNeedsReview
	}
	return res
}

// aggregate combines stage confidences deterministically: the minimum of
// classification confidence, average extraction confidence, and average
// match confidence.
func (g *Gate) aggregate(in Input) float64 {
	agg := in.ClassificationConfidence
	if ext := average(recordConfidences(in.Records)); ext < agg {
		agg = ext
	}
	if match := average(matchConfidences(in.Matches)); match < agg {
		agg = match
	}
	return agg
}

// missingRanks derives the absent ranks from the final records rather than
// trusting upstream findings, so the gate stays auditable in isolation.
func (g *Gate) missingRanks(records []model.PlacementRecord) []int {
	present := make(map[int]bool, len(records))
	for _, r := range records {
		present[r.Rank] = true
	}
	var ranks []int
	for rank := 1; rank <= g.requiredRanks; rank++ {
		if !present[rank] {
			ranks = append(ranks, rank)
		}
	}
	return ranks
}

func formatRanks(ranks []int) string {
	parts := make([]string, len(ranks))
	for i, r := range ranks {
		parts[i] = strconv.Itoa(r)
	}
	return strings.Join(parts, ", ")
}

func recordConfidences(records []model.PlacementRecord) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.Confidence
	}
	return out
}

func matchConfidences(matches []model.MatchResult) []float64 {
	out := make([]float64, len(matches))
	for i, m := range matches {
		out[i] = m.Confidence
	}
	return out
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
