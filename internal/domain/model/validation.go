package model

// Status is the final verdict for a submission.
type Status string

// Terminal statuses. Rejected is reserved for classification failure;
// anything structurally parseable but imperfect routes to needs_review.
const (
	StatusAutoApproved Status = "auto_approved"
	StatusNeedsReview  Status = "needs_review"
	StatusRejected     Status = "rejected"
)

// Reason codes recorded on validation results. Reasons are rendered as
// "<code>: <detail>" strings so summaries stay human-readable while tests
// and dashboards can still key on the stable prefix.
const (
	ReasonClassificationRejected = "classification_rejected"
	ReasonExtractionFailed       = "extraction_failed"
	ReasonDuplicateRank          = "duplicate_rank"
	ReasonMissingRank            = "missing_rank"
	ReasonMatchAmbiguous         = "match_ambiguous"
	ReasonMatchNotFound          = "match_not_found"
	ReasonLowConfidence          = "low_confidence"
)

// ValidationResult is created exactly once per submission by the validation
// gate and never mutated afterward; corrections require a new submission.
type ValidationResult struct {
	SubmissionID string   `json:"submission_id"`
	Status       Status   `json:"status"`
	Confidence   float64  `json:"confidence"` // aggregate, 0..1
	Reasons      []string `json:"reasons"`    // empty on clean auto-approval
}

// RosterEntry is read-mostly reference data owned by the roster provider.
type RosterEntry struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	Aliases     []string `json:"aliases"`
}
