package model

import "time"

// Batch is a time-boxed group of submissions sharing one origin.
// The submission slice preserves arrival order; ordering is used for
// diagnostics and notification rendering, never for correctness.
type Batch struct {
	ID          string
	OriginID    string
	OpenedAt    time.Time
	ClosedAt    time.Time // set once when the window closes, never reopened
	Submissions []Submission
}

// SubmissionFailure pairs a non-auto-approved submission with its reasons
// for the batch summary.
type SubmissionFailure struct {
	SubmissionID string   `json:"submission_id"`
	Status       Status   `json:"status"`
	Reasons      []string `json:"reasons"`
}

// BatchSummary is handed to the notifier after a batch finishes processing.
// Total always equals AutoApproved + NeedsReview + Rejected.
type BatchSummary struct {
	BatchID       string              `json:"batch_id"`
	OriginID      string              `json:"origin_id"`
	Total         int                 `json:"total"`
	AutoApproved  int                 `json:"auto_approved"`
	NeedsReview   int                 `json:"needs_review"`
	Rejected      int                 `json:"rejected"`
	AvgConfidence float64             `json:"avg_confidence"`
	Failures      []SubmissionFailure `json:"failure_reasons"`
}
