package service

import (
	"context"
	"sync"

	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/adapters/notify"
	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/adapters/repository"
	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/domain/model"
	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/domain/roster"
	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/domain/structuring"
	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/domain/validation"
	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/pkg/logger"
	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/pkg/metrics"
)

// Recognizer is the pipeline's view of the recognition backend.
type Recognizer interface {
	Classify(ctx context.Context, imageRef string) (model.Classification, error)
	Extract(ctx context.Context, imageRef string) ([]model.Fragment, error)
}

// Pipeline walks each submission of a batch through classification,
// extraction, structuring, matching and the validation gate, then persists
// and summarizes the outcomes. Submissions within a batch are processed
// concurrently; one submission's failure never affects its siblings.
type Pipeline struct {
	recognizer Recognizer
	engine     *structuring.Engine
	rosters    *roster.Cache
	matcher    *roster.Matcher
	gate       *validation.Gate
	store      repository.Store
	notifier   notify.Notifier
	log        logger.Logger

	classificationEnabled   bool
	classificationThreshold float64
}

// PipelineOption applies a configuration option to the Pipeline.
type PipelineOption func(*Pipeline)

// WithClassification enables or disables the classification gate. When
// disabled every submission proceeds to extraction with full
// classification confidence.
func WithClassification(enabled bool, threshold float64) PipelineOption {
	return func(p *Pipeline) {
		p.classificationEnabled = enabled
		if threshold > 0 {
			p.classificationThreshold = threshold
		}
	}
}

// WithPipelineLogger sets a custom logger for the pipeline.
func WithPipelineLogger(log logger.Logger) PipelineOption {
	return func(p *Pipeline) {
		if log != nil {
			p.log = log
		}
	}
}

// NewPipeline wires the processing stages together.
func NewPipeline(
	recognizer Recognizer,
	engine *structuring.Engine,
	rosters *roster.Cache,
	matcher *roster.Matcher,
	gate *validation.Gate,
	store repository.Store,
	notifier notify.Notifier,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		recognizer:              recognizer,
		engine:                  engine,
		rosters:                 rosters,
		matcher:                 matcher,
		gate:                    gate,
		store:                   store,
		notifier:                notifier,
		classificationEnabled:   true,
		classificationThreshold: 0.5,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = logger.Get()
	}
	return p
}

// ProcessBatch runs every submission of the batch to a terminal verdict
// and returns the summary. All submissions match against the same roster
// snapshot.
func (p *Pipeline) ProcessBatch(ctx context.Context, b model.Batch) model.BatchSummary {
	snap := p.rosters.Snapshot()
	results := make([]model.ValidationResult, len(b.Submissions))

	var wg sync.WaitGroup
	for i := range b.Submissions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = p.processSubmission(ctx, &b.Submissions[i], snap)
		}(i)
	}
	wg.Wait()

	summary := summarize(b, results)
	p.log.Info(ctx, "batch processed",
		logger.String("batchID", b.ID),
		logger.String("originID", b.OriginID),
		logger.Int("total", summary.Total),
		logger.Int("autoApproved", summary.AutoApproved),
		logger.Int("needsReview", summary.NeedsReview),
		logger.Int("rejected", summary.Rejected),
	)

	if p.notifier != nil {
		if err := p.notifier.Notify(ctx, summary); err != nil {
			p.log.Error(ctx, "batch summary notification failed",
				logger.String("batchID", b.ID),
				logger.Error(err),
			)
		}
	}
	return summary
}

// processSubmission walks one submission through the stages. It always
// returns a terminal result; stage failures are folded into the verdict
// rather than propagated.
func (p *Pipeline) processSubmission(ctx context.Context, sub *model.Submission, snap *roster.Snapshot) model.ValidationResult {
	in := validation.Input{SubmissionID: sub.ID}

	// Classification gate. Disabled means every image passes at full
	// confidence.
	if p.classificationEnabled {
		classification, err := p.recognizer.Classify(ctx, sub.ImageRef)
		if err != nil {
			// No content judgment was made, so this routes to review, not
			// rejection.
			p.log.Warn(ctx, "classification unavailable",
				logger.String("submissionID", sub.ID),
				logger.Error(err),
			)
			in.ExtractionFailed = true
			in.ExtractionError = "classification unavailable: " + err.Error()
			return p.finish(ctx, sub, in)
		}
		in.ClassificationConfidence = classification.Confidence
		if !classification.Valid || classification.Confidence < p.classificationThreshold {
			metrics.RecordClassificationRejected()
			in.ClassificationRejected = true
			return p.finish(ctx, sub, in)
		}
	} else {
		metrics.RecordClassificationBypassed()
		in.ClassificationConfidence = 1.0
	}
	p.transition(ctx, sub, model.StateClassified)

	fragments, err := p.recognizer.Extract(ctx, sub.ImageRef)
	if err != nil {
		in.ExtractionFailed = true
		in.ExtractionError = err.Error()
		return p.finish(ctx, sub, in)
	}
	p.transition(ctx, sub, model.StateExtracted)

	structured := p.engine.Structure(fragments)
	in.Records = structured.Records
	in.Findings = structured.Findings
	for _, f := range structured.Findings {
		if f.Reason == model.ReasonDuplicateRank {
			metrics.RecordStructuringError()
		}
	}
	p.transition(ctx, sub, model.StateStructured)

	in.Matches = make([]model.MatchResult, len(structured.Records))
	for i, rec := range structured.Records {
		in.Matches[i] = p.matcher.Match(snap, rec)
		metrics.RecordMatchResult(string(in.Matches[i].Method))
	}
	p.transition(ctx, sub, model.StateMatched)

	return p.finish(ctx, sub, in)
}

// finish evaluates the gate, applies the terminal state, persists the
// result and records metrics.
func (p *Pipeline) finish(ctx context.Context, sub *model.Submission, in validation.Input) model.ValidationResult {
	result := p.gate.Evaluate(in)

	p.transition(ctx, sub, terminalState(result.Status))

	if err := p.store.Save(ctx, result); err != nil {
		p.log.Error(ctx, "validation result save failed",
			logger.String("submissionID", sub.ID),
			logger.Error(err),
		)
	}
	metrics.RecordValidationResult(string(result.Status), result.Confidence)
	return result
}

// transition advances the submission state, logging refusals instead of
// aborting processing.
func (p *Pipeline) transition(ctx context.Context, sub *model.Submission, next model.State) {
	if err := sub.Transition(next); err != nil {
		p.log.Error(ctx, "submission state transition refused",
			logger.String("submissionID", sub.ID),
			logger.String("from", string(sub.State)),
			logger.String("to", string(next)),
			logger.Error(err),
		)
	}
}

func terminalState(status model.Status) model.State {
	switch status {
	case model.StatusAutoApproved:
		return model.StateAutoApproved
	case model.StatusRejected:
		return model.StateRejected
	default:
		return model.StateNeedsReview
	}
}

// summarize folds per-submission results into the batch summary. The
// status counts always sum to Total.
func summarize(b model.Batch, results []model.ValidationResult) model.BatchSummary {
	summary := model.BatchSummary{
		BatchID:  b.ID,
		OriginID: b.OriginID,
		Total:    len(results),
	}

	confidenceSum := 0.0
	for _, r := range results {
		confidenceSum += r.Confidence
		switch r.Status {
		case model.StatusAutoApproved:
			summary.AutoApproved++
		case model.StatusRejected:
			summary.Rejected++
		default:
			summary.NeedsReview++
		}
		if r.Status != model.StatusAutoApproved {
			summary.Failures = append(summary.Failures, model.SubmissionFailure{
				SubmissionID: r.SubmissionID,
				Status:       r.Status,
				Reasons:      r.Reasons,
			})
		}
	}
	if summary.Total > 0 {
		summary.AvgConfidence = confidenceSum / float64(summary.Total)
	}
	return summary
}
