package notify

import (
	"context"

	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/domain/model"
	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/pkg/logger"
)

// LogNotifier writes batch summaries to the log. It is the default when no
// webhook is configured.
type LogNotifier struct {
	log logger.Logger
}

// NewLogNotifier creates a notifier writing through the given logger.
func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Notify logs the summary.
func (n *LogNotifier) Notify(ctx context.Context, summary model.BatchSummary) error {
	n.log.Info(ctx, "batch processed",
		logger.String("batchID", summary.BatchID),
		logger.String("originID", summary.OriginID),
		logger.Int("total", summary.Total),
		logger.Int("autoApproved", summary.AutoApproved),
		logger.Int("needsReview", summary.NeedsReview),
		logger.Int("rejected", summary.Rejected),
		logger.Float64("avgConfidence", summary.AvgConfidence),
	)
	return nil
}
