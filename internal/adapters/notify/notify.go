// Package notify publishes batch summaries to interested consumers.
package notify

import (
	"context"

	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/domain/model"
)

// Notifier receives exactly one summary per processed batch.
type Notifier interface {
	Notify(ctx context.Context, summary model.BatchSummary) error
}
