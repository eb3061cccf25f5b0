// Package repository persists validation results.
package repository

import (
	"context"
	"errors"

	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/domain/model"
)

var (
	// ErrNotFound indicates no result is stored for the submission.
	ErrNotFound = errors.New("validation result not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("store closed")
)

// Store persists validation results keyed by submission id. Save is an
// upsert: re-saving the same submission replaces the previous row instead
// of duplicating it.
type Store interface {
	Save(ctx context.Context, result model.ValidationResult) error
	Get(ctx context.Context, submissionID string) (model.ValidationResult, error)
	Close() error
}
