package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/domain/model"
	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/pkg/metrics"
)

const schema = `
CREATE TABLE IF NOT EXISTS validation_results (
    submission_id TEXT PRIMARY KEY,
    status        TEXT NOT NULL,
    confidence    REAL NOT NULL,
    reasons       TEXT NOT NULL,
    updated_at    TEXT NOT NULL
);
`

// SQLiteStore is a Store backed by a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path and applies the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Save upserts the result keyed by submission id.
func (s *SQLiteStore) Save(ctx context.Context, result model.ValidationResult) error {
	reasons, err := json.Marshal(result.Reasons)
	if err != nil {
		return fmt.Errorf("encode reasons: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO validation_results (submission_id, status, confidence, reasons, updated_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(submission_id) DO UPDATE SET
             status = excluded.status,
             confidence = excluded.confidence,
             reasons = excluded.reasons,
             updated_at = excluded.updated_at`,
		result.SubmissionID,
		string(result.Status),
		result.Confidence,
		string(reasons),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		metrics.RecordPersistenceError()
		return fmt.Errorf("save validation result: %w", err)
	}
	return nil
}

// Get returns the stored result for the submission.
func (s *SQLiteStore) Get(ctx context.Context, submissionID string) (model.ValidationResult, error) {
	var (
		result  model.ValidationResult
		status  string
		reasons string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT submission_id, status, confidence, reasons
         FROM validation_results WHERE submission_id = ?`,
		submissionID,
	).Scan(&result.SubmissionID, &status, &result.Confidence, &reasons)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ValidationResult{}, fmt.Errorf("%w: %s", ErrNotFound, submissionID)
	}
	if err != nil {
		return model.ValidationResult{}, fmt.Errorf("load validation result: %w", err)
	}

	result.Status = model.Status(status)
	if err := json.Unmarshal([]byte(reasons), &result.Reasons); err != nil {
		return model.ValidationResult{}, fmt.Errorf("decode reasons: %w", err)
	}
	return result, nil
}

// Count returns the number of stored results.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM validation_results`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count validation results: %w", err)
	}
	return n, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
