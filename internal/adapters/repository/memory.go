package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/domain/model"
)

// MemoryStore is an in-process Store for tests and ephemeral deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	results map[string]model.ValidationResult
	closed  bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		results: make(map[string]model.ValidationResult),
	}
}

// Save upserts the result keyed by submission id.
func (s *MemoryStore) Save(ctx context.Context, result model.ValidationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	s.results[result.SubmissionID] = result
	return nil
}

// Get returns the stored result for the submission.
func (s *MemoryStore) Get(ctx context.Context, submissionID string) (model.ValidationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return model.ValidationResult{}, ErrStoreClosed
	}
	result, ok := s.results[submissionID]
	if !ok {
		return model.ValidationResult{}, fmt.Errorf("%w: %s", ErrNotFound, submissionID)
	}
	return result, nil
}

// Len returns the number of stored results.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}

// Close marks the store closed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
