// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"time"
)

// State tracks a submission's position in the validation pipeline.
// Transitions are one-directional; terminal states never change.
type State string

// Pipeline states, in stage order.
const (
	StatePending      State = "pending"
	StateClassified   State = "classified"
	StateExtracted    State = "extracted"
	StateStructured   State = "structured"
	StateMatched      State = "matched"
	StateAutoApproved State = "auto_approved"
	StateNeedsReview  State = "needs_review"
	StateRejected     State = "rejected"
)

// transitions enumerates the legal next states for each state.
var transitions = map[State][]State{
	StatePending:    {StateClassified, StateRejected, StateNeedsReview},
	StateClassified: {StateExtracted, StateNeedsReview},
	StateExtracted:  {StateStructured, StateNeedsReview},
	StateStructured: {StateMatched, StateNeedsReview},
	StateMatched:    {StateAutoApproved, StateNeedsReview},
}

// Terminal reports whether the state accepts no further transitions.
func (s State) Terminal() bool {
	switch s {
	case StateAutoApproved, StateNeedsReview, StateRejected:
		return true
	default:
		return false
	}
}

// Submission identifies one uploaded standings image.
type Submission struct {
	ID          string    // unique id, assigned by the listener
	OriginID    string    // channel/guild the image arrived from
	UploaderID  string    // user that posted the image
	ImageRef    string    // opaque handle or URL for the image
	ArrivalTime time.Time // when the listener saw the upload
	State       State
}

// Transition moves the submission to next, enforcing the one-directional
// state machine. Terminal states are immutable.
func (s *Submission) Transition(next State) error {
	if s.State.Terminal() {
		return fmt.Errorf("submission %s: %w: %s is terminal", s.ID, ErrIllegalTransition, s.State)
	}
	for _, allowed := range transitions[s.State] {
		if allowed == next {
			s.State = next
			return nil
		}
	}
	return fmt.Errorf("submission %s: %w: %s -> %s", s.ID, ErrIllegalTransition, s.State, next)
}
