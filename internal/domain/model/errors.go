package model

import "errors"

// Sentinel kinds for domain model errors.
var (
	ErrIllegalTransition = errors.New("illegal state transition")
)
