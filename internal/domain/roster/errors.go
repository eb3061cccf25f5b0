package roster

import "errors"

// Sentinel kinds for roster errors.
var (
	ErrRosterUnavailable = errors.New("roster unavailable")
)
