package activity

import "errors"

// Sentinel kinds for registry errors. Callers match with errors.Is.
var (
	ErrNotFound          = errors.New("activity not found")
	ErrAlreadyRegistered = errors.New("participant already registered")
	ErrNotRegistered     = errors.New("participant not registered")
	ErrActivityFull      = errors.New("activity is full")
	ErrInvalidActivity   = errors.New("invalid activity")
	ErrDuplicateActivity = errors.New("duplicate activity name")
)
