package booking

import "errors"

var (
	ErrNotFound     = errors.New("booking or listing not found")
	ErrForbidden    = errors.New("actor lacks the required relationship")
	ErrInvalidState = errors.New("transition not legal from current status")
	ErrConflict     = errors.New("overlapping booking or duplicate active request")
	ErrInvalidRange = errors.New("malformed or past date range")
	ErrValidation   = errors.New("validation error")
)
