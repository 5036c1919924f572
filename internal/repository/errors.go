package repository

import "errors"

var (
	// ErrOverlap: a confirmed/active booking already occupies the range.
	ErrOverlap = errors.New("overlapping blocking booking")
	// ErrDuplicateRequest: borrower already holds a non-terminal booking on the listing.
	ErrDuplicateRequest = errors.New("duplicate open booking request")
	// ErrStateChanged: guarded update found the row in a different state.
	ErrStateChanged = errors.New("booking state changed")
)
