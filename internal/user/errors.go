package user

import "errors"

var (
	// ErrNotFound is returned when no user matches the lookup key.
	ErrNotFound = errors.New("user not found")

	// ErrDuplicateEmail is returned when an insert loses the race against a
	// concurrent creation for the same email. Callers treat it as "the other
	// path won" and retry as an update.
	ErrDuplicateEmail = errors.New("user with this email already exists")
)
