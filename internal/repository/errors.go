package repository

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no row scoped to the
	// requesting user. Cross-tenant lookups surface as ErrNotFound too.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateName is returned when a category name check or the
	// underlying unique index rejects an insert/update.
	ErrDuplicateName = errors.New("duplicate category name")

	// ErrLimitReached is returned by the guarded category insert when the
	// user already holds the maximum number of visible categories.
	ErrLimitReached = errors.New("category limit reached")
)
