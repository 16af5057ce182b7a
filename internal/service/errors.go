package service

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")

	// ErrNotLinked means the user has no provider credential yet.
	ErrNotLinked = errors.New("no linked bank account")

	ErrTransactionNotFound = errors.New("transaction not found")
	ErrCategoryNotFound    = errors.New("category not found")

	ErrInvalidCategoryName = errors.New("category name must be between 1 and 50 characters")
	ErrCategoryExists      = errors.New("a category with this name already exists")
	ErrCategoryLimit       = errors.New("category limit reached")
	// ErrSystemCategory guards the hidden Uncategorized and the Income
	// buckets against rename and delete.
	ErrSystemCategory = errors.New("system categories cannot be modified")

	// ErrNotBootstrapped means a reconciliation pass ran before the user's
	// default categories were created. That is a caller bug: linking must
	// bootstrap defaults first.
	ErrNotBootstrapped = errors.New("default categories missing for user")
)
