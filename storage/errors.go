package storage

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmptyNamespace is returned when a namespace argument is empty.
	// Namespace is mandatory on every read and write.
	ErrEmptyNamespace = errors.New("namespace required")

	// ErrDimensionMismatch is returned when an upserted vector's
	// dimensionality differs from the namespace's established dimensionality.
	ErrDimensionMismatch = errors.New("vector dimensionality mismatch")
)
