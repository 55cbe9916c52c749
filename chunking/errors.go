package chunking

import "errors"

var (
	// ErrUnknownStrategy is returned for an unrecognized strategy name or value.
	ErrUnknownStrategy = errors.New("unknown chunking strategy")

	// ErrInvalidChunkSize is returned when the chunk size is not positive.
	ErrInvalidChunkSize = errors.New("invalid chunk size")

	// ErrInvalidOverlap is returned when overlap is negative or not smaller than the chunk size.
	ErrInvalidOverlap = errors.New("invalid overlap")

	// ErrInvalidStep is returned when the sliding-window step is below 1.
	ErrInvalidStep = errors.New("invalid step")

	// ErrInvalidMinSize is returned when the minimum chunk size is out of range.
	ErrInvalidMinSize = errors.New("invalid minimum chunk size")

	// ErrInvalidMaxSize is returned when the maximum chunk size is below the chunk size.
	ErrInvalidMaxSize = errors.New("invalid maximum chunk size")
)
