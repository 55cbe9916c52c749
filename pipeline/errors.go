package pipeline

import "errors"

var (
	// ErrDocumentStoreRequired is returned when no document store is provided.
	ErrDocumentStoreRequired = errors.New("document store is required")

	// ErrVectorIndexRequired is returned when no vector index is provided.
	ErrVectorIndexRequired = errors.New("vector index is required")

	// ErrKeywordIndexRequired is returned when no keyword index is provided.
	ErrKeywordIndexRequired = errors.New("keyword index is required")

	// ErrJobStoreRequired is returned when no job store is provided.
	ErrJobStoreRequired = errors.New("job store is required")

	// ErrEmbedderRequired is returned when no embedder is provided.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrInvalidMaxAttempts is returned for a non-positive retry bound.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than zero")

	// ErrInvalidTransition is returned when a job is moved to a stage its
	// current stage does not permit.
	ErrInvalidTransition = errors.New("invalid stage transition")

	// ErrJobCancelled is returned when a job is cancelled between stages.
	ErrJobCancelled = errors.New("job cancelled")

	// ErrEmptyDocumentText is returned when a submitted document has no
	// extractable text.
	ErrEmptyDocumentText = errors.New("document text is empty")
)
