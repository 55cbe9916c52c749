package embedding

import "context"

// Provider converts text to fixed-dimension vectors. One capability
// interface covers every backend so the gateway can iterate a fallback chain.
// Implementations must be thread-safe for concurrent use.
type Provider interface {
	// Name identifies the provider for provenance and logging.
	Name() string

	// Model returns the embedding model identifier.
	Model() string

	// MaxBatchSize returns the largest batch the provider accepts per call.
	MaxBatchSize() int

	// Embed generates one vector per input text, in input order.
	// Returns an error if the call fails as a whole.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Cache stores embedding vectors under content-addressed keys. The gateway
// owns its cache explicitly; there is no global singleton, so tests can
// substitute a deterministic in-memory stand-in.
type Cache interface {
	// Get returns the cached vector for a key, if present.
	Get(key string) ([]float32, bool)

	// Set stores a vector under a key. Admission may be refused by bounded
	// implementations.
	Set(key string, vector []float32)

	// Wait blocks until pending writes are visible.
	Wait()

	// Close releases cache resources.
	Close()
}
