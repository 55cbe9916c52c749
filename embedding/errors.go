package embedding

import "errors"

var (
	// ErrNoProviders is returned when a gateway is created without providers.
	ErrNoProviders = errors.New("at least one embedding provider required")

	// ErrAllProvidersFailed is returned when every provider in the fallback
	// chain failed for a batch.
	ErrAllProvidersFailed = errors.New("all embedding providers failed")

	// ErrResultCountMismatch is returned when a provider returns a different
	// number of vectors than texts submitted.
	ErrResultCountMismatch = errors.New("embedding result count mismatch")
)
