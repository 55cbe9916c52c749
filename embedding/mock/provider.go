package mock

import (
	"context"
	"hash/fnv"
	"math"
	"sync"
)

// DefaultDimension is the vector size produced by default.
const DefaultDimension = 384

// Provider is a test double for embedding.Provider.
// It allows custom behavior injection via function fields.
type Provider struct {
	// EmbedFunc is called by Embed if set.
	// If nil, uses default deterministic behavior.
	EmbedFunc func(ctx context.Context, texts []string) ([][]float32, error)

	// ProviderName overrides the reported name. Defaults to "mock".
	ProviderName string

	// ModelName overrides the reported model. Defaults to "mock-model".
	ModelName string

	// Dimension overrides the vector size. Defaults to DefaultDimension.
	Dimension int

	// BatchSize overrides the reported batch limit. Defaults to 32.
	BatchSize int

	mu        sync.Mutex
	callCount int
}

// NewProvider creates a mock provider with default deterministic behavior.
func NewProvider() *Provider {
	return &Provider{}
}

// Name identifies the provider.
func (m *Provider) Name() string {
	if m.ProviderName != "" {
		return m.ProviderName
	}
	return "mock"
}

// Model returns the embedding model identifier.
func (m *Provider) Model() string {
	if m.ModelName != "" {
		return m.ModelName
	}
	return "mock-model"
}

// MaxBatchSize returns the per-call batch limit.
func (m *Provider) MaxBatchSize() int {
	if m.BatchSize > 0 {
		return m.BatchSize
	}
	return 32
}

// Embed generates deterministic embeddings for the texts.
func (m *Provider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.EmbedFunc != nil {
		return m.EmbedFunc(ctx, texts)
	}

	dim := m.Dimension
	if dim < 1 {
		dim = DefaultDimension
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = DeterministicVector(text, dim)
	}
	return vectors, nil
}

// CallCount returns the number of times Embed was called.
func (m *Provider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *Provider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.EmbedFunc = nil
}

// DeterministicVector creates a deterministic embedding vector from text.
// It uses FNV hash to ensure the same text always produces the same vector.
func DeterministicVector(text string, dim int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vector := make([]float32, dim)
	for i := 0; i < dim; i++ {
		seed = seed*1664525 + 1013904223 // LCG constants
		vector[i] = float32(seed%1000) / 1000.0
	}

	// Normalize to unit length so cosine scoring behaves.
	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares > 0 {
		norm := float32(1.0 / math.Sqrt(sumSquares))
		for i := range vector {
			vector[i] *= norm
		}
	}

	return vector
}
