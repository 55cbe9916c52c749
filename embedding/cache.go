package embedding

import (
	"encoding/hex"
	"sync"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/go-crypt/x/blake2b"
)

// CacheKey builds the content-addressed cache key for a (provider, model,
// text) triple. Identical content shares cache entries across documents
// within a namespace.
func CacheKey(provider, model, text string) string {
	h, _ := blake2b.New(16, nil)
	h.Write([]byte(provider))
	h.Write([]byte{0})
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// RistrettoCache is a bounded, cost-aware embedding cache.
type RistrettoCache struct {
	cache *ristretto.Cache[string, []float32]
}

var _ Cache = (*RistrettoCache)(nil)

// NewRistrettoCache creates a cache bounded to roughly maxBytes of vector
// data. Cost accounting uses 4 bytes per vector component.
func NewRistrettoCache(maxBytes int64) (*RistrettoCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, []float32]{
		NumCounters: 100_000,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &RistrettoCache{cache: cache}, nil
}

// Get returns the cached vector for a key, if present.
func (c *RistrettoCache) Get(key string) ([]float32, bool) {
	return c.cache.Get(key)
}

// Set stores a vector under a key, costed by its byte size.
func (c *RistrettoCache) Set(key string, vector []float32) {
	c.cache.Set(key, vector, int64(4*len(vector)))
}

// Wait blocks until pending writes are visible.
func (c *RistrettoCache) Wait() {
	c.cache.Wait()
}

// Close releases cache resources.
func (c *RistrettoCache) Close() {
	c.cache.Close()
}

// MemoryCache is an unbounded map-backed cache with deterministic admission.
// Intended for tests.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]float32
}

var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]float32)}
}

// Get returns the cached vector for a key, if present.
func (c *MemoryCache) Get(key string) ([]float32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	vector, ok := c.entries[key]
	return vector, ok
}

// Set stores a vector under a key.
func (c *MemoryCache) Set(key string, vector []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = vector
}

// Wait is a no-op.
func (c *MemoryCache) Wait() {}

// Close clears the cache.
func (c *MemoryCache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]float32)
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
