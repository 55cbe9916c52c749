// Copyright 2025 EthosPrompt
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/Uththunga/Ethos-Prompt-sub003/core"
)

const (
	// DefaultFailureThreshold is the number of consecutive provider failures
	// before its circuit opens.
	DefaultFailureThreshold = 3

	// DefaultCooldown is how long an open circuit skips its provider before
	// allowing a trial call.
	DefaultCooldown = 30 * time.Second
)

// chainLink couples one provider with its circuit breaker and rate limiter.
type chainLink struct {
	provider Provider
	breaker  *circuitBreaker
	limiter  *rate.Limiter
}

// Gateway routes embedding requests through an ordered provider chain with
// caching and per-provider failure isolation. The chain order is the fallback
// order: a batch goes to the first available provider, and moves down the
// chain only when that provider fails or its circuit is open.
type Gateway struct {
	chain            []*chainLink
	cache            Cache
	logger           *slog.Logger
	failureThreshold int
	cooldown         time.Duration
	rateLimit        rate.Limit
	rateBurst        int
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway) error

// WithCache sets the embedding cache. Defaults to an unbounded in-memory
// cache when not set.
func WithCache(cache Cache) GatewayOption {
	return func(g *Gateway) error {
		if cache == nil {
			return fmt.Errorf("%w: nil cache", core.ErrConfiguration)
		}
		g.cache = cache
		return nil
	}
}

// WithGatewayLogger sets the logger used by the gateway.
func WithGatewayLogger(logger *slog.Logger) GatewayOption {
	return func(g *Gateway) error {
		if logger == nil {
			return fmt.Errorf("%w: nil logger", core.ErrConfiguration)
		}
		g.logger = logger.With("component", "embedding-gateway")
		return nil
	}
}

// WithCircuitPolicy overrides the failure threshold and cooldown applied to
// every provider's circuit breaker.
func WithCircuitPolicy(failureThreshold int, cooldown time.Duration) GatewayOption {
	return func(g *Gateway) error {
		if failureThreshold < 1 {
			return fmt.Errorf("%w: failure threshold must be at least 1", core.ErrConfiguration)
		}
		if cooldown <= 0 {
			return fmt.Errorf("%w: cooldown must be positive", core.ErrConfiguration)
		}
		g.failureThreshold = failureThreshold
		g.cooldown = cooldown
		return nil
	}
}

// WithRateLimit applies a per-provider request rate limit. Zero disables
// limiting, which is the default.
func WithRateLimit(requestsPerSecond float64, burst int) GatewayOption {
	return func(g *Gateway) error {
		if requestsPerSecond < 0 || burst < 0 {
			return fmt.Errorf("%w: rate limit must not be negative", core.ErrConfiguration)
		}
		g.rateLimit = rate.Limit(requestsPerSecond)
		g.rateBurst = burst
		return nil
	}
}

// NewGateway creates a gateway over an ordered provider fallback chain.
func NewGateway(providers []Provider, opts ...GatewayOption) (*Gateway, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("%w: %w", core.ErrConfiguration, ErrNoProviders)
	}

	g := &Gateway{
		logger:           slog.Default().With("component", "embedding-gateway"),
		failureThreshold: DefaultFailureThreshold,
		cooldown:         DefaultCooldown,
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	if g.cache == nil {
		g.cache = NewMemoryCache()
	}

	for _, p := range providers {
		if p == nil {
			return nil, fmt.Errorf("%w: nil provider in chain", core.ErrConfiguration)
		}
		link := &chainLink{
			provider: p,
			breaker:  newCircuitBreaker(g.failureThreshold, g.cooldown),
		}
		if g.rateLimit > 0 {
			link.limiter = rate.NewLimiter(g.rateLimit, g.rateBurst)
		}
		g.chain = append(g.chain, link)
	}

	return g, nil
}

// Close releases the gateway's cache.
func (g *Gateway) Close() {
	g.cache.Close()
}

// Embed generates one vector per input text, in input order. Cached texts are
// served without a provider call; misses are batched per provider limits and
// routed through the fallback chain. Partial failure is reported per item:
// the returned error wraps core.ErrPartialBatch when some items failed and
// core.ErrProvider when all did, while successful items remain usable either
// way.
func (g *Gateway) Embed(ctx context.Context, texts []string) ([]Result, error) {
	results := make([]Result, len(texts))
	var misses []int

	for i, text := range texts {
		results[i] = Result{Index: i}
		if hit, ok := g.lookupCached(text); ok {
			results[i].Vector = hit.Vector
			results[i].Provider = hit.Provider
			results[i].Model = hit.Model
			results[i].Cached = true
			continue
		}
		misses = append(misses, i)
	}

	if len(misses) > 0 {
		g.embedMisses(ctx, texts, misses, results)
	}

	var failed int
	for i := range results {
		if results[i].Err != nil {
			failed++
		}
	}
	switch {
	case failed == 0:
		return results, nil
	case failed == len(results):
		return results, fmt.Errorf("%w: %w: %d texts", core.ErrProvider, ErrAllProvidersFailed, failed)
	default:
		return results, fmt.Errorf("%w: %d of %d texts failed", core.ErrPartialBatch, failed, len(results))
	}
}

// EmbedText embeds a single text and returns its vector.
func (g *Gateway) EmbedText(ctx context.Context, text string) ([]float32, error) {
	results, err := g.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return results[0].Vector, nil
}

// lookupCached probes the cache across the chain in fallback order, so a hit
// carries the provenance of the provider that originally produced it.
func (g *Gateway) lookupCached(text string) (Result, bool) {
	for _, link := range g.chain {
		name := link.provider.Name()
		model := link.provider.Model()
		if vector, ok := g.cache.Get(CacheKey(name, model, text)); ok {
			return Result{Vector: vector, Provider: name, Model: model}, true
		}
	}
	return Result{}, false
}

// embedMisses fills results for the given miss indices by splitting them into
// provider-sized batches and running each through the fallback chain.
func (g *Gateway) embedMisses(ctx context.Context, texts []string, misses []int, results []Result) {
	batchSize := g.maxChainBatch()
	for start := 0; start < len(misses); start += batchSize {
		end := min(start+batchSize, len(misses))
		batch := misses[start:end]

		batchTexts := make([]string, len(batch))
		for i, idx := range batch {
			batchTexts[i] = texts[idx]
		}

		vectors, name, model, err := g.embedBatch(ctx, batchTexts)
		if err != nil {
			for _, idx := range batch {
				results[idx].Err = err
			}
			continue
		}

		for i, idx := range batch {
			results[idx].Vector = vectors[i]
			results[idx].Provider = name
			results[idx].Model = model
			g.cache.Set(CacheKey(name, model, batchTexts[i]), vectors[i])
		}
	}
}

// embedBatch runs one batch through the chain, returning the first success.
func (g *Gateway) embedBatch(ctx context.Context, texts []string) ([][]float32, string, string, error) {
	var chainErr error

	for _, link := range g.chain {
		name := link.provider.Name()

		if !link.breaker.Allow() {
			g.logger.Debug("skipping provider with open circuit", "provider", name)
			continue
		}
		if link.limiter != nil {
			if err := link.limiter.Wait(ctx); err != nil {
				return nil, "", "", err
			}
		}

		vectors, err := g.callProvider(ctx, link, texts)
		if err != nil {
			if ctx.Err() != nil {
				return nil, "", "", ctx.Err()
			}
			g.logger.Warn("provider failed, trying next in chain",
				"provider", name, "count", len(texts), "err", err)
			chainErr = errors.Join(chainErr, fmt.Errorf("%s: %w", name, err))
			continue
		}

		return vectors, name, link.provider.Model(), nil
	}

	if chainErr == nil {
		chainErr = errors.New("no provider available")
	}
	return nil, "", "", chainErr
}

// callProvider invokes one provider, splitting further if the batch exceeds
// its own limit, and records the outcome on its breaker.
func (g *Gateway) callProvider(ctx context.Context, link *chainLink, texts []string) ([][]float32, error) {
	limit := link.provider.MaxBatchSize()
	if limit < 1 {
		limit = len(texts)
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += limit {
		end := min(start+limit, len(texts))
		part, err := link.provider.Embed(ctx, texts[start:end])
		if err != nil {
			link.breaker.Failure()
			return nil, err
		}
		if len(part) != end-start {
			link.breaker.Failure()
			return nil, fmt.Errorf("%w: got %d vectors for %d texts",
				ErrResultCountMismatch, len(part), end-start)
		}
		vectors = append(vectors, part...)
	}

	link.breaker.Success()
	return vectors, nil
}

// maxChainBatch returns the largest batch any provider in the chain accepts,
// so fallback batches never need re-splitting upward.
func (g *Gateway) maxChainBatch() int {
	best := 1
	for _, link := range g.chain {
		if n := link.provider.MaxBatchSize(); n > best {
			best = n
		}
	}
	return best
}
