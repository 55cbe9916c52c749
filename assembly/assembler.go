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

package assembly

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/Uththunga/Ethos-Prompt-sub003/core"
	"github.com/Uththunga/Ethos-Prompt-sub003/text"
)

const (
	// DefaultDiversityThreshold is the lexical-similarity ceiling above which
	// a candidate is dropped as a near-duplicate of already-selected chunks.
	DefaultDiversityThreshold = 0.85

	// DefaultReservedTokens is held back from the budget for system and
	// instruction tokens surrounding the context.
	DefaultReservedTokens = 64
)

// BoostFunc re-scores a candidate with a secondary signal (recency, source
// quality, feedback). The returned value is added to the fused score before
// final ordering.
type BoostFunc func(chunk *core.ScoredChunk) float64

// Assembler turns a fused ranking into a token-budgeted context payload.
type Assembler struct {
	counter            text.Counter
	boost              BoostFunc
	diversityThreshold float64
	reservedTokens     int
	logger             *slog.Logger
}

// Option configures an Assembler.
type Option func(*Assembler) error

// WithCounter sets the token counter used for budgeting chunks that carry no
// stored token count.
func WithCounter(counter text.Counter) Option {
	return func(a *Assembler) error {
		if counter == nil {
			return fmt.Errorf("%w: nil token counter", core.ErrConfiguration)
		}
		a.counter = counter
		return nil
	}
}

// WithBoost installs a secondary re-ranking signal.
func WithBoost(boost BoostFunc) Option {
	return func(a *Assembler) error {
		a.boost = boost
		return nil
	}
}

// WithDiversityThreshold overrides the near-duplicate similarity ceiling.
// Values at or above 1 disable diversity filtering.
func WithDiversityThreshold(threshold float64) Option {
	return func(a *Assembler) error {
		if threshold < 0 {
			return fmt.Errorf("%w: diversity threshold must not be negative", core.ErrConfiguration)
		}
		a.diversityThreshold = threshold
		return nil
	}
}

// WithReservedTokens overrides the buffer held back from every budget.
func WithReservedTokens(reserved int) Option {
	return func(a *Assembler) error {
		if reserved < 0 {
			return fmt.Errorf("%w: reserved tokens must not be negative", core.ErrConfiguration)
		}
		a.reservedTokens = reserved
		return nil
	}
}

// WithLogger sets the logger used by the assembler.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assembler) error {
		if logger == nil {
			return fmt.Errorf("%w: nil logger", core.ErrConfiguration)
		}
		a.logger = logger.With("component", "context-assembler")
		return nil
	}
}

// NewAssembler creates an assembler with default thresholds and a word-based
// token counter.
func NewAssembler(opts ...Option) (*Assembler, error) {
	a := &Assembler{
		counter:            text.WordCounter{},
		diversityThreshold: DefaultDiversityThreshold,
		reservedTokens:     DefaultReservedTokens,
		logger:             slog.Default().With("component", "context-assembler"),
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Assemble selects chunks from the fused ranking, best-first, applying the
// boost hook, diversity filtering, and whole-chunk token budgeting. A chunk
// either fits the remaining budget whole or is skipped; maxTokens of zero
// yields an empty context, not an error.
func (a *Assembler) Assemble(candidates []*core.ScoredChunk, maxTokens int) *core.RetrievedContext {
	ctx := &core.RetrievedContext{}
	budget := maxTokens - a.reservedTokens
	if budget <= 0 {
		return ctx
	}

	ordered := a.rerank(candidates)

	var selectedTokens [][]string
	for _, candidate := range ordered {
		if candidate.Chunk == nil {
			continue
		}

		tokens := text.Tokenize(candidate.Chunk.Text)
		if a.tooSimilar(tokens, selectedTokens) {
			continue
		}

		cost := candidate.Chunk.TokenCount
		if cost <= 0 {
			cost = a.counter.Count(candidate.Chunk.Text)
		}
		if ctx.TotalTokens+cost > budget {
			continue
		}

		ctx.Chunks = append(ctx.Chunks, candidate)
		ctx.TotalTokens += cost
		selectedTokens = append(selectedTokens, tokens)
	}

	ctx.Text = a.format(ctx.Chunks)
	a.logger.Debug("assembled context",
		"candidates", len(candidates),
		"selected", len(ctx.Chunks),
		"tokens", ctx.TotalTokens)
	return ctx
}

// rerank applies the boost hook and re-sorts without mutating the input.
func (a *Assembler) rerank(candidates []*core.ScoredChunk) []*core.ScoredChunk {
	ordered := make([]*core.ScoredChunk, len(candidates))
	copy(ordered, candidates)
	if a.boost == nil {
		return ordered
	}

	type boosted struct {
		chunk *core.ScoredChunk
		score float64
	}
	scored := make([]boosted, len(ordered))
	for i, c := range ordered {
		scored[i] = boosted{chunk: c, score: c.Score + a.boost(c)}
	}
	// Stable: equal boosted scores keep fusion order.
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	for i, b := range scored {
		ordered[i] = b.chunk
	}
	return ordered
}

// tooSimilar reports whether the candidate's tokens overlap any selected
// chunk beyond the diversity threshold, by Jaccard similarity.
func (a *Assembler) tooSimilar(tokens []string, selected [][]string) bool {
	if a.diversityThreshold >= 1 {
		return false
	}
	for _, prior := range selected {
		if jaccard(tokens, prior) > a.diversityThreshold {
			return true
		}
	}
	return false
}

func jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(a))
	for _, t := range a {
		setA[t] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, t := range b {
		setB[t] = struct{}{}
	}

	var intersection int
	for t := range setA {
		if _, ok := setB[t]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// format renders the human-readable context block with per-chunk provenance.
func (a *Assembler) format(chunks []*core.ScoredChunk) string {
	if len(chunks) == 0 {
		return ""
	}

	var b strings.Builder
	for i, sc := range chunks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[source: document %d, chunk %d]\n", sc.Chunk.DocumentId, sc.Chunk.Ordinal)
		if heading, ok := sc.Chunk.Metadata["heading"]; ok {
			fmt.Fprintf(&b, "[section: %s]\n", heading)
		}
		b.WriteString(sc.Chunk.Text)
	}
	return b.String()
}
