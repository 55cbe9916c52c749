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

package chunking

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Uththunga/Ethos-Prompt-sub003/core"
	"github.com/Uththunga/Ethos-Prompt-sub003/text"
)

// Strategy selects how a document is split into chunks.
type Strategy int

const (
	// StrategyAuto picks a strategy from document structure.
	StrategyAuto Strategy = iota
	// StrategyFixedSize is a sliding token window with configurable overlap.
	// Simplest strategy; used as the fallback.
	StrategyFixedSize
	// StrategySemantic splits on sentence and paragraph boundaries,
	// respecting the chunk size as a soft maximum.
	StrategySemantic
	// StrategyHierarchical splits along structural markers (headings),
	// preserving the parent/child relationship in chunk metadata.
	StrategyHierarchical
	// StrategySlidingWindow is fixed-size with a custom step distinct from
	// overlap, for dense overlap regimes.
	StrategySlidingWindow
)

var strategyNames = map[Strategy]string{
	StrategyAuto:          "auto",
	StrategyFixedSize:     "fixed",
	StrategySemantic:      "semantic",
	StrategyHierarchical:  "hierarchical",
	StrategySlidingWindow: "sliding",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseStrategy resolves a strategy name. An unknown name is a configuration
// error and is rejected before any processing starts.
func ParseStrategy(name string) (Strategy, error) {
	for strategy, n := range strategyNames {
		if n == name {
			return strategy, nil
		}
	}
	return 0, fmt.Errorf("%w: %w: %q", core.ErrConfiguration, ErrUnknownStrategy, name)
}

// Config holds chunking parameters. Sizes are in tokens as measured by the
// chunker's counter.
type Config struct {
	// ChunkSize is the target chunk size. Hard window size for fixed/sliding,
	// soft maximum for semantic and hierarchical.
	ChunkSize int

	// Overlap is the number of tokens shared between consecutive chunks for
	// the fixed-size strategy. Must be smaller than ChunkSize.
	Overlap int

	// Step is the window advance for the sliding-window strategy.
	// Must be at least 1.
	Step int

	// MinChunkSize is the minimum chunk size. Fragments below it are merged
	// into the preceding chunk to avoid degenerate retrieval units.
	MinChunkSize int

	// MaxChunkSize bounds chunk size for all strategies, keeping embedding
	// calls cheap and chunks useful as standalone retrieval units.
	MaxChunkSize int
}

// DefaultConfig returns chunking parameters suitable for prose documents.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    400,
		Overlap:      50,
		Step:         200,
		MinChunkSize: 1,
		MaxChunkSize: 1000,
	}
}

// Validate rejects inconsistent parameter combinations.
func (c Config) Validate() error {
	if c.ChunkSize < 1 {
		return fmt.Errorf("%w: %w: chunk size %d", core.ErrConfiguration, ErrInvalidChunkSize, c.ChunkSize)
	}
	if c.Overlap < 0 || c.Overlap >= c.ChunkSize {
		return fmt.Errorf("%w: %w: overlap %d, chunk size %d", core.ErrConfiguration, ErrInvalidOverlap, c.Overlap, c.ChunkSize)
	}
	if c.Step < 1 {
		return fmt.Errorf("%w: %w: step %d", core.ErrConfiguration, ErrInvalidStep, c.Step)
	}
	if c.MinChunkSize < 1 || c.MinChunkSize > c.ChunkSize {
		return fmt.Errorf("%w: %w: min %d, chunk size %d", core.ErrConfiguration, ErrInvalidMinSize, c.MinChunkSize, c.ChunkSize)
	}
	if c.MaxChunkSize < c.ChunkSize {
		return fmt.Errorf("%w: %w: max %d, chunk size %d", core.ErrConfiguration, ErrInvalidMaxSize, c.MaxChunkSize, c.ChunkSize)
	}
	return nil
}

// Candidate is a chunk produced by a strategy, before identity and namespace
// assignment by the pipeline.
type Candidate struct {
	Ordinal    int
	Text       string
	TokenCount int
	Strategy   string
	Metadata   map[string]string
}

// chunkFunc is a pure strategy implementation.
type chunkFunc func(c *Chunker, input string, cfg Config) []Candidate

// strategyTable dispatches strategies. Adding a strategy is a closed change:
// a new constant, a name, and a row here.
var strategyTable = map[Strategy]chunkFunc{
	StrategyFixedSize:     (*Chunker).chunkFixed,
	StrategySemantic:      (*Chunker).chunkSemantic,
	StrategyHierarchical:  (*Chunker).chunkHierarchical,
	StrategySlidingWindow: (*Chunker).chunkSliding,
}

// Chunker splits extracted document text into retrieval units.
type Chunker struct {
	counter text.Counter
	logger  *slog.Logger
}

// Option configures a Chunker.
type Option func(*Chunker) error

// WithCounter sets the token counter used for chunk sizing.
// Default is text.WordCounter.
func WithCounter(counter text.Counter) Option {
	return func(c *Chunker) error {
		if counter == nil {
			counter = text.WordCounter{}
		}
		c.counter = counter
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chunker) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewChunker creates a new chunker.
func NewChunker(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		counter: text.WordCounter{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Chunk splits input using the given strategy. Empty input yields zero chunks,
// not an error. Concatenating the returned candidates in ordinal order
// reconstructs the input modulo whitespace normalization.
func (c *Chunker) Chunk(input string, strategy Strategy, cfg Config) ([]Candidate, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if strings.TrimSpace(input) == "" {
		return []Candidate{}, nil
	}

	if strategy == StrategyAuto {
		strategy = c.detectStrategy(input)
		c.logger.Debug("auto strategy selected", "strategy", strategy.String())
	}

	fn, ok := strategyTable[strategy]
	if !ok {
		return nil, fmt.Errorf("%w: %w: %d", core.ErrConfiguration, ErrUnknownStrategy, strategy)
	}

	candidates := fn(c, input, cfg)
	for i := range candidates {
		candidates[i].Ordinal = i
		candidates[i].Strategy = strategy.String()
		if candidates[i].TokenCount == 0 {
			candidates[i].TokenCount = c.counter.Count(candidates[i].Text)
		}
	}

	c.logger.Debug("chunked document", "strategy", strategy.String(), "chunks", len(candidates))
	return candidates, nil
}

// detectStrategy inspects document structure to pick a strategy: headings
// favor hierarchical, multiple paragraphs favor semantic, anything else falls
// back to fixed-size.
func (c *Chunker) detectStrategy(input string) Strategy {
	if len(findHeadings(input)) >= 2 {
		return StrategyHierarchical
	}
	if strings.Count(input, "\n\n") >= 2 {
		return StrategySemantic
	}
	return StrategyFixedSize
}
