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

package query

import (
	"fmt"
	"log/slog"

	"github.com/Uththunga/Ethos-Prompt-sub003/core"
	"github.com/Uththunga/Ethos-Prompt-sub003/text"
)

// EnhancedQuery is the result of running a raw query through the enhancer.
type EnhancedQuery struct {
	// Text is the normalized (and optionally spell-corrected) query text.
	Text string

	// Intent is the classified intent label, IntentOther when classification
	// is disabled.
	Intent core.IntentLabel

	// ExpansionTerms are related terms added by expansion, empty when
	// expansion is disabled or nothing matched.
	ExpansionTerms []string
}

// Enhancer normalizes, spell-corrects, classifies, and expands raw queries
// before they reach the indexes. Each stage toggles independently; all are on
// by default. Enhancement is pure computation on small inputs, so it adds
// negligible latency to the read path.
type Enhancer struct {
	corrector     *SpellCorrector
	expander      *Expander
	spellEnabled  bool
	intentEnabled bool
	expandEnabled bool
	logger        *slog.Logger
}

// EnhancerOption configures an Enhancer.
type EnhancerOption func(*Enhancer) error

// WithSpellCorrection toggles the spell-correction stage.
func WithSpellCorrection(enabled bool) EnhancerOption {
	return func(e *Enhancer) error {
		e.spellEnabled = enabled
		return nil
	}
}

// WithIntentClassification toggles the intent-classification stage.
func WithIntentClassification(enabled bool) EnhancerOption {
	return func(e *Enhancer) error {
		e.intentEnabled = enabled
		return nil
	}
}

// WithExpansion toggles the query-expansion stage.
func WithExpansion(enabled bool) EnhancerOption {
	return func(e *Enhancer) error {
		e.expandEnabled = enabled
		return nil
	}
}

// WithDictionary sets the spell-correction dictionary. Callers typically seed
// it from corpus vocabulary so corrections track indexed content.
func WithDictionary(words []string) EnhancerOption {
	return func(e *Enhancer) error {
		e.corrector = NewSpellCorrector(words)
		return nil
	}
}

// WithLexicon sets the expansion lexicon and term bound.
func WithLexicon(lexicon Lexicon, maxTerms int) EnhancerOption {
	return func(e *Enhancer) error {
		e.expander = NewExpander(lexicon, maxTerms)
		return nil
	}
}

// WithEnhancerLogger sets the logger used by the enhancer.
func WithEnhancerLogger(logger *slog.Logger) EnhancerOption {
	return func(e *Enhancer) error {
		if logger == nil {
			return fmt.Errorf("%w: nil logger", core.ErrConfiguration)
		}
		e.logger = logger.With("component", "query-enhancer")
		return nil
	}
}

// NewEnhancer creates an enhancer with all stages enabled.
func NewEnhancer(opts ...EnhancerOption) (*Enhancer, error) {
	e := &Enhancer{
		spellEnabled:  true,
		intentEnabled: true,
		expandEnabled: true,
		logger:        slog.Default().With("component", "query-enhancer"),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	if e.corrector == nil {
		e.corrector = NewSpellCorrector(defaultDictionary())
	}
	if e.expander == nil {
		e.expander = NewExpander(nil, 0)
	}
	return e, nil
}

// Enhance runs the configured stages over a raw query.
func (e *Enhancer) Enhance(raw string) EnhancedQuery {
	enhanced := EnhancedQuery{
		Text:   text.NormalizeWhitespace(raw),
		Intent: core.IntentOther,
	}

	if e.spellEnabled {
		enhanced.Text = e.corrector.CorrectText(enhanced.Text)
	}
	if e.intentEnabled {
		enhanced.Intent = ClassifyIntent(enhanced.Text)
	}
	if e.expandEnabled {
		enhanced.ExpansionTerms = e.expander.Expand(enhanced.Text)
	}

	e.logger.Debug("enhanced query",
		"intent", enhanced.Intent,
		"expansion_terms", len(enhanced.ExpansionTerms))
	return enhanced
}

// defaultDictionary returns the expansion lexicon vocabulary plus common
// query words, giving spell correction a usable baseline when no corpus
// dictionary is supplied.
func defaultDictionary() []string {
	words := []string{
		"what", "where", "when", "which", "who", "how", "why",
		"does", "difference", "between", "compare", "summary", "summarize",
		"overview", "install", "configure", "documentation", "tutorial",
	}
	for term, related := range defaultLexicon {
		words = append(words, term)
		words = append(words, related...)
	}
	return words
}
