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

package ethosprompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Uththunga/Ethos-Prompt-sub003/core"
	"github.com/Uththunga/Ethos-Prompt-sub003/fusion"
	"github.com/Uththunga/Ethos-Prompt-sub003/storage"
	"github.com/Uththunga/Ethos-Prompt-sub003/text"
)

// RetrieveOptions holds optional parameters for retrieval.
type RetrieveOptions struct {
	// MaxResults caps candidates entering assembly. Zero means
	// DefaultMaxResults.
	MaxResults int

	// MaxTokens is the context token budget. Zero yields an empty context.
	MaxTokens int

	// DocumentIds restricts retrieval to the given documents.
	DocumentIds []core.ID

	// Algorithm overrides the engine's fusion algorithm. Zero keeps it.
	Algorithm fusion.Algorithm

	// Weights overrides weighted-sum fusion weights. Zero means defaults.
	Weights fusion.Weights
}

// Retrieve runs the read path: query enhancement, concurrent vector and BM25
// search each under its own deadline, rank fusion, and token-budgeted context
// assembly. One index missing its deadline degrades to single-source fusion
// and marks the result; both failing fails the query. No matches yield an
// empty, non-degraded context.
func (e *Engine) Retrieve(ctx context.Context, namespace string, rawQuery string, opts RetrieveOptions) (*core.RetrievedContext, error) {
	if namespace == "" {
		return nil, fmt.Errorf("%w: %w", core.ErrConfiguration, core.ErrEmptyNamespace)
	}
	if strings.TrimSpace(rawQuery) == "" {
		return nil, fmt.Errorf("%w: %w", core.ErrConfiguration, core.ErrEmptyText)
	}
	maxResults := opts.MaxResults
	if maxResults < 1 {
		maxResults = DefaultMaxResults
	}
	algorithm := opts.Algorithm
	if algorithm == 0 {
		algorithm = e.algorithm
	}

	e.monitor.Start(rawQuery)
	enhanced := e.enhancer.Enhance(rawQuery)
	e.monitor.AfterEnhancement(enhanced)

	filter := storage.Filter{DocumentIds: opts.DocumentIds}
	// Over-fetch per source so diversity and budget filtering downstream
	// still have enough distinct candidates.
	topK := maxResults * 2

	queryTokens := text.Tokenize(enhanced.Text)
	for _, term := range enhanced.ExpansionTerms {
		queryTokens = append(queryTokens, text.Tokenize(term)...)
	}

	semantic, keyword, degraded, err := e.searchBoth(ctx, namespace, enhanced.Text, queryTokens, topK, filter)
	if err != nil {
		return nil, err
	}

	fused, err := fusion.Fuse(algorithm, fusion.Input{
		Semantic:   e.rankSemantic(ctx, namespace, semantic),
		Keyword:    e.rankKeyword(ctx, namespace, keyword),
		Weights:    opts.Weights,
		Intent:     enhanced.Intent,
		QueryTerms: len(strings.Fields(enhanced.Text)),
	})
	if err != nil {
		return nil, err
	}
	e.monitor.AfterFusion(fused)
	if len(fused) > maxResults {
		fused = fused[:maxResults]
	}

	candidates, err := e.loadScored(ctx, namespace, fused)
	if err != nil {
		return nil, err
	}

	result := e.assembler.Assemble(candidates, opts.MaxTokens)
	result.Degraded = degraded
	e.monitor.Finish(result)

	e.logger.Debug("retrieval complete",
		"namespace", namespace,
		"intent", enhanced.Intent,
		"semantic_hits", len(semantic),
		"keyword_hits", len(keyword),
		"selected", len(result.Chunks),
		"degraded", degraded)
	return result, nil
}

// searchBoth runs both index searches concurrently, each under its own
// deadline. A single failed or timed-out source degrades the query; both
// failing is an error.
func (e *Engine) searchBoth(
	ctx context.Context,
	namespace, queryText string,
	queryTokens []string,
	topK int,
	filter storage.Filter,
) (semantic []storage.VectorMatch, keyword []storage.KeywordMatch, degraded bool, err error) {
	var semanticErr, keywordErr error

	g, groupCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		searchCtx, cancel := context.WithTimeout(groupCtx, e.indexTimeout)
		defer cancel()

		vector, embedErr := e.gateway.EmbedText(searchCtx, queryText)
		if embedErr != nil {
			semanticErr = embedErr
			return nil
		}
		semantic, semanticErr = e.stores.Vectors.Search(searchCtx, namespace, vector, topK, filter)
		return nil
	})
	g.Go(func() error {
		searchCtx, cancel := context.WithTimeout(groupCtx, e.indexTimeout)
		defer cancel()

		keyword, keywordErr = e.stores.Keywords.Search(searchCtx, namespace, queryTokens, topK, filter)
		return nil
	})
	if waitErr := g.Wait(); waitErr != nil {
		return nil, nil, false, waitErr
	}

	if semanticErr != nil && keywordErr != nil {
		return nil, nil, false, fmt.Errorf("%w: %w", core.ErrIndexTimeout,
			errors.Join(semanticErr, keywordErr))
	}
	if semanticErr != nil {
		e.logger.Warn("semantic search degraded", "err", semanticErr)
		e.monitor.SourceDegraded("semantic", semanticErr)
		semantic = nil
		degraded = true
	}
	if keywordErr != nil {
		e.logger.Warn("keyword search degraded", "err", keywordErr)
		e.monitor.SourceDegraded("keyword", keywordErr)
		keyword = nil
		degraded = true
	}

	e.monitor.AfterSemanticSearch(semantic)
	e.monitor.AfterKeywordSearch(keyword)
	return semantic, keyword, degraded, nil
}

// rankSemantic converts vector matches into fusion entries, attaching chunk
// ordinals for deterministic tie-breaks.
func (e *Engine) rankSemantic(ctx context.Context, namespace string, matches []storage.VectorMatch) []fusion.Ranked {
	entries := make([]fusion.Ranked, 0, len(matches))
	ordinals := e.chunkOrdinals(ctx, namespace, vectorChunkIDs(matches))
	for _, m := range matches {
		entries = append(entries, fusion.Ranked{
			ChunkId:    m.ChunkId,
			DocumentId: m.DocumentId,
			Ordinal:    ordinals[m.ChunkId],
			Score:      m.Similarity,
		})
	}
	return entries
}

// rankKeyword converts keyword matches into fusion entries.
func (e *Engine) rankKeyword(ctx context.Context, namespace string, matches []storage.KeywordMatch) []fusion.Ranked {
	entries := make([]fusion.Ranked, 0, len(matches))
	ordinals := e.chunkOrdinals(ctx, namespace, keywordChunkIDs(matches))
	for _, m := range matches {
		entries = append(entries, fusion.Ranked{
			ChunkId:    m.ChunkId,
			DocumentId: m.DocumentId,
			Ordinal:    ordinals[m.ChunkId],
			Score:      m.Score,
		})
	}
	return entries
}

func vectorChunkIDs(matches []storage.VectorMatch) []core.ID {
	ids := make([]core.ID, len(matches))
	for i, m := range matches {
		ids[i] = m.ChunkId
	}
	return ids
}

func keywordChunkIDs(matches []storage.KeywordMatch) []core.ID {
	ids := make([]core.ID, len(matches))
	for i, m := range matches {
		ids[i] = m.ChunkId
	}
	return ids
}

// chunkOrdinals looks up ordinal positions for tie-breaking. A chunk that
// cannot be loaded keeps ordinal zero; it only weakens tie-breaking.
func (e *Engine) chunkOrdinals(ctx context.Context, namespace string, ids []core.ID) map[core.ID]int {
	ordinals := make(map[core.ID]int, len(ids))
	chunks, err := e.stores.Documents.GetChunks(ctx, namespace, ids...)
	if err != nil {
		e.logger.Warn("failed to load chunks for ordinal lookup", "err", err)
		return ordinals
	}
	for _, chunk := range chunks {
		ordinals[chunk.Id] = chunk.Ordinal
	}
	return ordinals
}

// loadScored materializes fused entries into scored chunks for assembly.
// Entries whose chunk has vanished (concurrent delete) are dropped.
func (e *Engine) loadScored(ctx context.Context, namespace string, fused []fusion.Fused) ([]*core.ScoredChunk, error) {
	ids := make([]core.ID, len(fused))
	for i, f := range fused {
		ids[i] = f.ChunkId
	}
	chunks, err := e.stores.Documents.GetChunks(ctx, namespace, ids...)
	if err != nil {
		return nil, err
	}
	byID := make(map[core.ID]*core.Chunk, len(chunks))
	for _, chunk := range chunks {
		byID[chunk.Id] = chunk
	}

	scored := make([]*core.ScoredChunk, 0, len(fused))
	for _, f := range fused {
		chunk, ok := byID[f.ChunkId]
		if !ok {
			continue
		}
		scored = append(scored, &core.ScoredChunk{
			Chunk:         chunk,
			Score:         f.Score,
			SemanticScore: f.SemanticScore,
			KeywordScore:  f.KeywordScore,
			Sources:       f.Sources,
		})
	}
	return scored, nil
}
