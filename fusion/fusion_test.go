package fusion_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Uththunga/Ethos-Prompt-sub003/core"
	"github.com/Uththunga/Ethos-Prompt-sub003/fusion"
)

func ranked(id core.ID, score float64) fusion.Ranked {
	return fusion.Ranked{ChunkId: id, DocumentId: 1, Ordinal: int(id), Score: score}
}

func chunkIds(results []fusion.Fused) []core.ID {
	ids := make([]core.ID, len(results))
	for i, r := range results {
		ids[i] = r.ChunkId
	}
	return ids
}

func TestParseAlgorithm(t *testing.T) {
	t.Run("parses known names", func(t *testing.T) {
		for _, name := range []string{"rrf", "weighted", "borda", "adaptive"} {
			a, err := fusion.ParseAlgorithm(name)
			require.NoError(t, err)
			assert.Equal(t, name, a.String())
		}
	})

	t.Run("rejects unknown name", func(t *testing.T) {
		_, err := fusion.ParseAlgorithm("bogus")
		require.Error(t, err)
		assert.ErrorIs(t, err, fusion.ErrUnknownAlgorithm)
		assert.ErrorIs(t, err, core.ErrConfiguration)
	})
}

func TestFuseRRF(t *testing.T) {
	t.Run("chunk in both lists ranks first", func(t *testing.T) {
		in := fusion.Input{
			Semantic: []fusion.Ranked{ranked(1, 0.9), ranked(2, 0.8)},
			Keyword:  []fusion.Ranked{ranked(2, 12.0), ranked(3, 8.0)},
		}

		results, err := fusion.Fuse(fusion.AlgorithmRRF, in)
		require.NoError(t, err)
		require.Len(t, results, 3)

		assert.Equal(t, core.ID(2), results[0].ChunkId)
		assert.Equal(t, []core.ID{2, 1, 3}, chunkIds(results))
	})

	t.Run("preserves raw scores and sources", func(t *testing.T) {
		in := fusion.Input{
			Semantic: []fusion.Ranked{ranked(1, 0.9), ranked(2, 0.8)},
			Keyword:  []fusion.Ranked{ranked(2, 12.0)},
		}

		results, err := fusion.Fuse(fusion.AlgorithmRRF, in)
		require.NoError(t, err)

		for _, r := range results {
			switch r.ChunkId {
			case 1:
				assert.Equal(t, 0.9, r.SemanticScore)
				assert.Zero(t, r.KeywordScore)
				assert.Equal(t, []string{"semantic"}, r.Sources)
			case 2:
				assert.Equal(t, 0.8, r.SemanticScore)
				assert.Equal(t, 12.0, r.KeywordScore)
				assert.Equal(t, []string{"semantic", "keyword"}, r.Sources)
			}
		}
	})
}

func TestFuseUnion(t *testing.T) {
	algorithms := []fusion.Algorithm{
		fusion.AlgorithmRRF,
		fusion.AlgorithmWeightedSum,
		fusion.AlgorithmBorda,
		fusion.AlgorithmAdaptive,
	}

	in := fusion.Input{
		Semantic: []fusion.Ranked{ranked(1, 0.9), ranked(2, 0.7), ranked(4, 0.5)},
		Keyword:  []fusion.Ranked{ranked(3, 10.0), ranked(2, 6.0), ranked(5, 2.0)},
	}

	for _, algorithm := range algorithms {
		t.Run(algorithm.String(), func(t *testing.T) {
			results, err := fusion.Fuse(algorithm, in)
			require.NoError(t, err)

			assert.ElementsMatch(t, []core.ID{1, 2, 3, 4, 5}, chunkIds(results))
		})
	}
}

func TestFuseWeightedSum(t *testing.T) {
	t.Run("default weights favor semantic", func(t *testing.T) {
		// Each chunk tops one list; the 0.7/0.3 default must rank the
		// semantic leader first.
		in := fusion.Input{
			Semantic: []fusion.Ranked{ranked(1, 0.9), ranked(2, 0.1)},
			Keyword:  []fusion.Ranked{ranked(2, 10.0), ranked(1, 1.0)},
		}

		results, err := fusion.Fuse(fusion.AlgorithmWeightedSum, in)
		require.NoError(t, err)
		assert.Equal(t, core.ID(1), results[0].ChunkId)
	})

	t.Run("keyword-heavy weights flip the order", func(t *testing.T) {
		in := fusion.Input{
			Semantic: []fusion.Ranked{ranked(1, 0.9), ranked(2, 0.1)},
			Keyword:  []fusion.Ranked{ranked(2, 10.0), ranked(1, 1.0)},
			Weights:  fusion.Weights{Semantic: 0.1, Keyword: 0.9},
		}

		results, err := fusion.Fuse(fusion.AlgorithmWeightedSum, in)
		require.NoError(t, err)
		assert.Equal(t, core.ID(2), results[0].ChunkId)
	})
}

func TestFuseBorda(t *testing.T) {
	in := fusion.Input{
		Semantic: []fusion.Ranked{ranked(1, 0.9), ranked(2, 0.8), ranked(3, 0.7)},
		Keyword:  []fusion.Ranked{ranked(2, 9.0), ranked(3, 5.0), ranked(1, 1.0)},
	}

	results, err := fusion.Fuse(fusion.AlgorithmBorda, in)
	require.NoError(t, err)

	// id1: 3+1=4, id2: 2+3=5, id3: 1+2=3.
	assert.Equal(t, []core.ID{2, 1, 3}, chunkIds(results))
	assert.Equal(t, 5.0, results[0].Score)
}

func TestFuseAdaptive(t *testing.T) {
	t.Run("short navigational query leans keyword", func(t *testing.T) {
		in := fusion.Input{
			Semantic:   []fusion.Ranked{ranked(1, 0.9), ranked(2, 0.1)},
			Keyword:    []fusion.Ranked{ranked(2, 10.0), ranked(1, 1.0)},
			Intent:     core.IntentNavigational,
			QueryTerms: 2,
		}

		results, err := fusion.Fuse(fusion.AlgorithmAdaptive, in)
		require.NoError(t, err)
		assert.Equal(t, core.ID(2), results[0].ChunkId)
	})

	t.Run("long summarization query leans semantic", func(t *testing.T) {
		in := fusion.Input{
			Semantic:   []fusion.Ranked{ranked(1, 0.9), ranked(2, 0.1)},
			Keyword:    []fusion.Ranked{ranked(2, 10.0), ranked(1, 1.0)},
			Intent:     core.IntentSummarization,
			QueryTerms: 12,
		}

		results, err := fusion.Fuse(fusion.AlgorithmAdaptive, in)
		require.NoError(t, err)
		assert.Equal(t, core.ID(1), results[0].ChunkId)
	})
}

func TestFuseTieBreaks(t *testing.T) {
	t.Run("equal fused scores break on semantic score then ordinal", func(t *testing.T) {
		// Two chunks each appear only in one list at the same rank, so RRF
		// scores tie; the one with a semantic score must come first.
		in := fusion.Input{
			Semantic: []fusion.Ranked{ranked(1, 0.9)},
			Keyword:  []fusion.Ranked{ranked(3, 8.0)},
		}

		results, err := fusion.Fuse(fusion.AlgorithmRRF, in)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, core.ID(1), results[0].ChunkId)
		assert.Equal(t, core.ID(3), results[1].ChunkId)
		assert.Equal(t, results[0].Score, results[1].Score)
	})

	t.Run("full tie breaks on lower ordinal", func(t *testing.T) {
		// Equal keyword scores normalize to the same value, and neither chunk
		// has a semantic side, so only the ordinal separates them.
		a := fusion.Ranked{ChunkId: 10, DocumentId: 1, Ordinal: 5, Score: 4.0}
		b := fusion.Ranked{ChunkId: 11, DocumentId: 1, Ordinal: 2, Score: 4.0}
		in := fusion.Input{Keyword: []fusion.Ranked{a, b}}

		results, err := fusion.Fuse(fusion.AlgorithmWeightedSum, in)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, core.ID(11), results[0].ChunkId)
	})

	t.Run("unknown algorithm rejected", func(t *testing.T) {
		_, err := fusion.Fuse(fusion.Algorithm(99), fusion.Input{})
		require.Error(t, err)
		assert.ErrorIs(t, err, fusion.ErrUnknownAlgorithm)
	})
}
