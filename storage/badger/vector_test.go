package badger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Uththunga/Ethos-Prompt-sub003/core"
	"github.com/Uththunga/Ethos-Prompt-sub003/storage"
	"github.com/Uththunga/Ethos-Prompt-sub003/storage/badger"
)

func record(chunkID, docID core.ID, vector []float32) *core.EmbeddingRecord {
	return &core.EmbeddingRecord{
		ChunkId:    chunkID,
		DocumentId: docID,
		Vector:     vector,
		Provider:   "test",
		Model:      "test-model",
	}
}

func TestVectorIndexUpsert(t *testing.T) {
	ctx := context.Background()
	stores := newTestStores(t)

	t.Run("first upsert establishes dimensionality", func(t *testing.T) {
		require.NoError(t, stores.Vectors.Upsert(ctx, "ns", record(1, 1, []float32{1, 0, 0})))

		dim, err := stores.Vectors.Dimension(ctx, "ns")
		require.NoError(t, err)
		assert.Equal(t, 3, dim)
	})

	t.Run("mismatched dimensionality is rejected", func(t *testing.T) {
		err := stores.Vectors.Upsert(ctx, "ns", record(2, 1, []float32{1, 0}))
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrConfiguration)
		assert.ErrorIs(t, err, storage.ErrDimensionMismatch)
	})

	t.Run("mismatch in a batch writes nothing", func(t *testing.T) {
		err := stores.Vectors.Upsert(ctx, "ns",
			record(3, 1, []float32{0, 1, 0}),
			record(4, 1, []float32{0, 1}))
		require.Error(t, err)

		matches, err := stores.Vectors.Search(ctx, "ns", []float32{0, 1, 0}, 10, storage.Filter{})
		require.NoError(t, err)
		for _, m := range matches {
			assert.NotEqual(t, core.ID(3), m.ChunkId)
		}
	})

	t.Run("re-upsert replaces, never duplicates", func(t *testing.T) {
		require.NoError(t, stores.Vectors.Upsert(ctx, "ns", record(1, 1, []float32{0, 0, 1})))

		matches, err := stores.Vectors.Search(ctx, "ns", []float32{0, 0, 1}, 10, storage.Filter{})
		require.NoError(t, err)
		var count int
		for _, m := range matches {
			if m.ChunkId == 1 {
				count++
				assert.InDelta(t, 1.0, m.Similarity, 1e-9)
			}
		}
		assert.Equal(t, 1, count)
	})

	t.Run("empty vector is rejected", func(t *testing.T) {
		err := stores.Vectors.Upsert(ctx, "ns", record(5, 1, nil))
		assert.ErrorIs(t, err, core.ErrEmptyVector)
	})

	t.Run("other namespaces keep their own dimensionality", func(t *testing.T) {
		require.NoError(t, stores.Vectors.Upsert(ctx, "other", record(1, 1, []float32{1, 0})))

		dim, err := stores.Vectors.Dimension(ctx, "other")
		require.NoError(t, err)
		assert.Equal(t, 2, dim)
	})
}

func TestVectorIndexSearch(t *testing.T) {
	ctx := context.Background()
	stores := newTestStores(t)

	require.NoError(t, stores.Vectors.Upsert(ctx, "ns",
		record(1, 100, []float32{1, 0}),
		record(2, 100, []float32{0.9, 0.1}),
		record(3, 200, []float32{0, 1}),
	))

	t.Run("ranks by cosine similarity", func(t *testing.T) {
		matches, err := stores.Vectors.Search(ctx, "ns", []float32{1, 0}, 10, storage.Filter{})
		require.NoError(t, err)
		require.Len(t, matches, 3)
		assert.Equal(t, core.ID(1), matches[0].ChunkId)
		assert.Equal(t, core.ID(2), matches[1].ChunkId)
		assert.Equal(t, core.ID(3), matches[2].ChunkId)
		assert.InDelta(t, 1.0, matches[0].Similarity, 1e-9)
	})

	t.Run("topK truncates", func(t *testing.T) {
		matches, err := stores.Vectors.Search(ctx, "ns", []float32{1, 0}, 2, storage.Filter{})
		require.NoError(t, err)
		assert.Len(t, matches, 2)
	})

	t.Run("filter applies before topK", func(t *testing.T) {
		matches, err := stores.Vectors.Search(ctx, "ns", []float32{1, 0}, 1, storage.Filter{
			DocumentIds: []core.ID{200},
		})
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, core.ID(3), matches[0].ChunkId)
	})

	t.Run("zero topK yields nothing", func(t *testing.T) {
		matches, err := stores.Vectors.Search(ctx, "ns", []float32{1, 0}, 0, storage.Filter{})
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("empty namespace has no matches", func(t *testing.T) {
		matches, err := stores.Vectors.Search(ctx, "empty", []float32{1, 0}, 10, storage.Filter{})
		require.NoError(t, err)
		assert.Empty(t, matches)
	})
}

func TestVectorIndexDelete(t *testing.T) {
	ctx := context.Background()
	stores := newTestStores(t)

	require.NoError(t, stores.Vectors.Upsert(ctx, "ns", record(1, 1, []float32{1, 0})))
	require.NoError(t, stores.Vectors.Delete(ctx, "ns", 1, 999))

	matches, err := stores.Vectors.Search(ctx, "ns", []float32{1, 0}, 10, storage.Filter{})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, badger.CosineSimilarity([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, badger.CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, badger.CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Zero(t, badger.CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}
