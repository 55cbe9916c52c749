package badger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Uththunga/Ethos-Prompt-sub003/core"
	"github.com/Uththunga/Ethos-Prompt-sub003/storage"
	"github.com/Uththunga/Ethos-Prompt-sub003/storage/badger"
)

func newTestStores(t *testing.T) *badger.Stores {
	t.Helper()
	stores, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { stores.Close() })
	return stores
}

func makeChunk(id, docID core.ID, ordinal int, body string) *core.Chunk {
	return &core.Chunk{
		Id:         id,
		DocumentId: docID,
		Namespace:  "ns",
		Ordinal:    ordinal,
		Text:       body,
		TokenCount: 2,
		Strategy:   "fixed",
	}
}

func TestDocumentStorePutGet(t *testing.T) {
	ctx := context.Background()
	stores := newTestStores(t)

	doc := &core.Document{Id: 1, Namespace: "ns", MimeType: "text/plain", ByteSize: 10, Status: core.DocumentStatusPending}
	require.NoError(t, stores.Documents.PutDocument(ctx, doc))

	t.Run("stamps timestamps on insert", func(t *testing.T) {
		assert.False(t, doc.InsertedAt.IsZero())
		assert.False(t, doc.UpdatedAt.IsZero())
	})

	t.Run("round trips", func(t *testing.T) {
		got, err := stores.Documents.GetDocument(ctx, "ns", 1)
		require.NoError(t, err)
		assert.Equal(t, doc.Id, got.Id)
		assert.Equal(t, doc.MimeType, got.MimeType)
	})

	t.Run("update preserves inserted-at", func(t *testing.T) {
		inserted := doc.InsertedAt
		doc.Status = core.DocumentStatusReady
		require.NoError(t, stores.Documents.PutDocument(ctx, doc))

		got, err := stores.Documents.GetDocument(ctx, "ns", 1)
		require.NoError(t, err)
		// Stored times carry microsecond precision.
		assert.Equal(t, inserted.Truncate(time.Microsecond), got.InsertedAt)
		assert.Equal(t, core.DocumentStatusReady, got.Status)
	})

	t.Run("missing document", func(t *testing.T) {
		_, err := stores.Documents.GetDocument(ctx, "ns", 999)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("empty namespace", func(t *testing.T) {
		_, err := stores.Documents.GetDocument(ctx, "", 1)
		assert.ErrorIs(t, err, storage.ErrEmptyNamespace)
	})

	t.Run("namespace isolation", func(t *testing.T) {
		_, err := stores.Documents.GetDocument(ctx, "other", 1)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestDocumentStoreListDocuments(t *testing.T) {
	ctx := context.Background()
	stores := newTestStores(t)

	for i := core.ID(1); i <= 3; i++ {
		require.NoError(t, stores.Documents.PutDocument(ctx, &core.Document{Id: i, Namespace: "ns"}))
	}
	require.NoError(t, stores.Documents.PutDocument(ctx, &core.Document{Id: 9, Namespace: "other"}))

	docs, err := stores.Documents.ListDocuments(ctx, "ns")
	require.NoError(t, err)
	assert.Len(t, docs, 3)
}

func TestReplaceChunks(t *testing.T) {
	ctx := context.Background()
	stores := newTestStores(t)

	first := []*core.Chunk{
		makeChunk(10, 1, 0, "old first"),
		makeChunk(11, 1, 1, "old second"),
	}
	require.NoError(t, stores.Documents.ReplaceChunks(ctx, "ns", 1, first))

	second := []*core.Chunk{
		makeChunk(20, 1, 0, "new first"),
	}
	require.NoError(t, stores.Documents.ReplaceChunks(ctx, "ns", 1, second))

	t.Run("old chunks are gone", func(t *testing.T) {
		_, err := stores.Documents.GetChunk(ctx, "ns", 10)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		_, err = stores.Documents.GetChunk(ctx, "ns", 11)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("new set is complete", func(t *testing.T) {
		chunks, err := stores.Documents.GetChunksByDocument(ctx, "ns", 1)
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, core.ID(20), chunks[0].Id)
	})

	t.Run("rejects invalid chunk", func(t *testing.T) {
		bad := makeChunk(30, 1, 0, "")
		err := stores.Documents.ReplaceChunks(ctx, "ns", 1, []*core.Chunk{bad})
		assert.ErrorIs(t, err, core.ErrEmptyText)
	})
}

func TestGetChunksByDocumentOrder(t *testing.T) {
	ctx := context.Background()
	stores := newTestStores(t)

	// Chunk IDs deliberately out of ordinal order; the by-document index
	// must still return document order.
	chunks := []*core.Chunk{
		makeChunk(300, 1, 2, "third"),
		makeChunk(100, 1, 0, "first"),
		makeChunk(200, 1, 1, "second"),
	}
	require.NoError(t, stores.Documents.ReplaceChunks(ctx, "ns", 1, chunks))

	got, err := stores.Documents.GetChunksByDocument(ctx, "ns", 1)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, chunk := range got {
		assert.Equal(t, i, chunk.Ordinal)
	}
}

func TestGetChunksSkipsMissing(t *testing.T) {
	ctx := context.Background()
	stores := newTestStores(t)

	require.NoError(t, stores.Documents.ReplaceChunks(ctx, "ns", 1, []*core.Chunk{
		makeChunk(1, 1, 0, "present"),
	}))

	chunks, err := stores.Documents.GetChunks(ctx, "ns", 1, 999)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, core.ID(1), chunks[0].Id)
}

func TestDeleteDocument(t *testing.T) {
	ctx := context.Background()
	stores := newTestStores(t)

	require.NoError(t, stores.Documents.PutDocument(ctx, &core.Document{Id: 1, Namespace: "ns"}))
	require.NoError(t, stores.Documents.ReplaceChunks(ctx, "ns", 1, []*core.Chunk{
		makeChunk(10, 1, 0, "body"),
	}))

	require.NoError(t, stores.Documents.DeleteDocument(ctx, "ns", 1))

	_, err := stores.Documents.GetDocument(ctx, "ns", 1)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = stores.Documents.GetChunk(ctx, "ns", 10)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	chunks, err := stores.Documents.GetChunksByDocument(ctx, "ns", 1)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}
