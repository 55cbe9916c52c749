package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Uththunga/Ethos-Prompt-sub003/core"
)

func TestDocumentMUSRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	doc := core.Document{
		Id:         core.IDFromContent("doc"),
		Namespace:  "ns",
		OwnerId:    "owner-7",
		MimeType:   "text/markdown",
		ByteSize:   1024,
		Status:     core.DocumentStatusReady,
		InsertedAt: now,
		UpdatedAt:  now.Add(time.Minute),
	}

	bs := make([]byte, core.DocumentMUS.Size(doc))
	n := core.DocumentMUS.Marshal(doc, bs)
	assert.Equal(t, len(bs), n)

	got, n, err := core.DocumentMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.Equal(t, len(bs), n)
	assert.Equal(t, doc, got)
}

func TestChunkMUSRoundTrip(t *testing.T) {
	t.Run("full chunk", func(t *testing.T) {
		chunk := core.Chunk{
			Id:         42,
			DocumentId: 7,
			Namespace:  "ns",
			Ordinal:    3,
			Text:       "chunk body text",
			TokenCount: 3,
			Strategy:   "hierarchical",
			Metadata:   map[string]string{"heading": "Install", "parent": "Guide"},
			InsertedAt: time.Now().UTC().Truncate(time.Microsecond),
		}

		bs := make([]byte, core.ChunkMUS.Size(chunk))
		core.ChunkMUS.Marshal(chunk, bs)

		got, _, err := core.ChunkMUS.Unmarshal(bs)
		require.NoError(t, err)
		assert.Equal(t, chunk, got)
	})

	t.Run("nil metadata and zero times survive", func(t *testing.T) {
		chunk := core.Chunk{Id: 1, Namespace: "ns", Text: "x", TokenCount: 1, Strategy: "fixed"}

		bs := make([]byte, core.ChunkMUS.Size(chunk))
		core.ChunkMUS.Marshal(chunk, bs)

		got, _, err := core.ChunkMUS.Unmarshal(bs)
		require.NoError(t, err)
		assert.Nil(t, got.Metadata)
		assert.True(t, got.InsertedAt.IsZero())
	})
}

func TestEmbeddingRecordMUSRoundTrip(t *testing.T) {
	record := core.EmbeddingRecord{
		ChunkId:     9,
		DocumentId:  4,
		Vector:      []float32{0.25, -1.5, 3.0625},
		Provider:    "primary",
		Model:       "nomic-embed-text",
		GeneratedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	bs := make([]byte, core.EmbeddingRecordMUS.Size(record))
	n := core.EmbeddingRecordMUS.Marshal(record, bs)
	assert.Equal(t, len(bs), n)

	got, _, err := core.EmbeddingRecordMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.Equal(t, record, got)
}

func TestProcessingJobMUSRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	job := core.ProcessingJob{
		Id:         "e2c1c7f0-0000-4000-8000-000000000001",
		DocumentId: 11,
		Namespace:  "ns",
		Stage:      core.StageFailed,
		Attempts:   map[int]int{int(core.StageEmbedding): 3},
		Transitions: []core.StageTransition{
			{Stage: core.StagePending, EnteredAt: now},
			{Stage: core.StageExtracting, EnteredAt: now.Add(time.Millisecond)},
			{Stage: core.StageFailed, EnteredAt: now.Add(time.Second)},
		},
		ErrorDetail: "all providers failed",
		Cancelled:   false,
		StartedAt:   now,
		CompletedAt: now.Add(time.Second),
		UpdatedAt:   now.Add(time.Second),
	}

	bs := make([]byte, core.ProcessingJobMUS.Size(job))
	n := core.ProcessingJobMUS.Marshal(job, bs)
	assert.Equal(t, len(bs), n)

	got, n, err := core.ProcessingJobMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.Equal(t, len(bs), n)
	assert.Equal(t, job, got)
}

func TestMUSUnmarshalTruncated(t *testing.T) {
	chunk := core.Chunk{Id: 1, Namespace: "ns", Text: "text", TokenCount: 1}
	bs := make([]byte, core.ChunkMUS.Size(chunk))
	core.ChunkMUS.Marshal(chunk, bs)

	_, _, err := core.ChunkMUS.Unmarshal(bs[:2])
	assert.Error(t, err)
}
