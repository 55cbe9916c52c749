package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Uththunga/Ethos-Prompt-sub003/core"
)

func TestIDFromContent(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, core.IDFromContent("same input"), core.IDFromContent("same input"))
	})

	t.Run("distinct content yields distinct ids", func(t *testing.T) {
		assert.NotEqual(t, core.IDFromContent("alpha"), core.IDFromContent("beta"))
	})

	t.Run("empty content is hashable", func(t *testing.T) {
		assert.NotZero(t, core.IDFromContent(""))
	})
}

func TestJobStage(t *testing.T) {
	t.Run("names", func(t *testing.T) {
		assert.Equal(t, "pending", core.StagePending.String())
		assert.Equal(t, "embedding", core.StageEmbedding.String())
		assert.Equal(t, "completed", core.StageCompleted.String())
		assert.Equal(t, "unknown", core.JobStage(99).String())
	})

	t.Run("terminal states", func(t *testing.T) {
		assert.True(t, core.StageCompleted.Terminal())
		assert.True(t, core.StageFailed.Terminal())
		assert.False(t, core.StagePending.Terminal())
		assert.False(t, core.StageIndexing.Terminal())
	})
}

func TestRecordTransition(t *testing.T) {
	now := time.Now().UTC()
	job := &core.ProcessingJob{Id: "job-1", Namespace: "ns", Stage: core.StagePending}

	job.RecordTransition(core.StageExtracting, now)
	require.Len(t, job.Transitions, 1)
	assert.Equal(t, core.StageExtracting, job.Stage)
	assert.Equal(t, now, job.UpdatedAt)
	assert.True(t, job.CompletedAt.IsZero())

	later := now.Add(time.Second)
	job.RecordTransition(core.StageCompleted, later)
	require.Len(t, job.Transitions, 2)
	assert.Equal(t, later, job.CompletedAt)
}

func TestValidateDocument(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, core.ValidateDocument(&core.Document{Namespace: "ns"}))
	})

	t.Run("nil", func(t *testing.T) {
		assert.ErrorIs(t, core.ValidateDocument(nil), core.ErrInvalidDocument)
	})

	t.Run("empty namespace", func(t *testing.T) {
		err := core.ValidateDocument(&core.Document{})
		assert.ErrorIs(t, err, core.ErrInvalidDocument)
		assert.ErrorIs(t, err, core.ErrEmptyNamespace)
	})
}

func TestValidateChunk(t *testing.T) {
	valid := core.Chunk{Namespace: "ns", Text: "some text", Ordinal: 0}

	t.Run("valid", func(t *testing.T) {
		chunk := valid
		assert.NoError(t, core.ValidateChunk(&chunk))
	})

	t.Run("empty text", func(t *testing.T) {
		chunk := valid
		chunk.Text = ""
		assert.ErrorIs(t, core.ValidateChunk(&chunk), core.ErrEmptyText)
	})

	t.Run("negative ordinal", func(t *testing.T) {
		chunk := valid
		chunk.Ordinal = -1
		assert.ErrorIs(t, core.ValidateChunk(&chunk), core.ErrNegativeOrdinal)
	})
}

func TestValidateEmbeddingRecord(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, core.ValidateEmbeddingRecord(&core.EmbeddingRecord{Vector: []float32{0.1}}))
	})

	t.Run("empty vector", func(t *testing.T) {
		err := core.ValidateEmbeddingRecord(&core.EmbeddingRecord{})
		assert.ErrorIs(t, err, core.ErrEmptyVector)
	})
}

func TestValidateJob(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, core.ValidateJob(&core.ProcessingJob{Namespace: "ns", Stage: core.StagePending}))
	})

	t.Run("invalid stage", func(t *testing.T) {
		err := core.ValidateJob(&core.ProcessingJob{Namespace: "ns", Stage: 42})
		assert.ErrorIs(t, err, core.ErrInvalidJob)
		assert.ErrorIs(t, err, core.ErrInvalidStage)
	})
}
