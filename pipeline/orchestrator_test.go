package pipeline_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Uththunga/Ethos-Prompt-sub003/core"
	"github.com/Uththunga/Ethos-Prompt-sub003/embedding"
	"github.com/Uththunga/Ethos-Prompt-sub003/embedding/mock"
	"github.com/Uththunga/Ethos-Prompt-sub003/pipeline"
	"github.com/Uththunga/Ethos-Prompt-sub003/storage"
	"github.com/Uththunga/Ethos-Prompt-sub003/storage/badger"
)

const testNamespace = "pipelinetest"

func newTestOrchestrator(t *testing.T, provider embedding.Provider) (*pipeline.Orchestrator, *badger.Stores) {
	t.Helper()

	stores, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { stores.Close() })

	gateway, err := embedding.NewGateway([]embedding.Provider{provider})
	require.NoError(t, err)
	t.Cleanup(gateway.Close)

	orchestrator, err := pipeline.NewOrchestrator(
		stores.Documents, stores.Vectors, stores.Keywords, stores.Jobs, gateway,
		pipeline.WithPoolSize(1),
		pipeline.WithRetryPolicy(2, time.Millisecond),
	)
	require.NoError(t, err)
	t.Cleanup(orchestrator.Release)

	return orchestrator, stores
}

func TestNewOrchestrator(t *testing.T) {
	stores, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer stores.Close()

	gateway, err := embedding.NewGateway([]embedding.Provider{mock.NewProvider()})
	require.NoError(t, err)
	defer gateway.Close()

	t.Run("requires all dependencies", func(t *testing.T) {
		_, err := pipeline.NewOrchestrator(nil, stores.Vectors, stores.Keywords, stores.Jobs, gateway)
		assert.ErrorIs(t, err, pipeline.ErrDocumentStoreRequired)

		_, err = pipeline.NewOrchestrator(stores.Documents, nil, stores.Keywords, stores.Jobs, gateway)
		assert.ErrorIs(t, err, pipeline.ErrVectorIndexRequired)

		_, err = pipeline.NewOrchestrator(stores.Documents, stores.Vectors, nil, stores.Jobs, gateway)
		assert.ErrorIs(t, err, pipeline.ErrKeywordIndexRequired)

		_, err = pipeline.NewOrchestrator(stores.Documents, stores.Vectors, stores.Keywords, nil, gateway)
		assert.ErrorIs(t, err, pipeline.ErrJobStoreRequired)

		_, err = pipeline.NewOrchestrator(stores.Documents, stores.Vectors, stores.Keywords, stores.Jobs, nil)
		assert.ErrorIs(t, err, pipeline.ErrEmbedderRequired)
	})
}

func TestSubmitValidation(t *testing.T) {
	ctx := context.Background()
	orchestrator, _ := newTestOrchestrator(t, mock.NewProvider())

	t.Run("rejects empty namespace", func(t *testing.T) {
		_, err := orchestrator.Submit(ctx, pipeline.SubmitRequest{DocumentId: 1, Text: "text"})
		assert.ErrorIs(t, err, core.ErrEmptyNamespace)
	})

	t.Run("rejects zero document id", func(t *testing.T) {
		_, err := orchestrator.Submit(ctx, pipeline.SubmitRequest{Namespace: testNamespace, Text: "text"})
		assert.ErrorIs(t, err, core.ErrInvalidDocument)
	})
}

func TestPipelineProcessesDocument(t *testing.T) {
	ctx := context.Background()
	orchestrator, stores := newTestOrchestrator(t, mock.NewProvider())

	jobID, err := orchestrator.Submit(ctx, pipeline.SubmitRequest{
		Namespace:  testNamespace,
		DocumentId: 42,
		Text: "Badger stores keys in sorted order. Vector search ranks by cosine similarity.\n\n" +
			"Keyword search ranks by BM25. Fusion merges both rankings into one list.",
	})
	require.NoError(t, err)
	orchestrator.Wait()

	t.Run("job reaches completed with full stage history", func(t *testing.T) {
		job, err := stores.Jobs.GetJob(ctx, jobID)
		require.NoError(t, err)

		assert.Equal(t, core.StageCompleted, job.Stage)
		assert.Empty(t, job.ErrorDetail)
		assert.False(t, job.CompletedAt.IsZero())

		var stages []core.JobStage
		for _, tr := range job.Transitions {
			stages = append(stages, tr.Stage)
		}
		assert.Equal(t, []core.JobStage{
			core.StagePending,
			core.StageExtracting,
			core.StageChunking,
			core.StageEmbedding,
			core.StageIndexing,
			core.StageCompleted,
		}, stages)

		for i := 1; i < len(job.Transitions); i++ {
			assert.False(t, job.Transitions[i].EnteredAt.Before(job.Transitions[i-1].EnteredAt))
		}
	})

	t.Run("document becomes ready", func(t *testing.T) {
		doc, err := stores.Documents.GetDocument(ctx, testNamespace, 42)
		require.NoError(t, err)
		assert.Equal(t, core.DocumentStatusReady, doc.Status)
	})

	t.Run("chunks are stored in ordinal order", func(t *testing.T) {
		chunks, err := stores.Documents.GetChunksByDocument(ctx, testNamespace, 42)
		require.NoError(t, err)
		require.NotEmpty(t, chunks)
		for i, chunk := range chunks {
			assert.Equal(t, i, chunk.Ordinal)
			assert.Equal(t, core.ID(42), chunk.DocumentId)
		}
	})

	t.Run("chunks are searchable in both indexes", func(t *testing.T) {
		queryVector := mock.DeterministicVector("cosine similarity", mock.DefaultDimension)
		vectorHits, err := stores.Vectors.Search(ctx, testNamespace, queryVector, 5, storage.Filter{})
		require.NoError(t, err)
		assert.NotEmpty(t, vectorHits)

		keywordHits, err := stores.Keywords.Search(ctx, testNamespace, []string{"bm25"}, 5, storage.Filter{})
		require.NoError(t, err)
		assert.NotEmpty(t, keywordHits)
	})
}

func TestPipelineResubmitReplacesChunks(t *testing.T) {
	ctx := context.Background()
	orchestrator, stores := newTestOrchestrator(t, mock.NewProvider())

	_, err := orchestrator.Submit(ctx, pipeline.SubmitRequest{
		Namespace:  testNamespace,
		DocumentId: 7,
		Text:       "original content about reciprocal rank fusion and keyword scoring",
	})
	require.NoError(t, err)
	orchestrator.Wait()

	first, err := stores.Documents.GetChunksByDocument(ctx, testNamespace, 7)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	_, err = orchestrator.Submit(ctx, pipeline.SubmitRequest{
		Namespace:  testNamespace,
		DocumentId: 7,
		Text:       "replacement content about context assembly",
	})
	require.NoError(t, err)
	orchestrator.Wait()

	second, err := stores.Documents.GetChunksByDocument(ctx, testNamespace, 7)
	require.NoError(t, err)
	require.NotEmpty(t, second)
	assert.NotEqual(t, first[0].Id, second[0].Id)

	// Stale postings must be gone: the old content's terms no longer match.
	hits, err := stores.Keywords.Search(ctx, testNamespace, []string{"reciprocal"}, 5, storage.Filter{})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestPipelineFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("empty text fails without retry", func(t *testing.T) {
		orchestrator, stores := newTestOrchestrator(t, mock.NewProvider())

		jobID, err := orchestrator.Submit(ctx, pipeline.SubmitRequest{
			Namespace:  testNamespace,
			DocumentId: 9,
			Text:       "   \n\t  ",
		})
		require.NoError(t, err)
		orchestrator.Wait()

		job, err := stores.Jobs.GetJob(ctx, jobID)
		require.NoError(t, err)
		assert.Equal(t, core.StageFailed, job.Stage)
		assert.Contains(t, job.ErrorDetail, "document text is empty")
		assert.Equal(t, 1, job.Attempts[int(core.StageExtracting)])

		doc, err := stores.Documents.GetDocument(ctx, testNamespace, 9)
		require.NoError(t, err)
		assert.Equal(t, core.DocumentStatusFailed, doc.Status)
	})

	t.Run("embedding failure is retried then recorded", func(t *testing.T) {
		failing := mock.NewProvider()
		failing.EmbedFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, errors.New("provider down")
		}
		orchestrator, stores := newTestOrchestrator(t, failing)

		jobID, err := orchestrator.Submit(ctx, pipeline.SubmitRequest{
			Namespace:  testNamespace,
			DocumentId: 10,
			Text:       "some document text to embed",
		})
		require.NoError(t, err)
		orchestrator.Wait()

		job, err := stores.Jobs.GetJob(ctx, jobID)
		require.NoError(t, err)
		assert.Equal(t, core.StageFailed, job.Stage)
		assert.NotEmpty(t, job.ErrorDetail)
		assert.Equal(t, 2, job.Attempts[int(core.StageEmbedding)])
	})
}

func TestCancelUnknownJob(t *testing.T) {
	orchestrator, _ := newTestOrchestrator(t, mock.NewProvider())
	assert.NoError(t, orchestrator.Cancel(context.Background(), "no-such-job"))
}

// embedVectors is the default deterministic embedding for injected EmbedFuncs.
func embedVectors(texts []string) [][]float32 {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = mock.DeterministicVector(text, mock.DefaultDimension)
	}
	return vectors
}

func TestCancelRunningJob(t *testing.T) {
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	blocking := mock.NewProvider()
	blocking.EmbedFunc = func(c context.Context, texts []string) ([][]float32, error) {
		once.Do(func() { close(started) })
		select {
		case <-release:
			return embedVectors(texts), nil
		case <-c.Done():
			return nil, c.Err()
		}
	}
	orchestrator, stores := newTestOrchestrator(t, blocking)

	jobID, err := orchestrator.Submit(ctx, pipeline.SubmitRequest{
		Namespace:  testNamespace,
		DocumentId: 21,
		Text:       "document that will be cancelled while its embedding is in flight",
	})
	require.NoError(t, err)

	<-started
	require.NoError(t, orchestrator.Cancel(ctx, jobID))
	close(release)
	orchestrator.Wait()

	job, err := stores.Jobs.GetJob(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, core.StageFailed, job.Stage)
	assert.True(t, job.Cancelled)
	assert.Contains(t, job.ErrorDetail, "job cancelled")

	doc, err := stores.Documents.GetDocument(ctx, testNamespace, 21)
	require.NoError(t, err)
	assert.Equal(t, core.DocumentStatusFailed, doc.Status)
}

func TestResubmitSupersedesRunningJob(t *testing.T) {
	ctx := context.Background()

	// The first embedding call blocks until its job is cancelled; later calls
	// succeed, so the superseding job can complete.
	firstCall := make(chan struct{})
	var once sync.Once

	provider := mock.NewProvider()
	provider.EmbedFunc = func(c context.Context, texts []string) ([][]float32, error) {
		blocked := false
		once.Do(func() {
			blocked = true
			close(firstCall)
		})
		if blocked {
			<-c.Done()
			return nil, c.Err()
		}
		return embedVectors(texts), nil
	}
	orchestrator, stores := newTestOrchestrator(t, provider)

	firstJob, err := orchestrator.Submit(ctx, pipeline.SubmitRequest{
		Namespace:  testNamespace,
		DocumentId: 22,
		Text:       "first revision stuck in embedding",
	})
	require.NoError(t, err)
	<-firstCall

	secondJob, err := orchestrator.Submit(ctx, pipeline.SubmitRequest{
		Namespace:  testNamespace,
		DocumentId: 22,
		Text:       "second revision replacing the stuck one",
	})
	require.NoError(t, err)
	orchestrator.Wait()

	t.Run("superseded job fails as cancelled", func(t *testing.T) {
		job, err := stores.Jobs.GetJob(ctx, firstJob)
		require.NoError(t, err)
		assert.Equal(t, core.StageFailed, job.Stage)
		assert.True(t, job.Cancelled)
	})

	t.Run("superseding job completes", func(t *testing.T) {
		job, err := stores.Jobs.GetJob(ctx, secondJob)
		require.NoError(t, err)
		assert.Equal(t, core.StageCompleted, job.Stage, "job error: %s", job.ErrorDetail)

		doc, err := stores.Documents.GetDocument(ctx, testNamespace, 22)
		require.NoError(t, err)
		assert.Equal(t, core.DocumentStatusReady, doc.Status)
	})
}
