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

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/Uththunga/Ethos-Prompt-sub003/chunking"
	"github.com/Uththunga/Ethos-Prompt-sub003/core"
	"github.com/Uththunga/Ethos-Prompt-sub003/embedding"
	"github.com/Uththunga/Ethos-Prompt-sub003/storage"
	"github.com/Uththunga/Ethos-Prompt-sub003/text"
)

const (
	// DefaultMaxAttempts bounds retries per stage.
	DefaultMaxAttempts = 3

	// DefaultBaseDelay is the initial retry backoff.
	DefaultBaseDelay = 500 * time.Millisecond
)

// Embedder is the slice of the embedding gateway the pipeline needs.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([]embedding.Result, error)
}

type nowFunc func() time.Time

// SubmitRequest describes one document to process.
type SubmitRequest struct {
	Namespace  string
	DocumentId core.ID
	Text       string
	MimeType   string
	OwnerId    string

	// Strategy selects chunking; StrategyAuto detects from structure.
	Strategy chunking.Strategy

	// ChunkConfig holds chunking parameters. Zero value means defaults.
	ChunkConfig chunking.Config
}

// Orchestrator drives documents through the processing state machine:
// pending, extracting, chunking, embedding, indexing, completed, with failed
// reachable from any non-terminal stage. Work runs asynchronously on a
// bounded worker pool; each stage is retried with backoff before the job
// fails. Submitting a document that already has a running job supersedes the
// older job.
type Orchestrator struct {
	documents storage.DocumentStore
	vectors   storage.VectorIndex
	keywords  storage.KeywordIndex
	jobs      storage.JobStore
	embedder  Embedder
	chunker   *chunking.Chunker
	pool      *ants.Pool

	maxAttempts int
	baseDelay   time.Duration
	now         nowFunc
	logger      *slog.Logger

	mu          sync.Mutex
	active      map[string]context.CancelFunc // job id -> cancel
	activeByDoc map[string]string             // namespace:document -> job id
	wg          sync.WaitGroup
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(o *Orchestrator) error {
		if size < 1 {
			size = 1
		}
		if o.pool != nil {
			o.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		o.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger.With("component", "pipeline")
		return nil
	}
}

// WithRetryPolicy sets the per-stage retry bound and initial backoff.
func WithRetryPolicy(maxAttempts int, baseDelay time.Duration) Option {
	return func(o *Orchestrator) error {
		if maxAttempts < 1 {
			return fmt.Errorf("%w: %w", core.ErrConfiguration, ErrInvalidMaxAttempts)
		}
		if baseDelay < 0 {
			return fmt.Errorf("%w: base delay must not be negative", core.ErrConfiguration)
		}
		o.maxAttempts = maxAttempts
		o.baseDelay = baseDelay
		return nil
	}
}

// WithChunker sets the chunker used by the chunking stage.
func WithChunker(chunker *chunking.Chunker) Option {
	return func(o *Orchestrator) error {
		if chunker == nil {
			return fmt.Errorf("%w: nil chunker", core.ErrConfiguration)
		}
		o.chunker = chunker
		return nil
	}
}

// NewOrchestrator creates a pipeline orchestrator.
func NewOrchestrator(
	documents storage.DocumentStore,
	vectors storage.VectorIndex,
	keywords storage.KeywordIndex,
	jobs storage.JobStore,
	embedder Embedder,
	opts ...Option,
) (*Orchestrator, error) {
	if documents == nil {
		return nil, ErrDocumentStoreRequired
	}
	if vectors == nil {
		return nil, ErrVectorIndexRequired
	}
	if keywords == nil {
		return nil, ErrKeywordIndexRequired
	}
	if jobs == nil {
		return nil, ErrJobStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		documents:   documents,
		vectors:     vectors,
		keywords:    keywords,
		jobs:        jobs,
		embedder:    embedder,
		pool:        pool,
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   DefaultBaseDelay,
		now:         func() time.Time { return time.Now().UTC() },
		logger:      slog.Default().With("component", "pipeline"),
		active:      make(map[string]context.CancelFunc),
		activeByDoc: make(map[string]string),
	}

	for _, opt := range opts {
		if optErr := opt(o); optErr != nil {
			o.Release()
			return nil, optErr
		}
	}

	if o.chunker == nil {
		chunker, chunkerErr := chunking.NewChunker(chunking.WithLogger(o.logger))
		if chunkerErr != nil {
			o.Release()
			return nil, chunkerErr
		}
		o.chunker = chunker
	}

	return o, nil
}

// Submit registers a document and starts its processing job asynchronously.
// A running job for the same document is superseded: cancelled in favor of
// the new one. Returns the new job's id.
func (o *Orchestrator) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	if req.Namespace == "" {
		return "", fmt.Errorf("%w: %w", core.ErrConfiguration, core.ErrEmptyNamespace)
	}
	if req.DocumentId == 0 {
		return "", fmt.Errorf("%w: zero document id", core.ErrInvalidDocument)
	}
	if req.ChunkConfig == (chunking.Config{}) {
		req.ChunkConfig = chunking.DefaultConfig()
	}
	if err := req.ChunkConfig.Validate(); err != nil {
		return "", err
	}

	now := o.now()
	doc := &core.Document{
		Id:         req.DocumentId,
		Namespace:  req.Namespace,
		OwnerId:    req.OwnerId,
		MimeType:   req.MimeType,
		ByteSize:   int64(len(req.Text)),
		Status:     core.DocumentStatusPending,
		InsertedAt: now,
		UpdatedAt:  now,
	}
	if existing, err := o.documents.GetDocument(ctx, req.Namespace, req.DocumentId); err == nil {
		doc.InsertedAt = existing.InsertedAt
	}
	if err := o.documents.PutDocument(ctx, doc); err != nil {
		return "", err
	}

	job := &core.ProcessingJob{
		Id:         uuid.NewString(),
		DocumentId: req.DocumentId,
		Namespace:  req.Namespace,
		Stage:      core.StagePending,
		Attempts:   make(map[int]int),
		StartedAt:  now,
		UpdatedAt:  now,
	}
	job.Transitions = append(job.Transitions, core.StageTransition{Stage: core.StagePending, EnteredAt: now})
	if err := o.jobs.PutJob(ctx, job); err != nil {
		return "", err
	}

	jobCtx, cancel := context.WithCancel(context.Background())
	o.register(job, cancel)

	o.wg.Add(1)
	if err := o.pool.Submit(func() {
		defer o.wg.Done()
		defer o.unregister(job)
		o.runJob(jobCtx, job, req)
	}); err != nil {
		o.wg.Done()
		o.unregister(job)
		cancel()
		return "", err
	}

	return job.Id, nil
}

// Cancel stops a running job by cancelling its context. An in-flight stage
// call is interrupted; otherwise the worker observes the cancellation at the
// next stage boundary. The worker goroutine is the sole writer of the job
// record, so Cancel never touches the store: the worker records the failed,
// cancelled terminal state itself. Cancelling an unknown or finished job is
// a no-op.
func (o *Orchestrator) Cancel(_ context.Context, jobID string) error {
	o.mu.Lock()
	cancel, ok := o.active[jobID]
	o.mu.Unlock()
	if ok {
		cancel()
	}
	return nil
}

// Wait blocks until all submitted jobs have finished.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Release stops the worker pool after draining running jobs.
// The orchestrator should not be used after calling Release.
func (o *Orchestrator) Release() {
	o.wg.Wait()
	if o.pool != nil {
		o.pool.Release()
	}
}

func docKey(namespace string, id core.ID) string {
	return fmt.Sprintf("%s:%d", namespace, id)
}

func (o *Orchestrator) register(job *core.ProcessingJob, cancel context.CancelFunc) {
	key := docKey(job.Namespace, job.DocumentId)
	o.mu.Lock()
	if priorID, ok := o.activeByDoc[key]; ok {
		if priorCancel, running := o.active[priorID]; running {
			o.logger.Info("superseding running job for document",
				"document", job.DocumentId, "prior_job", priorID, "job", job.Id)
			priorCancel()
		}
	}
	o.active[job.Id] = cancel
	o.activeByDoc[key] = job.Id
	o.mu.Unlock()
}

func (o *Orchestrator) unregister(job *core.ProcessingJob) {
	key := docKey(job.Namespace, job.DocumentId)
	o.mu.Lock()
	delete(o.active, job.Id)
	if o.activeByDoc[key] == job.Id {
		delete(o.activeByDoc, key)
	}
	o.mu.Unlock()
}

// jobState carries intermediate artifacts between stages.
type jobState struct {
	text    string
	chunks  []*core.Chunk
	records []*core.EmbeddingRecord
}

// runJob drives one job through every stage. Stage failures are retried with
// backoff up to the configured bound, then the job transitions to failed with
// the triggering error recorded.
func (o *Orchestrator) runJob(ctx context.Context, job *core.ProcessingJob, req SubmitRequest) {
	state := &jobState{}
	stages := []struct {
		stage core.JobStage
		run   func(context.Context) error
	}{
		{core.StageExtracting, func(c context.Context) error { return o.extract(c, req, state) }},
		{core.StageChunking, func(c context.Context) error { return o.chunk(c, req, state) }},
		{core.StageEmbedding, func(c context.Context) error { return o.embed(c, state) }},
		{core.StageIndexing, func(c context.Context) error { return o.index(c, req, state) }},
	}

	for _, s := range stages {
		if err := o.checkCancelled(ctx); err != nil {
			o.fail(job, err)
			return
		}
		if err := o.enterStage(job, s.stage); err != nil {
			o.fail(job, err)
			return
		}

		attempts, err := RetryWithBackoff(ctx, func() error { return s.run(ctx) }, o.maxAttempts, o.baseDelay)
		job.Attempts[int(s.stage)] = attempts
		if err != nil {
			if ctx.Err() != nil {
				err = fmt.Errorf("%w: %w", ErrJobCancelled, err)
			}
			o.fail(job, fmt.Errorf("%w: stage %s: %w", core.ErrPipelineStage, s.stage, err))
			return
		}
	}

	if err := o.checkCancelled(ctx); err != nil {
		o.fail(job, err)
		return
	}
	if err := o.enterStage(job, core.StageCompleted); err != nil {
		o.fail(job, err)
		return
	}
	o.setDocumentStatus(job.Namespace, job.DocumentId, core.DocumentStatusReady)
	o.logger.Info("document processed",
		"namespace", job.Namespace, "document", job.DocumentId,
		"job", job.Id, "chunks", len(state.chunks))
}

// checkCancelled detects cancellation at a stage boundary.
func (o *Orchestrator) checkCancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrJobCancelled, err)
	}
	return nil
}

// enterStage validates the transition, stamps it, and persists the job.
func (o *Orchestrator) enterStage(job *core.ProcessingJob, stage core.JobStage) error {
	if err := transition(job, stage, o.now); err != nil {
		return err
	}
	return o.jobs.PutJob(context.Background(), job)
}

// fail moves the job to the failed state with the triggering error recorded
// for operator inspection, and marks the document failed.
func (o *Orchestrator) fail(job *core.ProcessingJob, cause error) {
	o.logger.Error("pipeline job failed",
		"namespace", job.Namespace, "document", job.DocumentId,
		"job", job.Id, "stage", job.Stage.String(), "err", cause)

	if errors.Is(cause, ErrJobCancelled) {
		job.Cancelled = true
	}
	job.ErrorDetail = cause.Error()
	job.RecordTransition(core.StageFailed, o.now())
	if err := o.jobs.PutJob(context.Background(), job); err != nil {
		o.logger.Error("failed to persist failed job", "job", job.Id, "err", err)
	}
	o.setDocumentStatus(job.Namespace, job.DocumentId, core.DocumentStatusFailed)
}

func (o *Orchestrator) setDocumentStatus(namespace string, documentID core.ID, status core.DocumentStatus) {
	ctx := context.Background()
	doc, err := o.documents.GetDocument(ctx, namespace, documentID)
	if err != nil {
		o.logger.Error("failed to load document for status update",
			"document", documentID, "err", err)
		return
	}
	doc.Status = status
	doc.UpdatedAt = o.now()
	if err := o.documents.PutDocument(ctx, doc); err != nil {
		o.logger.Error("failed to update document status",
			"document", documentID, "err", err)
	}
}

// extract normalizes the submitted text. The engine only receives extracted
// plain text, so this stage is validation plus whitespace normalization.
func (o *Orchestrator) extract(_ context.Context, req SubmitRequest, state *jobState) error {
	normalized := text.NormalizeWhitespace(req.Text)
	if normalized == "" {
		return fmt.Errorf("%w: %w", core.ErrConfiguration, ErrEmptyDocumentText)
	}
	state.text = normalized

	o.setDocumentStatus(req.Namespace, req.DocumentId, core.DocumentStatusProcessing)
	return nil
}

// chunk splits the extracted text and assigns chunk identities. Chunk ids are
// content-derived so identical content in the same position is stable across
// reprocessing.
func (o *Orchestrator) chunk(_ context.Context, req SubmitRequest, state *jobState) error {
	candidates, err := o.chunker.Chunk(state.text, req.Strategy, req.ChunkConfig)
	if err != nil {
		return err
	}

	now := o.now()
	chunks := make([]*core.Chunk, len(candidates))
	for i, cand := range candidates {
		chunks[i] = &core.Chunk{
			Id:         core.IDFromContent(fmt.Sprintf("%s:%d:%d:%s", req.Namespace, req.DocumentId, cand.Ordinal, cand.Text)),
			DocumentId: req.DocumentId,
			Namespace:  req.Namespace,
			Ordinal:    cand.Ordinal,
			Text:       cand.Text,
			TokenCount: cand.TokenCount,
			Strategy:   cand.Strategy,
			Metadata:   cand.Metadata,
			InsertedAt: now,
		}
	}
	state.chunks = chunks
	return nil
}

// embed generates vectors for every chunk. A partial batch is treated as a
// stage failure and retried whole; cached successes make the retry only
// re-attempt the failed items.
func (o *Orchestrator) embed(ctx context.Context, state *jobState) error {
	if len(state.chunks) == 0 {
		state.records = nil
		return nil
	}

	texts := make([]string, len(state.chunks))
	for i, chunk := range state.chunks {
		texts[i] = chunk.Text
	}

	results, err := o.embedder.Embed(ctx, texts)
	if err != nil {
		return err
	}

	now := o.now()
	records := make([]*core.EmbeddingRecord, len(results))
	for i, result := range results {
		records[i] = &core.EmbeddingRecord{
			ChunkId:     state.chunks[i].Id,
			DocumentId:  state.chunks[i].DocumentId,
			Vector:      result.Vector,
			Provider:    result.Provider,
			Model:       result.Model,
			GeneratedAt: now,
		}
	}
	state.records = records
	return nil
}

// index commits the new chunk set: atomic chunk swap, vector upserts, keyword
// postings, and removal of stale index entries from the previous version.
func (o *Orchestrator) index(ctx context.Context, req SubmitRequest, state *jobState) error {
	prior, err := o.documents.GetChunksByDocument(ctx, req.Namespace, req.DocumentId)
	if err != nil {
		return err
	}

	if err := o.documents.ReplaceChunks(ctx, req.Namespace, req.DocumentId, state.chunks); err != nil {
		return err
	}

	if err := o.vectors.Upsert(ctx, req.Namespace, state.records...); err != nil {
		return err
	}
	for _, chunk := range state.chunks {
		if err := o.keywords.Index(ctx, req.Namespace, chunk.Id, chunk.DocumentId, text.Tokenize(chunk.Text)); err != nil {
			return err
		}
	}

	// Drop index entries for chunks the swap removed.
	current := make(map[core.ID]struct{}, len(state.chunks))
	for _, chunk := range state.chunks {
		current[chunk.Id] = struct{}{}
	}
	var stale []core.ID
	for _, chunk := range prior {
		if _, ok := current[chunk.Id]; !ok {
			stale = append(stale, chunk.Id)
		}
	}
	if len(stale) > 0 {
		if err := o.vectors.Delete(ctx, req.Namespace, stale...); err != nil {
			return err
		}
		if err := o.keywords.Remove(ctx, req.Namespace, stale...); err != nil {
			return err
		}
	}

	return nil
}
