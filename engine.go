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
	"fmt"
	"log/slog"
	"time"

	"github.com/Uththunga/Ethos-Prompt-sub003/assembly"
	"github.com/Uththunga/Ethos-Prompt-sub003/chunking"
	"github.com/Uththunga/Ethos-Prompt-sub003/core"
	"github.com/Uththunga/Ethos-Prompt-sub003/embedding"
	"github.com/Uththunga/Ethos-Prompt-sub003/fusion"
	"github.com/Uththunga/Ethos-Prompt-sub003/pipeline"
	"github.com/Uththunga/Ethos-Prompt-sub003/query"
	"github.com/Uththunga/Ethos-Prompt-sub003/storage/badger"
)

const (
	// DefaultIndexTimeout bounds each index search on the read path. A source
	// that misses the deadline degrades fusion to single-source instead of
	// failing the query.
	DefaultIndexTimeout = 2 * time.Second

	// DefaultMaxResults is the result cap when a query does not set one.
	DefaultMaxResults = 10
)

// Engine is the top-level facade over the full retrieval stack: document
// pipeline on the write path, enhanced hybrid search on the read path. All
// state lives under one badger backend; namespaces isolate tenants.
type Engine struct {
	stores       *badger.Stores
	gateway      *embedding.Gateway
	enhancer     *query.Enhancer
	assembler    *assembly.Assembler
	orchestrator *pipeline.Orchestrator
	monitor      RetrievalMonitor
	algorithm    fusion.Algorithm
	indexTimeout time.Duration
	logger       *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	inMemory      bool
	providers     []embedding.Provider
	gatewayOpts   []embedding.GatewayOption
	enhancerOpts  []query.EnhancerOption
	assemblerOpts []assembly.Option
	pipelineOpts  []pipeline.Option
	monitor       RetrievalMonitor
	algorithm     fusion.Algorithm
	indexTimeout  time.Duration
	logger        *slog.Logger
}

// WithProviders sets the ordered embedding provider fallback chain.
// At least one provider is required.
func WithProviders(providers ...embedding.Provider) EngineOption {
	return func(o *engineOptions) {
		o.providers = providers
	}
}

// WithInMemory keeps all storage in memory. Intended for tests.
func WithInMemory() EngineOption {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// WithGatewayOptions forwards options to the embedding gateway.
func WithGatewayOptions(opts ...embedding.GatewayOption) EngineOption {
	return func(o *engineOptions) {
		o.gatewayOpts = append(o.gatewayOpts, opts...)
	}
}

// WithEnhancerOptions forwards options to the query enhancer.
func WithEnhancerOptions(opts ...query.EnhancerOption) EngineOption {
	return func(o *engineOptions) {
		o.enhancerOpts = append(o.enhancerOpts, opts...)
	}
}

// WithAssemblerOptions forwards options to the context assembler.
func WithAssemblerOptions(opts ...assembly.Option) EngineOption {
	return func(o *engineOptions) {
		o.assemblerOpts = append(o.assemblerOpts, opts...)
	}
}

// WithPipelineOptions forwards options to the pipeline orchestrator.
func WithPipelineOptions(opts ...pipeline.Option) EngineOption {
	return func(o *engineOptions) {
		o.pipelineOpts = append(o.pipelineOpts, opts...)
	}
}

// WithMonitor installs a retrieval monitor on the read path.
func WithMonitor(monitor RetrievalMonitor) EngineOption {
	return func(o *engineOptions) {
		o.monitor = monitor
	}
}

// WithFusionAlgorithm sets the default fusion algorithm.
// Default is AlgorithmAdaptive.
func WithFusionAlgorithm(algorithm fusion.Algorithm) EngineOption {
	return func(o *engineOptions) {
		o.algorithm = algorithm
	}
}

// WithIndexTimeout sets the per-index search deadline on the read path.
func WithIndexTimeout(timeout time.Duration) EngineOption {
	return func(o *engineOptions) {
		o.indexTimeout = timeout
	}
}

// WithEngineLogger sets the engine's logger.
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// NewEngine opens an engine rooted at filePath. At least one embedding
// provider must be configured through WithProviders.
func NewEngine(filePath string, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		algorithm:    fusion.AlgorithmAdaptive,
		indexTimeout: DefaultIndexTimeout,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if len(options.providers) == 0 {
		return nil, fmt.Errorf("%w: %w", core.ErrConfiguration, embedding.ErrNoProviders)
	}
	if options.monitor == nil {
		options.monitor = &noopMonitor{}
	}

	var stores *badger.Stores
	var err error
	if options.inMemory {
		stores, err = badger.NewMemoryStores()
	} else {
		stores, err = badger.OpenStores(filePath)
	}
	if err != nil {
		return nil, err
	}

	gateway, err := embedding.NewGateway(options.providers, options.gatewayOpts...)
	if err != nil {
		stores.Close()
		return nil, err
	}

	enhancer, err := query.NewEnhancer(options.enhancerOpts...)
	if err != nil {
		gateway.Close()
		stores.Close()
		return nil, err
	}

	assembler, err := assembly.NewAssembler(options.assemblerOpts...)
	if err != nil {
		gateway.Close()
		stores.Close()
		return nil, err
	}

	orchestrator, err := pipeline.NewOrchestrator(
		stores.Documents, stores.Vectors, stores.Keywords, stores.Jobs, gateway,
		options.pipelineOpts...)
	if err != nil {
		gateway.Close()
		stores.Close()
		return nil, err
	}

	return &Engine{
		stores:       stores,
		gateway:      gateway,
		enhancer:     enhancer,
		assembler:    assembler,
		orchestrator: orchestrator,
		monitor:      options.monitor,
		algorithm:    options.algorithm,
		indexTimeout: options.indexTimeout,
		logger:       options.logger.With("component", "engine"),
	}, nil
}

// Close drains running pipeline jobs and releases all resources.
func (e *Engine) Close() error {
	e.orchestrator.Release()
	e.gateway.Close()
	if err := e.stores.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// SubmitConfig holds optional parameters for document submission.
type SubmitConfig struct {
	// Strategy selects chunking; zero value auto-detects from structure.
	Strategy chunking.Strategy

	// ChunkConfig holds chunking parameters. Zero value means defaults.
	ChunkConfig chunking.Config

	MimeType string
	OwnerId  string
}

// SubmitDocument starts the processing pipeline for a document's extracted
// text and returns the job id for status polling. Resubmitting a document
// supersedes any job still running for it.
func (e *Engine) SubmitDocument(ctx context.Context, namespace string, documentID core.ID, docText string, config SubmitConfig) (string, error) {
	return e.orchestrator.Submit(ctx, pipeline.SubmitRequest{
		Namespace:   namespace,
		DocumentId:  documentID,
		Text:        docText,
		MimeType:    config.MimeType,
		OwnerId:     config.OwnerId,
		Strategy:    config.Strategy,
		ChunkConfig: config.ChunkConfig,
	})
}

// GetJobStatus returns the current state of a processing job.
func (e *Engine) GetJobStatus(ctx context.Context, jobID string) (*core.ProcessingJob, error) {
	return e.stores.Jobs.GetJob(ctx, jobID)
}

// GetJobsByDocument returns all processing jobs for a document, newest first.
func (e *Engine) GetJobsByDocument(ctx context.Context, namespace string, documentID core.ID) ([]*core.ProcessingJob, error) {
	return e.stores.Jobs.GetJobsByDocument(ctx, namespace, documentID)
}

// CancelJob stops a running job. The pipeline worker records the failed,
// cancelled terminal state once it observes the cancellation, mid-call or at
// the next stage boundary. Cancelling an unknown or finished job is a no-op.
func (e *Engine) CancelJob(ctx context.Context, jobID string) error {
	return e.orchestrator.Cancel(ctx, jobID)
}

// ListDocuments returns all documents in a namespace.
func (e *Engine) ListDocuments(ctx context.Context, namespace string) ([]*core.Document, error) {
	return e.stores.Documents.ListDocuments(ctx, namespace)
}

// GetDocument returns a document record.
func (e *Engine) GetDocument(ctx context.Context, namespace string, documentID core.ID) (*core.Document, error) {
	return e.stores.Documents.GetDocument(ctx, namespace, documentID)
}

// DeleteDocument removes a document with all of its chunks, embeddings, and
// index postings.
func (e *Engine) DeleteDocument(ctx context.Context, namespace string, documentID core.ID) error {
	chunks, err := e.stores.Documents.GetChunksByDocument(ctx, namespace, documentID)
	if err != nil {
		return err
	}
	chunkIDs := make([]core.ID, len(chunks))
	for i, chunk := range chunks {
		chunkIDs[i] = chunk.Id
	}

	if len(chunkIDs) > 0 {
		if err := e.stores.Vectors.Delete(ctx, namespace, chunkIDs...); err != nil {
			return err
		}
		if err := e.stores.Keywords.Remove(ctx, namespace, chunkIDs...); err != nil {
			return err
		}
	}

	jobs, err := e.stores.Jobs.GetJobsByDocument(ctx, namespace, documentID)
	if err != nil {
		return err
	}
	for _, job := range jobs {
		if err := e.stores.Jobs.DeleteJob(ctx, job.Id); err != nil {
			return err
		}
	}

	if err := e.stores.Documents.DeleteDocument(ctx, namespace, documentID); err != nil {
		return err
	}

	e.logger.Info("document deleted",
		"namespace", namespace, "document", documentID, "chunks", len(chunkIDs))
	return nil
}

// WaitForJobs blocks until all submitted pipeline jobs have finished.
// Intended for tests and controlled shutdown.
func (e *Engine) WaitForJobs() {
	e.orchestrator.Wait()
}
