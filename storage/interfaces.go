package storage

import (
	"context"

	"github.com/Uththunga/Ethos-Prompt-sub003/core"
)

// Filter restricts index reads to a subset of the namespace. Filters are
// applied before or during scoring so top-k never under-fills because of
// post-filtering.
type Filter struct {
	// DocumentIds restricts matches to the given documents. Empty means all
	// documents in the namespace.
	DocumentIds []core.ID
}

// Match reports whether an entry for the given document passes the filter.
func (f Filter) Match(documentID core.ID) bool {
	if len(f.DocumentIds) == 0 {
		return true
	}
	for _, id := range f.DocumentIds {
		if id == documentID {
			return true
		}
	}
	return false
}

// VectorMatch is a single vector search hit.
type VectorMatch struct {
	ChunkId    core.ID
	DocumentId core.ID
	Similarity float64
}

// KeywordMatch is a single keyword search hit.
type KeywordMatch struct {
	ChunkId    core.ID
	DocumentId core.ID
	Score      float64
}

// DocumentStore provides operations for managing documents and their chunks.
// Implementations must be thread-safe and support concurrent access.
// The namespace argument is mandatory on every call.
type DocumentStore interface {
	// PutDocument inserts or updates a document record.
	PutDocument(ctx context.Context, doc *core.Document) error

	// GetDocument retrieves a document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, namespace string, id core.ID) (*core.Document, error)

	// ListDocuments retrieves all documents in a namespace.
	ListDocuments(ctx context.Context, namespace string) ([]*core.Document, error)

	// ReplaceChunks atomically swaps the chunk set of a document: prior chunks
	// are removed and the new set written in one transaction, so search never
	// observes old and new chunks simultaneously.
	ReplaceChunks(ctx context.Context, namespace string, documentID core.ID, chunks []*core.Chunk) error

	// GetChunk retrieves a single chunk by ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, namespace string, id core.ID) (*core.Chunk, error)

	// GetChunks retrieves multiple chunks by their IDs.
	// Returns only the chunks that exist (no error for missing chunks).
	GetChunks(ctx context.Context, namespace string, ids ...core.ID) ([]*core.Chunk, error)

	// GetChunksByDocument retrieves a document's chunks ordered by ordinal.
	GetChunksByDocument(ctx context.Context, namespace string, documentID core.ID) ([]*core.Chunk, error)

	// DeleteDocument removes a document and all of its chunks.
	DeleteDocument(ctx context.Context, namespace string, documentID core.ID) error

	// Close closes the store and releases resources.
	Close() error
}

// VectorIndex persists embedding vectors per namespace and answers top-k
// cosine similarity queries.
type VectorIndex interface {
	// Upsert inserts or replaces embedding records by chunk ID. Re-upserting
	// replaces, never duplicates. A record whose vector dimensionality differs
	// from the namespace's established dimensionality is rejected with
	// core.ErrConfiguration.
	Upsert(ctx context.Context, namespace string, records ...*core.EmbeddingRecord) error

	// Search returns up to topK entries ranked by cosine similarity to the
	// query vector, most similar first. The filter is applied before scoring.
	Search(ctx context.Context, namespace string, queryVector []float32, topK int, filter Filter) ([]VectorMatch, error)

	// Delete removes embedding records by chunk ID. Missing IDs are ignored.
	Delete(ctx context.Context, namespace string, chunkIDs ...core.ID) error

	// Dimension returns the established vector dimensionality for a
	// namespace, or 0 if the namespace holds no vectors yet.
	Dimension(ctx context.Context, namespace string) (int, error)

	// Close closes the index and releases resources.
	Close() error
}

// KeywordIndex persists term-frequency statistics per namespace and answers
// BM25-ranked keyword queries.
type KeywordIndex interface {
	// Index records a chunk's tokens in the namespace's inverted index.
	// Re-indexing the same chunk ID replaces its previous postings.
	Index(ctx context.Context, namespace string, chunkID, documentID core.ID, tokens []string) error

	// Remove deletes a chunk's postings from the namespace.
	// Removing an unindexed chunk is a no-op.
	Remove(ctx context.Context, namespace string, chunkIDs ...core.ID) error

	// Search returns up to topK chunks ranked by BM25 score, best first.
	// The filter is applied before scoring.
	Search(ctx context.Context, namespace string, queryTokens []string, topK int, filter Filter) ([]KeywordMatch, error)

	// Close closes the index and releases resources.
	Close() error
}

// JobStore provides operations for managing processing jobs.
type JobStore interface {
	// PutJob inserts or updates a processing job.
	PutJob(ctx context.Context, job *core.ProcessingJob) error

	// GetJob retrieves a job by its ID.
	// Returns ErrNotFound if the job doesn't exist.
	GetJob(ctx context.Context, jobID string) (*core.ProcessingJob, error)

	// GetJobsByDocument retrieves all jobs for a document, newest first.
	GetJobsByDocument(ctx context.Context, namespace string, documentID core.ID) ([]*core.ProcessingJob, error)

	// DeleteJob removes a job record.
	DeleteJob(ctx context.Context, jobID string) error

	// Close closes the store and releases resources.
	Close() error
}
