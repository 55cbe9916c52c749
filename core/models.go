package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// DocumentStatus is the lifecycle status of a document.
type DocumentStatus int

const (
	// DocumentStatusPending means the document has been submitted but not processed.
	DocumentStatusPending DocumentStatus = iota + 1
	// DocumentStatusProcessing means a pipeline job is working on the document.
	DocumentStatusProcessing
	// DocumentStatusReady means the document is chunked, embedded, and searchable.
	DocumentStatusReady
	// DocumentStatusFailed means the last pipeline job for the document failed.
	DocumentStatusFailed
)

// Document represents an uploaded document within a namespace.
// The engine only ever sees extracted plain text; raw file storage is external.
type Document struct {
	Id         ID
	Namespace  string
	OwnerId    string
	MimeType   string
	ByteSize   int64
	Status     DocumentStatus
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// Chunk is a contiguous, independently retrievable unit of document text.
// Chunks are immutable once created; reprocessing a document replaces them.
type Chunk struct {
	Id         ID
	DocumentId ID
	Namespace  string
	Ordinal    int // Position within the document, reconstructs source order
	Text       string
	TokenCount int
	Strategy   string            // Chunking strategy that produced this chunk
	Metadata   map[string]string // e.g. section heading, parent section, page number
	InsertedAt time.Time
}

// EmbeddingRecord associates a chunk with its vector representation.
// All embeddings within one namespace must share dimensionality.
type EmbeddingRecord struct {
	ChunkId     ID
	DocumentId  ID
	Vector      []float32
	Provider    string
	Model       string
	GeneratedAt time.Time
}

// IntentLabel classifies a query's intent.
type IntentLabel string

const (
	IntentFactual       IntentLabel = "factual"
	IntentComparative   IntentLabel = "comparative"
	IntentSummarization IntentLabel = "summarization"
	IntentNavigational  IntentLabel = "navigational"
	IntentTransactional IntentLabel = "transactional"
	IntentOther         IntentLabel = "other"
)

// ScoredChunk is a chunk with its fused relevance score and provenance.
type ScoredChunk struct {
	Chunk         *Chunk
	Score         float64
	SemanticScore float64 // Raw cosine similarity, 0 if absent from vector results
	KeywordScore  float64 // Raw BM25 score, 0 if absent from keyword results
	Sources       []string
}

// RetrievedContext is the final token-budgeted context payload.
type RetrievedContext struct {
	Chunks      []*ScoredChunk
	TotalTokens int
	Text        string // Concatenated, human-readable context block with provenance
	Degraded    bool   // True when one retrieval source timed out and fusion proceeded single-source
}

// JobStage identifies a document pipeline stage.
type JobStage int

const (
	StagePending JobStage = iota + 1
	StageExtracting
	StageChunking
	StageEmbedding
	StageIndexing
	StageCompleted
	StageFailed
)

var stageNames = map[JobStage]string{
	StagePending:    "pending",
	StageExtracting: "extracting",
	StageChunking:   "chunking",
	StageEmbedding:  "embedding",
	StageIndexing:   "indexing",
	StageCompleted:  "completed",
	StageFailed:     "failed",
}

func (s JobStage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether the stage is a terminal state.
func (s JobStage) Terminal() bool {
	return s == StageCompleted || s == StageFailed
}

// StageTransition records a single stage change with its timestamp.
type StageTransition struct {
	Stage     JobStage
	EnteredAt time.Time
}

// ProcessingJob tracks a document's progress through the pipeline.
// Terminal states are StageCompleted and StageFailed.
type ProcessingJob struct {
	Id          string // UUID
	DocumentId  ID
	Namespace   string
	Stage       JobStage
	Attempts    map[int]int // Attempt count per stage
	Transitions []StageTransition
	ErrorDetail string // Populated when Stage == StageFailed
	Cancelled   bool
	StartedAt   time.Time
	CompletedAt time.Time
	UpdatedAt   time.Time
}

// RecordTransition moves the job to the given stage and stamps the change.
func (j *ProcessingJob) RecordTransition(stage JobStage, at time.Time) {
	j.Stage = stage
	j.Transitions = append(j.Transitions, StageTransition{Stage: stage, EnteredAt: at})
	j.UpdatedAt = at
	if stage.Terminal() {
		j.CompletedAt = at
	}
}
