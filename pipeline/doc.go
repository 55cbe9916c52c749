// Package pipeline orchestrates document processing as an explicit state
// machine: pending, extracting, chunking, embedding, indexing, completed,
// with failed reachable from any non-terminal stage. Jobs run asynchronously
// on a bounded worker pool, every stage transition is persisted with a
// timestamp, and failing stages are retried with exponential backoff before
// the job fails.
package pipeline
