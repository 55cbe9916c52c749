// Package core defines the domain model for the document-retrieval engine:
// documents, chunks, embeddings, processing jobs, and retrieval results.
//
// Entities are owned by exactly one namespace. A namespace is the isolation
// boundary for indexes and caches; no cross-namespace reference is ever
// created.
package core
