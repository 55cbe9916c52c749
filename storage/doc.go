// Package storage defines the persistence interfaces for the retrieval
// engine: document and chunk storage, the vector index, the BM25 keyword
// index, and processing-job storage, plus the MUS serialization used by the
// BadgerDB implementations in the badger subpackage.
//
// Every operation takes a namespace; stores never return entities from a
// namespace other than the one requested.
package storage
