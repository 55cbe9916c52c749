// Package badger provides BadgerDB-backed implementations of the storage
// interfaces: document/chunk store, cosine-similarity vector index, BM25
// keyword index, and processing-job store. All implementations share one
// Backend and keep every key namespace-prefixed.
package badger
