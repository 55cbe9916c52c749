// Package chunking splits extracted document text into retrieval units.
//
// Four strategies are available, dispatched through a closed strategy table:
//   - fixed: sliding word window with configurable overlap
//   - semantic: sentence/paragraph boundary splitting with a soft size cap
//   - hierarchical: heading-based sections with parent/child metadata
//   - sliding: fixed window with an explicit step for dense overlap regimes
//
// An auto mode inspects document structure and picks a strategy. Chunk
// ordinals reconstruct the original document order.
package chunking
