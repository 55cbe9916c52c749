package badger

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/Uththunga/Ethos-Prompt-sub003/core"
	"github.com/Uththunga/Ethos-Prompt-sub003/storage"
	"github.com/dgraph-io/badger/v4"
	"github.com/mus-format/mus-go/varint"
)

// VectorIndex implements storage.VectorIndex for BadgerDB using cosine
// similarity over a full namespace scan. Namespaces are sized for per-tenant
// document sets, so a scan stays tractable.
type VectorIndex struct {
	backend *Backend
}

var _ storage.VectorIndex = (*VectorIndex)(nil)

// NewVectorIndex creates a new VectorIndex.
func NewVectorIndex(backend *Backend) *VectorIndex {
	return &VectorIndex{backend: backend}
}

// Close is a no-op; the shared backend owns the database handle.
func (v *VectorIndex) Close() error {
	return nil
}

// Upsert inserts or replaces embedding records by chunk ID. The first vector
// written to a namespace establishes its dimensionality; mismatched upserts
// fail fast with core.ErrConfiguration before any record is written.
func (v *VectorIndex) Upsert(ctx context.Context, namespace string, records ...*core.EmbeddingRecord) error {
	if namespace == "" {
		return storage.ErrEmptyNamespace
	}
	if len(records) == 0 {
		return nil
	}
	for _, record := range records {
		if err := core.ValidateEmbeddingRecord(record); err != nil {
			return err
		}
	}

	return v.backend.WithTx(func(tx *badger.Txn) error {
		dim, err := readDimension(tx, namespace)
		if err != nil {
			return err
		}
		if dim == 0 {
			dim = len(records[0].Vector)
			buf := make([]byte, varint.Int.Size(dim))
			varint.Int.Marshal(dim, buf)
			if err := tx.Set(makeVectorDimKey(namespace), buf); err != nil {
				return err
			}
		}
		for _, record := range records {
			if len(record.Vector) != dim {
				return fmt.Errorf("%w: %w: namespace %q holds %d-dimensional vectors, got %d",
					core.ErrConfiguration, storage.ErrDimensionMismatch, namespace, dim, len(record.Vector))
			}
		}

		now := time.Now().UTC()
		for _, record := range records {
			if record.GeneratedAt.IsZero() {
				record.GeneratedAt = now
			}
			key := makeVectorKey(namespace, record.ChunkId)
			if err := tx.Set(key, storage.MarshalEmbeddingRecord(record)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Search returns up to topK entries ranked by cosine similarity, most similar
// first. The document filter is applied before scoring so topK never
// under-fills due to filtering.
func (v *VectorIndex) Search(ctx context.Context, namespace string, queryVector []float32, topK int, filter storage.Filter) ([]storage.VectorMatch, error) {
	if namespace == "" {
		return nil, storage.ErrEmptyNamespace
	}
	if topK <= 0 || len(queryVector) == 0 {
		return []storage.VectorMatch{}, nil
	}

	var matches []storage.VectorMatch
	err := v.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeVectorScanPrefix(namespace)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		scanned := 0
		for iter.Rewind(); iter.Valid(); iter.Next() {
			scanned++
			if scanned%256 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}

			data, err := iter.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			record, err := storage.UnmarshalEmbeddingRecord(data)
			if err != nil {
				return err
			}
			if !filter.Match(record.DocumentId) {
				continue
			}
			if len(record.Vector) != len(queryVector) {
				continue
			}
			matches = append(matches, storage.VectorMatch{
				ChunkId:    record.ChunkId,
				DocumentId: record.DocumentId,
				Similarity: CosineSimilarity(queryVector, record.Vector),
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].ChunkId < matches[j].ChunkId
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Delete removes embedding records by chunk ID. Missing IDs are ignored.
func (v *VectorIndex) Delete(ctx context.Context, namespace string, chunkIDs ...core.ID) error {
	if namespace == "" {
		return storage.ErrEmptyNamespace
	}

	return v.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range chunkIDs {
			if err := tx.Delete(makeVectorKey(namespace, id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Dimension returns the namespace's established vector dimensionality,
// or 0 if the namespace holds no vectors yet.
func (v *VectorIndex) Dimension(ctx context.Context, namespace string) (int, error) {
	if namespace == "" {
		return 0, storage.ErrEmptyNamespace
	}

	var dim int
	err := v.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		dim, err = readDimension(tx, namespace)
		return err
	}, false)
	return dim, err
}

func readDimension(tx *badger.Txn, namespace string) (int, error) {
	data, err := readValue(tx, makeVectorDimKey(namespace))
	if err != nil || data == nil {
		return 0, err
	}
	dim, _, err := varint.Int.Unmarshal(data)
	return dim, err
}

// CosineSimilarity computes the cosine of the angle between two vectors.
// Returns 0 for zero vectors.
func CosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
