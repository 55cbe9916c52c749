package badger

import (
	"context"
	"math"
	"sort"

	"github.com/Uththunga/Ethos-Prompt-sub003/core"
	"github.com/Uththunga/Ethos-Prompt-sub003/storage"
	"github.com/dgraph-io/badger/v4"
)

const (
	// DefaultK1 is the BM25 term-frequency saturation parameter.
	DefaultK1 = 1.5
	// DefaultB is the BM25 length-normalization parameter.
	DefaultB = 0.75
)

// KeywordIndex implements storage.KeywordIndex for BadgerDB. Postings are
// stored one key per (namespace, term, chunk), so a query touches only the
// posting lists of its own terms.
type KeywordIndex struct {
	backend *Backend
	k1      float64
	b       float64
}

var _ storage.KeywordIndex = (*KeywordIndex)(nil)

// KeywordOption configures a KeywordIndex.
type KeywordOption func(*KeywordIndex)

// WithBM25Params overrides the BM25 k1 and b parameters.
func WithBM25Params(k1, b float64) KeywordOption {
	return func(k *KeywordIndex) {
		k.k1 = k1
		k.b = b
	}
}

// NewKeywordIndex creates a new KeywordIndex with default BM25 parameters.
func NewKeywordIndex(backend *Backend, opts ...KeywordOption) *KeywordIndex {
	k := &KeywordIndex{
		backend: backend,
		k1:      DefaultK1,
		b:       DefaultB,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Close is a no-op; the shared backend owns the database handle.
func (k *KeywordIndex) Close() error {
	return nil
}

// Index records a chunk's tokens in the namespace's inverted index.
// Re-indexing the same chunk ID replaces its previous postings.
func (k *KeywordIndex) Index(ctx context.Context, namespace string, chunkID, documentID core.ID, tokens []string) error {
	if namespace == "" {
		return storage.ErrEmptyNamespace
	}

	freqs := make(map[string]int, len(tokens))
	for _, token := range tokens {
		freqs[token]++
	}

	return k.backend.WithTx(func(tx *badger.Txn) error {
		stats, err := readStats(tx, namespace)
		if err != nil {
			return err
		}

		if err := k.removeChunk(tx, namespace, chunkID, stats); err != nil {
			return err
		}

		for term, freq := range freqs {
			posting := &storage.Posting{ChunkId: chunkID, DocumentId: documentID, TermFreq: freq}
			if err := tx.Set(makePostingKey(namespace, term, chunkID), storage.MarshalPosting(posting)); err != nil {
				return err
			}
		}

		terms := &storage.ChunkTerms{
			ChunkId:    chunkID,
			DocumentId: documentID,
			Length:     len(tokens),
			Terms:      freqs,
		}
		if err := tx.Set(makeChunkTermsKey(namespace, chunkID), storage.MarshalChunkTerms(terms)); err != nil {
			return err
		}

		stats.ChunkCount++
		stats.TotalTokens += len(tokens)
		if err := tx.Set(makeStatsKey(namespace), storage.MarshalNamespaceStats(stats)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Remove deletes chunks' postings from the namespace.
// Removing an unindexed chunk is a no-op.
func (k *KeywordIndex) Remove(ctx context.Context, namespace string, chunkIDs ...core.ID) error {
	if namespace == "" {
		return storage.ErrEmptyNamespace
	}

	return k.backend.WithTx(func(tx *badger.Txn) error {
		stats, err := readStats(tx, namespace)
		if err != nil {
			return err
		}
		for _, id := range chunkIDs {
			if err := k.removeChunk(tx, namespace, id, stats); err != nil {
				return err
			}
		}
		if err := tx.Set(makeStatsKey(namespace), storage.MarshalNamespaceStats(stats)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// removeChunk deletes one chunk's postings within an open transaction and
// adjusts stats in place.
func (k *KeywordIndex) removeChunk(tx *badger.Txn, namespace string, chunkID core.ID, stats *storage.NamespaceStats) error {
	termsKey := makeChunkTermsKey(namespace, chunkID)
	data, err := readValue(tx, termsKey)
	if err != nil {
		return err
	}
	if data == nil {
		return nil
	}
	terms, err := storage.UnmarshalChunkTerms(data)
	if err != nil {
		return err
	}

	for term := range terms.Terms {
		if err := tx.Delete(makePostingKey(namespace, term, chunkID)); err != nil {
			return err
		}
	}
	if err := tx.Delete(termsKey); err != nil {
		return err
	}

	stats.ChunkCount--
	stats.TotalTokens -= terms.Length
	return nil
}

// Search returns up to topK chunks ranked by BM25 score, best first.
func (k *KeywordIndex) Search(ctx context.Context, namespace string, queryTokens []string, topK int, filter storage.Filter) ([]storage.KeywordMatch, error) {
	if namespace == "" {
		return nil, storage.ErrEmptyNamespace
	}
	if topK <= 0 || len(queryTokens) == 0 {
		return []storage.KeywordMatch{}, nil
	}

	// Deduplicate query terms; BM25 sums per unique term.
	unique := make(map[string]bool, len(queryTokens))
	for _, token := range queryTokens {
		unique[token] = true
	}

	type hit struct {
		documentID core.ID
		score      float64
	}
	scores := make(map[core.ID]*hit)

	err := k.backend.WithTx(func(tx *badger.Txn) error {
		stats, err := readStats(tx, namespace)
		if err != nil {
			return err
		}
		if stats.ChunkCount == 0 {
			return nil
		}
		avgLen := float64(stats.TotalTokens) / float64(stats.ChunkCount)

		lengths := make(map[core.ID]int)
		chunkLength := func(id core.ID) (int, error) {
			if length, ok := lengths[id]; ok {
				return length, nil
			}
			data, err := readValue(tx, makeChunkTermsKey(namespace, id))
			if err != nil || data == nil {
				return 0, err
			}
			terms, err := storage.UnmarshalChunkTerms(data)
			if err != nil {
				return 0, err
			}
			lengths[id] = terms.Length
			return terms.Length, nil
		}

		for term := range unique {
			if err := ctx.Err(); err != nil {
				return err
			}

			postings, err := readPostings(tx, namespace, term)
			if err != nil {
				return err
			}
			df := len(postings)
			if df == 0 {
				continue
			}
			idf := math.Log(1 + (float64(stats.ChunkCount)-float64(df)+0.5)/(float64(df)+0.5))

			for _, posting := range postings {
				if !filter.Match(posting.DocumentId) {
					continue
				}
				length, err := chunkLength(posting.ChunkId)
				if err != nil {
					return err
				}
				tf := float64(posting.TermFreq)
				norm := k.k1 * (1 - k.b + k.b*float64(length)/avgLen)
				score := idf * tf * (k.k1 + 1) / (tf + norm)

				if h, ok := scores[posting.ChunkId]; ok {
					h.score += score
				} else {
					scores[posting.ChunkId] = &hit{documentID: posting.DocumentId, score: score}
				}
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	matches := make([]storage.KeywordMatch, 0, len(scores))
	for id, h := range scores {
		matches = append(matches, storage.KeywordMatch{
			ChunkId:    id,
			DocumentId: h.documentID,
			Score:      h.score,
		})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ChunkId < matches[j].ChunkId
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// readPostings collects all postings for one term.
func readPostings(tx *badger.Txn, namespace, term string) ([]*storage.Posting, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = makePostingScanPrefix(namespace, term)
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var postings []*storage.Posting
	for iter.Rewind(); iter.Valid(); iter.Next() {
		data, err := iter.Item().ValueCopy(nil)
		if err != nil {
			return nil, err
		}
		posting, err := storage.UnmarshalPosting(data)
		if err != nil {
			return nil, err
		}
		postings = append(postings, posting)
	}
	return postings, nil
}

// readStats reads a namespace's aggregate statistics, defaulting to zeros.
func readStats(tx *badger.Txn, namespace string) (*storage.NamespaceStats, error) {
	data, err := readValue(tx, makeStatsKey(namespace))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return &storage.NamespaceStats{}, nil
	}
	return storage.UnmarshalNamespaceStats(data)
}
