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

package badger

import (
	"context"
	"time"

	"github.com/Uththunga/Ethos-Prompt-sub003/core"
	"github.com/Uththunga/Ethos-Prompt-sub003/storage"
	"github.com/dgraph-io/badger/v4"
)

// DocumentStore implements storage.DocumentStore for BadgerDB.
type DocumentStore struct {
	backend *Backend
}

var _ storage.DocumentStore = (*DocumentStore)(nil)

// NewDocumentStore creates a new DocumentStore.
func NewDocumentStore(backend *Backend) *DocumentStore {
	return &DocumentStore{backend: backend}
}

// Close is a no-op; the shared backend owns the database handle.
func (s *DocumentStore) Close() error {
	return nil
}

// PutDocument inserts or updates a document record.
func (s *DocumentStore) PutDocument(ctx context.Context, doc *core.Document) error {
	if err := core.ValidateDocument(doc); err != nil {
		return err
	}

	now := time.Now().UTC()
	if doc.InsertedAt.IsZero() {
		doc.InsertedAt = now
	}
	doc.UpdatedAt = now

	return s.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(doc.Namespace, doc.Id)
		if err := tx.Set(key, storage.MarshalDocument(doc)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(ctx context.Context, namespace string, id core.ID) (*core.Document, error) {
	if namespace == "" {
		return nil, storage.ErrEmptyNamespace
	}

	var doc *core.Document
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		data, err := readValue(tx, makeDocumentKey(namespace, id))
		if err != nil {
			return err
		}
		if data == nil {
			return storage.ErrNotFound
		}
		doc, err = storage.UnmarshalDocument(data)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ListDocuments retrieves all documents in a namespace.
func (s *DocumentStore) ListDocuments(ctx context.Context, namespace string) ([]*core.Document, error) {
	if namespace == "" {
		return nil, storage.ErrEmptyNamespace
	}

	var docs []*core.Document
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeDocumentScanPrefix(namespace)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			data, err := iter.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			doc, err := storage.UnmarshalDocument(data)
			if err != nil {
				return err
			}
			docs = append(docs, doc)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// ReplaceChunks atomically swaps a document's chunk set. Old chunks and the
// chunk-by-document index entries are removed and the new set written within
// a single transaction.
func (s *DocumentStore) ReplaceChunks(ctx context.Context, namespace string, documentID core.ID, chunks []*core.Chunk) error {
	if namespace == "" {
		return storage.ErrEmptyNamespace
	}
	for _, chunk := range chunks {
		if err := core.ValidateChunk(chunk); err != nil {
			return err
		}
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := s.deleteDocumentChunks(tx, namespace, documentID); err != nil {
			return err
		}

		now := time.Now().UTC()
		for _, chunk := range chunks {
			if chunk.InsertedAt.IsZero() {
				chunk.InsertedAt = now
			}
			if err := tx.Set(makeChunkKey(namespace, chunk.Id), storage.MarshalChunk(chunk)); err != nil {
				return err
			}
			docKey := makeChunkDocKey(namespace, documentID, chunk.Ordinal)
			if err := tx.Set(docKey, storage.MarshalID(chunk.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetChunk retrieves a single chunk by ID.
func (s *DocumentStore) GetChunk(ctx context.Context, namespace string, id core.ID) (*core.Chunk, error) {
	if namespace == "" {
		return nil, storage.ErrEmptyNamespace
	}

	var chunk *core.Chunk
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		data, err := readValue(tx, makeChunkKey(namespace, id))
		if err != nil {
			return err
		}
		if data == nil {
			return storage.ErrNotFound
		}
		chunk, err = storage.UnmarshalChunk(data)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return chunk, nil
}

// GetChunks retrieves multiple chunks by their IDs.
// Missing chunks are skipped without error.
func (s *DocumentStore) GetChunks(ctx context.Context, namespace string, ids ...core.ID) ([]*core.Chunk, error) {
	if namespace == "" {
		return nil, storage.ErrEmptyNamespace
	}

	chunks := make([]*core.Chunk, 0, len(ids))
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			data, err := readValue(tx, makeChunkKey(namespace, id))
			if err != nil {
				return err
			}
			if data == nil {
				continue
			}
			chunk, err := storage.UnmarshalChunk(data)
			if err != nil {
				return err
			}
			chunks = append(chunks, chunk)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// GetChunksByDocument retrieves a document's chunks ordered by ordinal.
// The chunk-by-document index keys sort by ordinal, so iteration order is
// document order.
func (s *DocumentStore) GetChunksByDocument(ctx context.Context, namespace string, documentID core.ID) ([]*core.Chunk, error) {
	if namespace == "" {
		return nil, storage.ErrEmptyNamespace
	}

	var chunks []*core.Chunk
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeChunkDocScanPrefix(namespace, documentID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			idData, err := iter.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			id, err := storage.UnmarshalID(idData)
			if err != nil {
				return err
			}
			data, err := readValue(tx, makeChunkKey(namespace, id))
			if err != nil {
				return err
			}
			if data == nil {
				continue
			}
			chunk, err := storage.UnmarshalChunk(data)
			if err != nil {
				return err
			}
			chunks = append(chunks, chunk)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// DeleteDocument removes a document and all of its chunks.
func (s *DocumentStore) DeleteDocument(ctx context.Context, namespace string, documentID core.ID) error {
	if namespace == "" {
		return storage.ErrEmptyNamespace
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := s.deleteDocumentChunks(tx, namespace, documentID); err != nil {
			return err
		}
		if err := tx.Delete(makeDocumentKey(namespace, documentID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// deleteDocumentChunks removes a document's chunk records and index entries
// within an open transaction.
func (s *DocumentStore) deleteDocumentChunks(tx *badger.Txn, namespace string, documentID core.ID) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = makeChunkDocScanPrefix(namespace, documentID)
	iter := tx.NewIterator(opts)

	type pending struct {
		indexKey []byte
		chunkKey []byte
	}
	var deletions []pending
	for iter.Rewind(); iter.Valid(); iter.Next() {
		item := iter.Item()
		idData, err := item.ValueCopy(nil)
		if err != nil {
			iter.Close()
			return err
		}
		id, err := storage.UnmarshalID(idData)
		if err != nil {
			iter.Close()
			return err
		}
		deletions = append(deletions, pending{
			indexKey: item.KeyCopy(nil),
			chunkKey: makeChunkKey(namespace, id),
		})
	}
	iter.Close()

	for _, d := range deletions {
		if err := tx.Delete(d.indexKey); err != nil {
			return err
		}
		if err := tx.Delete(d.chunkKey); err != nil {
			return err
		}
	}
	return nil
}
