package badger

import (
	"context"
	"sort"
	"time"

	"github.com/Uththunga/Ethos-Prompt-sub003/core"
	"github.com/Uththunga/Ethos-Prompt-sub003/storage"
	"github.com/dgraph-io/badger/v4"
)

// JobStore implements storage.JobStore for BadgerDB.
type JobStore struct {
	backend *Backend
}

var _ storage.JobStore = (*JobStore)(nil)

// NewJobStore creates a new JobStore.
func NewJobStore(backend *Backend) *JobStore {
	return &JobStore{backend: backend}
}

// Close is a no-op; the shared backend owns the database handle.
func (s *JobStore) Close() error {
	return nil
}

// PutJob inserts or updates a processing job.
func (s *JobStore) PutJob(ctx context.Context, job *core.ProcessingJob) error {
	if err := core.ValidateJob(job); err != nil {
		return err
	}

	job.UpdatedAt = time.Now().UTC()
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeJobKey(job.Id), storage.MarshalJob(job)); err != nil {
			return err
		}
		docKey := makeJobDocKey(job.Namespace, job.DocumentId, job.Id)
		if err := tx.Set(docKey, []byte(job.Id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetJob retrieves a job by its ID.
func (s *JobStore) GetJob(ctx context.Context, jobID string) (*core.ProcessingJob, error) {
	var job *core.ProcessingJob
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		data, err := readValue(tx, makeJobKey(jobID))
		if err != nil {
			return err
		}
		if data == nil {
			return storage.ErrNotFound
		}
		job, err = storage.UnmarshalJob(data)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return job, nil
}

// GetJobsByDocument retrieves all jobs for a document, newest first.
func (s *JobStore) GetJobsByDocument(ctx context.Context, namespace string, documentID core.ID) ([]*core.ProcessingJob, error) {
	if namespace == "" {
		return nil, storage.ErrEmptyNamespace
	}

	var jobs []*core.ProcessingJob
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeJobDocScanPrefix(namespace, documentID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			jobID, err := iter.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			data, err := readValue(tx, makeJobKey(string(jobID)))
			if err != nil {
				return err
			}
			if data == nil {
				continue
			}
			job, err := storage.UnmarshalJob(data)
			if err != nil {
				return err
			}
			jobs = append(jobs, job)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].StartedAt.After(jobs[j].StartedAt)
	})
	return jobs, nil
}

// DeleteJob removes a job record and its document index entry.
func (s *JobStore) DeleteJob(ctx context.Context, jobID string) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		data, err := readValue(tx, makeJobKey(jobID))
		if err != nil {
			return err
		}
		if data == nil {
			return storage.ErrNotFound
		}
		job, err := storage.UnmarshalJob(data)
		if err != nil {
			return err
		}
		if err := tx.Delete(makeJobDocKey(job.Namespace, job.DocumentId, job.Id)); err != nil {
			return err
		}
		if err := tx.Delete(makeJobKey(jobID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
