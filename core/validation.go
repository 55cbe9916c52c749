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

package core

import "fmt"

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Namespace must not be empty
//
// NOT validated:
//   - Status (set by the pipeline)
//   - ID (0 is valid before content hashing assigns one)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Namespace == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyNamespace)
	}

	return nil
}

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Namespace must not be empty
//   - Text must not be empty
//   - Ordinal must not be negative
//
// NOT validated (populated during processing):
//   - TokenCount (computed by the chunker)
//   - Metadata (strategy dependent)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Namespace == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyNamespace)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyText)
	}

	if chunk.Ordinal < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrNegativeOrdinal)
	}

	return nil
}

// ValidateEmbeddingRecord validates an EmbeddingRecord according to domain rules.
func ValidateEmbeddingRecord(record *EmbeddingRecord) error {
	if record == nil {
		return fmt.Errorf("%w: embedding record is nil", ErrInvalidChunk)
	}

	if len(record.Vector) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyVector)
	}

	return nil
}

// ValidateJob validates a ProcessingJob according to domain rules.
func ValidateJob(job *ProcessingJob) error {
	if job == nil {
		return fmt.Errorf("%w: job is nil", ErrInvalidJob)
	}

	if job.Namespace == "" {
		return fmt.Errorf("%w: %w", ErrInvalidJob, ErrEmptyNamespace)
	}

	if err := ValidateStage(job.Stage); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidJob, err)
	}

	return nil
}

// ValidateStage validates that a JobStage has a valid value.
func ValidateStage(stage JobStage) error {
	if stage < StagePending || stage > StageFailed {
		return fmt.Errorf("%w: value %d", ErrInvalidStage, stage)
	}
	return nil
}
