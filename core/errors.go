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

import "errors"

// Engine error taxonomy. Callers distinguish failure classes with errors.Is.
var (
	// ErrConfiguration indicates an invalid configuration (unknown strategy,
	// mismatched vector dimensionality). Never retried.
	ErrConfiguration = errors.New("configuration error")

	// ErrProvider indicates every provider in the embedding fallback chain failed.
	ErrProvider = errors.New("embedding provider error")

	// ErrPartialBatch indicates some items in an embedding batch failed.
	// Successful items are still committed.
	ErrPartialBatch = errors.New("partial batch failure")

	// ErrIndexTimeout indicates an index query timed out. A single timed-out
	// index degrades fusion to the surviving source rather than failing the query.
	ErrIndexTimeout = errors.New("index query timeout")

	// ErrPipelineStage indicates a pipeline stage exhausted its retries.
	ErrPipelineStage = errors.New("pipeline stage error")
)

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrInvalidJob indicates a ProcessingJob failed validation.
	ErrInvalidJob = errors.New("invalid processing job")

	// ErrEmptyNamespace indicates the Namespace field is empty.
	// Namespace is a mandatory filter on every read and write.
	ErrEmptyNamespace = errors.New("namespace cannot be empty")

	// ErrEmptyText indicates the Text field is empty.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrNegativeOrdinal indicates a chunk ordinal below zero.
	ErrNegativeOrdinal = errors.New("ordinal cannot be negative")

	// ErrEmptyVector indicates an embedding with no components.
	ErrEmptyVector = errors.New("vector cannot be empty")

	// ErrInvalidStage indicates an unrecognized JobStage value.
	ErrInvalidStage = errors.New("invalid job stage")
)
