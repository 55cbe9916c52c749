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

package embedding

// Result is the outcome of embedding one input text. Results are returned in
// input order; a batch can succeed partially, so each item carries its own
// error alongside provenance for the provider that served it.
type Result struct {
	// Index is the position of the source text in the submitted batch.
	Index int

	// Vector is the generated embedding. Nil when Err is set.
	Vector []float32

	// Provider names the provider that produced the vector.
	Provider string

	// Model is the embedding model identifier used.
	Model string

	// Cached reports whether the vector was served from cache.
	Cached bool

	// Err holds the per-item failure, if any.
	Err error
}
