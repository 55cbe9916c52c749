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

// Stores bundles the four store implementations sharing one backend.
type Stores struct {
	Backend   *Backend
	Documents *DocumentStore
	Vectors   *VectorIndex
	Keywords  *KeywordIndex
	Jobs      *JobStore
}

// Close closes the shared backend.
func (s *Stores) Close() error {
	return s.Backend.Close()
}

// NewMemoryStores creates in-memory stores for testing.
// Caller must close the returned Stores when done.
func NewMemoryStores() (*Stores, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, err
	}
	return &Stores{
		Backend:   backend,
		Documents: NewDocumentStore(backend),
		Vectors:   NewVectorIndex(backend),
		Keywords:  NewKeywordIndex(backend),
		Jobs:      NewJobStore(backend),
	}, nil
}

// OpenStores opens persistent stores rooted at filePath.
// Caller must close the returned Stores when done.
func OpenStores(filePath string) (*Stores, error) {
	backend, err := OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}
	return &Stores{
		Backend:   backend,
		Documents: NewDocumentStore(backend),
		Vectors:   NewVectorIndex(backend),
		Keywords:  NewKeywordIndex(backend),
		Jobs:      NewJobStore(backend),
	}, nil
}
