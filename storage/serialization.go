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

package storage

import (
	"github.com/Uththunga/Ethos-Prompt-sub003/core"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalDocument serializes a Document to bytes.
func MarshalDocument(doc *core.Document) []byte {
	buf := make([]byte, core.DocumentMUS.Size(*doc))
	core.DocumentMUS.Marshal(*doc, buf)
	return buf
}

// UnmarshalDocument deserializes a Document from bytes.
func UnmarshalDocument(data []byte) (*core.Document, error) {
	doc, _, err := core.DocumentMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// MarshalChunk serializes a Chunk to bytes.
func MarshalChunk(chunk *core.Chunk) []byte {
	buf := make([]byte, core.ChunkMUS.Size(*chunk))
	core.ChunkMUS.Marshal(*chunk, buf)
	return buf
}

// UnmarshalChunk deserializes a Chunk from bytes.
func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	chunk, _, err := core.ChunkMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &chunk, nil
}

// MarshalEmbeddingRecord serializes an EmbeddingRecord to bytes.
func MarshalEmbeddingRecord(record *core.EmbeddingRecord) []byte {
	buf := make([]byte, core.EmbeddingRecordMUS.Size(*record))
	core.EmbeddingRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalEmbeddingRecord deserializes an EmbeddingRecord from bytes.
func UnmarshalEmbeddingRecord(data []byte) (*core.EmbeddingRecord, error) {
	record, _, err := core.EmbeddingRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// MarshalJob serializes a ProcessingJob to bytes.
func MarshalJob(job *core.ProcessingJob) []byte {
	buf := make([]byte, core.ProcessingJobMUS.Size(*job))
	core.ProcessingJobMUS.Marshal(*job, buf)
	return buf
}

// UnmarshalJob deserializes a ProcessingJob from bytes.
func UnmarshalJob(data []byte) (*core.ProcessingJob, error) {
	job, _, err := core.ProcessingJobMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// Posting is one inverted-index entry: a term's frequency within a chunk.
type Posting struct {
	ChunkId    core.ID
	DocumentId core.ID
	TermFreq   int
}

// MarshalPosting serializes a Posting to bytes.
func MarshalPosting(p *Posting) []byte {
	size := core.IDMUS.Size(p.ChunkId) + core.IDMUS.Size(p.DocumentId) + varint.Int.Size(p.TermFreq)
	buf := make([]byte, size)
	n := core.IDMUS.Marshal(p.ChunkId, buf)
	n += core.IDMUS.Marshal(p.DocumentId, buf[n:])
	varint.Int.Marshal(p.TermFreq, buf[n:])
	return buf
}

// UnmarshalPosting deserializes a Posting from bytes.
func UnmarshalPosting(data []byte) (*Posting, error) {
	var (
		p   Posting
		n   int
		err error
	)
	p.ChunkId, n, err = core.IDMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	var n1 int
	p.DocumentId, n1, err = core.IDMUS.Unmarshal(data[n:])
	n += n1
	if err != nil {
		return nil, err
	}
	p.TermFreq, _, err = varint.Int.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ChunkTerms records the term frequencies and length of one indexed chunk.
// Stored so postings can be removed without re-tokenizing the chunk.
type ChunkTerms struct {
	ChunkId    core.ID
	DocumentId core.ID
	Length     int
	Terms      map[string]int
}

// MarshalChunkTerms serializes ChunkTerms to bytes.
func MarshalChunkTerms(ct *ChunkTerms) []byte {
	size := core.IDMUS.Size(ct.ChunkId) + core.IDMUS.Size(ct.DocumentId) + varint.Int.Size(ct.Length)
	size += varint.Int.Size(len(ct.Terms))
	for term, freq := range ct.Terms {
		size += ord.String.Size(term) + varint.Int.Size(freq)
	}
	buf := make([]byte, size)
	n := core.IDMUS.Marshal(ct.ChunkId, buf)
	n += core.IDMUS.Marshal(ct.DocumentId, buf[n:])
	n += varint.Int.Marshal(ct.Length, buf[n:])
	n += varint.Int.Marshal(len(ct.Terms), buf[n:])
	for term, freq := range ct.Terms {
		n += ord.String.Marshal(term, buf[n:])
		n += varint.Int.Marshal(freq, buf[n:])
	}
	return buf
}

// UnmarshalChunkTerms deserializes ChunkTerms from bytes.
func UnmarshalChunkTerms(data []byte) (*ChunkTerms, error) {
	var (
		ct  ChunkTerms
		n   int
		n1  int
		err error
	)
	ct.ChunkId, n, err = core.IDMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	ct.DocumentId, n1, err = core.IDMUS.Unmarshal(data[n:])
	n += n1
	if err != nil {
		return nil, err
	}
	ct.Length, n1, err = varint.Int.Unmarshal(data[n:])
	n += n1
	if err != nil {
		return nil, err
	}
	var count int
	count, n1, err = varint.Int.Unmarshal(data[n:])
	n += n1
	if err != nil {
		return nil, err
	}
	ct.Terms = make(map[string]int, count)
	for i := 0; i < count; i++ {
		var term string
		term, n1, err = ord.String.Unmarshal(data[n:])
		n += n1
		if err != nil {
			return nil, err
		}
		var freq int
		freq, n1, err = varint.Int.Unmarshal(data[n:])
		n += n1
		if err != nil {
			return nil, err
		}
		ct.Terms[term] = freq
	}
	return &ct, nil
}

// NamespaceStats holds the aggregate statistics BM25 scoring needs.
type NamespaceStats struct {
	ChunkCount  int
	TotalTokens int
}

// MarshalNamespaceStats serializes NamespaceStats to bytes.
func MarshalNamespaceStats(stats *NamespaceStats) []byte {
	size := varint.Int.Size(stats.ChunkCount) + varint.Int.Size(stats.TotalTokens)
	buf := make([]byte, size)
	n := varint.Int.Marshal(stats.ChunkCount, buf)
	varint.Int.Marshal(stats.TotalTokens, buf[n:])
	return buf
}

// UnmarshalNamespaceStats deserializes NamespaceStats from bytes.
func UnmarshalNamespaceStats(data []byte) (*NamespaceStats, error) {
	var (
		stats NamespaceStats
		n     int
		err   error
	)
	stats.ChunkCount, n, err = varint.Int.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	stats.TotalTokens, _, err = varint.Int.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
