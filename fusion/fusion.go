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

package fusion

import (
	"fmt"
	"sort"

	"github.com/Uththunga/Ethos-Prompt-sub003/core"
)

// Algorithm selects how the two ranked lists are combined.
type Algorithm int

const (
	// AlgorithmRRF sums reciprocal ranks across the lists.
	AlgorithmRRF Algorithm = iota + 1
	// AlgorithmWeightedSum linearly combines min-max-normalized scores.
	AlgorithmWeightedSum
	// AlgorithmBorda votes by rank position, robust to score-scale
	// differences between the two engines.
	AlgorithmBorda
	// AlgorithmAdaptive derives weighted-sum weights from query
	// characteristics, then scores like AlgorithmWeightedSum.
	AlgorithmAdaptive
)

// RRFConstant is the k in 1/(k + rank).
const RRFConstant = 60

var algorithmNames = map[Algorithm]string{
	AlgorithmRRF:         "rrf",
	AlgorithmWeightedSum: "weighted",
	AlgorithmBorda:       "borda",
	AlgorithmAdaptive:    "adaptive",
}

func (a Algorithm) String() string {
	if name, ok := algorithmNames[a]; ok {
		return name
	}
	return "unknown"
}

// ParseAlgorithm converts a name to an Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	for a, n := range algorithmNames {
		if n == name {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: %w: %q", core.ErrConfiguration, ErrUnknownAlgorithm, name)
}

// scoreFunc computes fused scores for the union of both lists. Closed
// dispatch table; adding an algorithm means adding a row here.
type scoreFunc func(in Input, merged []*Fused, ranks map[core.ID]entryRanks)

var algorithmTable = map[Algorithm]scoreFunc{
	AlgorithmRRF:         scoreRRF,
	AlgorithmWeightedSum: scoreWeightedSum,
	AlgorithmBorda:       scoreBorda,
	AlgorithmAdaptive:    scoreAdaptive,
}

// entryRanks holds a chunk's 1-based rank in each list, 0 when absent.
type entryRanks struct {
	semantic int
	keyword  int
}

// Fuse combines the two ranked lists into one, best-first. Fusion is a
// union: a chunk appearing in only one list is still eligible, scored with
// the algorithm's absence convention. Ties break on raw semantic score, then
// lower ordinal, then chunk id, keeping output deterministic.
func Fuse(algorithm Algorithm, in Input) ([]Fused, error) {
	score, ok := algorithmTable[algorithm]
	if !ok {
		return nil, fmt.Errorf("%w: %w: %d", core.ErrConfiguration, ErrUnknownAlgorithm, algorithm)
	}

	merged, ranks := mergeLists(in)
	score(in, merged, ranks)

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.SemanticScore != b.SemanticScore {
			return a.SemanticScore > b.SemanticScore
		}
		if a.Ordinal != b.Ordinal {
			return a.Ordinal < b.Ordinal
		}
		return a.ChunkId < b.ChunkId
	})

	out := make([]Fused, len(merged))
	for i, f := range merged {
		out[i] = *f
	}
	return out, nil
}

// mergeLists unions both lists into unscored Fused entries and records each
// chunk's rank per list.
func mergeLists(in Input) ([]*Fused, map[core.ID]entryRanks) {
	byId := make(map[core.ID]*Fused)
	ranks := make(map[core.ID]entryRanks)
	var merged []*Fused

	for i, r := range in.Semantic {
		f := &Fused{
			ChunkId:       r.ChunkId,
			DocumentId:    r.DocumentId,
			Ordinal:       r.Ordinal,
			SemanticScore: r.Score,
			Sources:       []string{sourceSemantic},
		}
		byId[r.ChunkId] = f
		ranks[r.ChunkId] = entryRanks{semantic: i + 1}
		merged = append(merged, f)
	}

	for i, r := range in.Keyword {
		if f, ok := byId[r.ChunkId]; ok {
			f.KeywordScore = r.Score
			f.Sources = append(f.Sources, sourceKeyword)
			er := ranks[r.ChunkId]
			er.keyword = i + 1
			ranks[r.ChunkId] = er
			continue
		}
		f := &Fused{
			ChunkId:      r.ChunkId,
			DocumentId:   r.DocumentId,
			Ordinal:      r.Ordinal,
			KeywordScore: r.Score,
			Sources:      []string{sourceKeyword},
		}
		byId[r.ChunkId] = f
		ranks[r.ChunkId] = entryRanks{keyword: i + 1}
		merged = append(merged, f)
	}

	return merged, ranks
}

// scoreRRF sums reciprocal ranks. A chunk missing from a list is treated as
// ranked just beyond that list's last observed rank.
func scoreRRF(in Input, merged []*Fused, ranks map[core.ID]entryRanks) {
	semAbsent := len(in.Semantic) + 1
	kwAbsent := len(in.Keyword) + 1

	for _, f := range merged {
		er := ranks[f.ChunkId]
		semRank := er.semantic
		if semRank == 0 {
			semRank = semAbsent
		}
		kwRank := er.keyword
		if kwRank == 0 {
			kwRank = kwAbsent
		}
		f.Score = 1.0/float64(RRFConstant+semRank) + 1.0/float64(RRFConstant+kwRank)
	}
}

// scoreWeightedSum combines min-max-normalized raw scores. Absence from a
// list contributes zero for that side.
func scoreWeightedSum(in Input, merged []*Fused, ranks map[core.ID]entryRanks) {
	weights := in.Weights.normalized()
	scoreWeighted(in, merged, ranks, weights)
}

func scoreWeighted(in Input, merged []*Fused, ranks map[core.ID]entryRanks, weights Weights) {
	normSem := normalizer(in.Semantic)
	normKw := normalizer(in.Keyword)

	for _, f := range merged {
		er := ranks[f.ChunkId]
		var sem, kw float64
		if er.semantic > 0 {
			sem = normSem(f.SemanticScore)
		}
		if er.keyword > 0 {
			kw = normKw(f.KeywordScore)
		}
		f.Score = weights.Semantic*sem + weights.Keyword*kw
	}
}

// normalizer returns a min-max normalization function for a list's scores.
// A list whose scores are all equal normalizes to 1.
func normalizer(list []Ranked) func(float64) float64 {
	if len(list) == 0 {
		return func(float64) float64 { return 0 }
	}
	lo, hi := list[0].Score, list[0].Score
	for _, r := range list[1:] {
		if r.Score < lo {
			lo = r.Score
		}
		if r.Score > hi {
			hi = r.Score
		}
	}
	if hi == lo {
		return func(float64) float64 { return 1 }
	}
	span := hi - lo
	return func(s float64) float64 { return (s - lo) / span }
}

// scoreBorda awards points by rank position: the best entry of a list of n
// gets n points, the last gets 1, absentees get 0.
func scoreBorda(in Input, merged []*Fused, ranks map[core.ID]entryRanks) {
	for _, f := range merged {
		er := ranks[f.ChunkId]
		var points float64
		if er.semantic > 0 {
			points += float64(len(in.Semantic) - er.semantic + 1)
		}
		if er.keyword > 0 {
			points += float64(len(in.Keyword) - er.keyword + 1)
		}
		f.Score = points
	}
}
