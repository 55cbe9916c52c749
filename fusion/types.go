package fusion

import "github.com/Uththunga/Ethos-Prompt-sub003/core"

// Ranked is one entry of a ranked result list. Lists are ordered best-first;
// an entry's rank is its position in the list, starting at 1.
type Ranked struct {
	ChunkId    core.ID
	DocumentId core.ID
	Ordinal    int
	Score      float64 // Raw engine score: cosine similarity or BM25
}

// Fused is a chunk reference with its combined score and per-source raw
// scores preserved for downstream assembly and provenance.
type Fused struct {
	ChunkId       core.ID
	DocumentId    core.ID
	Ordinal       int
	Score         float64
	SemanticScore float64 // Raw cosine similarity, 0 if absent from the semantic list
	KeywordScore  float64 // Raw BM25 score, 0 if absent from the keyword list
	Sources       []string
}

// Weights splits fused scoring between the two engines. They are normalized
// before use, so only the ratio matters.
type Weights struct {
	Semantic float64
	Keyword  float64
}

// DefaultWeights is the weighted-sum default split.
var DefaultWeights = Weights{Semantic: 0.7, Keyword: 0.3}

// normalized returns the weights scaled to sum to 1, falling back to the
// defaults when both are zero.
func (w Weights) normalized() Weights {
	total := w.Semantic + w.Keyword
	if total <= 0 {
		return DefaultWeights
	}
	return Weights{Semantic: w.Semantic / total, Keyword: w.Keyword / total}
}

// Input carries both result lists plus the query signals some algorithms use.
type Input struct {
	// Semantic is the vector-index result list, best-first.
	Semantic []Ranked

	// Keyword is the BM25 result list, best-first.
	Keyword []Ranked

	// Weights applies to AlgorithmWeightedSum. Zero value means defaults.
	Weights Weights

	// Intent is the query's classified intent, used by AlgorithmAdaptive.
	Intent core.IntentLabel

	// QueryTerms is the query's word count, used by AlgorithmAdaptive.
	QueryTerms int
}

const (
	sourceSemantic = "semantic"
	sourceKeyword  = "keyword"
)
