package fusion

import "github.com/Uththunga/Ethos-Prompt-sub003/core"

// Adaptive fusion interpolates between two fixed weight presets. Short,
// entity-heavy queries lean on exact keyword matching; long, descriptive
// queries lean on semantic similarity. The query's intent label nudges the
// blend either way.
var (
	keywordLeaning  = Weights{Semantic: 0.35, Keyword: 0.65}
	semanticLeaning = Weights{Semantic: 0.85, Keyword: 0.15}
)

const (
	shortQueryTerms = 3
	longQueryTerms  = 10
	intentNudge     = 0.25
)

// adaptiveWeights derives the blend factor from query length, nudges it by
// intent, and linearly interpolates between the presets.
func adaptiveWeights(intent core.IntentLabel, queryTerms int) Weights {
	var t float64
	switch {
	case queryTerms <= shortQueryTerms:
		t = 0
	case queryTerms >= longQueryTerms:
		t = 1
	default:
		t = float64(queryTerms-shortQueryTerms) / float64(longQueryTerms-shortQueryTerms)
	}

	switch intent {
	case core.IntentNavigational, core.IntentTransactional:
		t -= intentNudge
	case core.IntentSummarization, core.IntentComparative:
		t += intentNudge
	}
	t = max(0, min(1, t))

	return Weights{
		Semantic: keywordLeaning.Semantic + t*(semanticLeaning.Semantic-keywordLeaning.Semantic),
		Keyword:  keywordLeaning.Keyword + t*(semanticLeaning.Keyword-keywordLeaning.Keyword),
	}
}

func scoreAdaptive(in Input, merged []*Fused, ranks map[core.ID]entryRanks) {
	scoreWeighted(in, merged, ranks, adaptiveWeights(in.Intent, in.QueryTerms))
}
