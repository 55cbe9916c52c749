package query

import (
	"strings"

	"github.com/Uththunga/Ethos-Prompt-sub003/core"
)

// Rule-based intent classification. Cue phrases are matched on word
// boundaries, in priority order; the first matching label wins, falling back
// to IntentOther.
var intentCues = []struct {
	label core.IntentLabel
	cues  []string
}{
	{core.IntentComparative, []string{
		"compare", "comparison", "versus", "vs", "difference between",
		"better than", "worse than", "pros and cons", "tradeoff", "trade off",
	}},
	{core.IntentSummarization, []string{
		"summarize", "summarise", "summary", "overview", "tldr", "tl dr",
		"in short", "key points", "main points", "recap",
	}},
	{core.IntentTransactional, []string{
		"how do i", "how to", "steps to", "set up", "setup", "install",
		"configure", "create a", "delete a", "buy", "order", "download",
	}},
	{core.IntentNavigational, []string{
		"where is", "where can i find", "link to", "page for", "go to",
		"location of", "find the", "documentation for", "docs for",
	}},
	{core.IntentFactual, []string{
		"what is", "what are", "who is", "who was", "when did", "when was",
		"why does", "why is", "how many", "how much", "define", "definition of",
		"meaning of",
	}},
}

// ClassifyIntent assigns one of the fixed intent labels to a raw query.
func ClassifyIntent(queryText string) core.IntentLabel {
	normalized := normalizeForIntent(queryText)
	for _, entry := range intentCues {
		for _, cue := range entry.cues {
			if strings.Contains(normalized, " "+cue+" ") {
				return entry.label
			}
		}
	}

	// Bare question-mark queries without other cues read as factual.
	if strings.HasSuffix(strings.TrimSpace(queryText), "?") {
		return core.IntentFactual
	}
	return core.IntentOther
}

// normalizeForIntent lowercases, strips punctuation to spaces, and pads the
// result so cue phrases match only on whole words.
func normalizeForIntent(queryText string) string {
	var b strings.Builder
	b.WriteByte(' ')
	for _, r := range strings.ToLower(queryText) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	b.WriteByte(' ')
	return " " + strings.Join(strings.Fields(b.String()), " ") + " "
}
