package query

import (
	"strings"

	"github.com/xrash/smetrics"
)

// maxCorrectionDistance is the largest edit distance a dictionary word may be
// from the input token and still be offered as a correction.
const maxCorrectionDistance = 2

// SpellCorrector fixes misspelled tokens against a dictionary using edit
// distance. Tokens already in the dictionary, or shorter than four runes, are
// left alone.
type SpellCorrector struct {
	dictionary map[string]struct{}
	words      []string
}

// NewSpellCorrector builds a corrector over the given dictionary words.
// Dictionary entries are matched case-insensitively.
func NewSpellCorrector(words []string) *SpellCorrector {
	sc := &SpellCorrector{
		dictionary: make(map[string]struct{}, len(words)),
	}
	for _, w := range words {
		lower := strings.ToLower(w)
		if _, seen := sc.dictionary[lower]; seen {
			continue
		}
		sc.dictionary[lower] = struct{}{}
		sc.words = append(sc.words, lower)
	}
	return sc
}

// Correct returns the corrected form of token, or the token unchanged when no
// close dictionary word exists.
func (sc *SpellCorrector) Correct(token string) string {
	lower := strings.ToLower(token)
	if len([]rune(lower)) < 4 {
		return token
	}
	if _, ok := sc.dictionary[lower]; ok {
		return token
	}

	best := ""
	bestDistance := maxCorrectionDistance + 1
	for _, word := range sc.words {
		d := smetrics.WagnerFischer(lower, word, 1, 1, 1)
		if d < bestDistance {
			best = word
			bestDistance = d
		}
	}
	if best == "" {
		return token
	}
	return best
}

// CorrectText corrects every whitespace-separated token in text.
func (sc *SpellCorrector) CorrectText(text string) string {
	fields := strings.Fields(text)
	for i, f := range fields {
		fields[i] = sc.Correct(f)
	}
	return strings.Join(fields, " ")
}
