package text

import "strings"

// Stop words filtered out during keyword indexing and query tokenization
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true,
}

// IsStopWord reports whether the word is a stop word.
// Expects an already lowercased word.
func IsStopWord(word string) bool {
	return stopWords[word]
}

// Tokenize splits text into words, lowercases, trims punctuation, and removes
// stop words. This is the shared preprocessing for BM25 indexing and querying;
// spelling correction happens upstream in the query enhancer.
func Tokenize(text string) []string {
	words := strings.Fields(text)
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))

		if cleaned != "" && !stopWords[cleaned] {
			filtered = append(filtered, cleaned)
		}
	}

	return filtered
}

// Words splits text on whitespace without any filtering. Window-based chunking
// strategies operate on these raw words so that joining them reconstructs the
// source text modulo whitespace normalization.
func Words(text string) []string {
	return strings.Fields(text)
}

// NormalizeWhitespace collapses runs of whitespace into single spaces.
func NormalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
