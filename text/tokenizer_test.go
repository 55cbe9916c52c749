package text_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Uththunga/Ethos-Prompt-sub003/text"
)

func TestTokenize(t *testing.T) {
	t.Run("lowercases and trims punctuation", func(t *testing.T) {
		tokens := text.Tokenize("Badger stores Keys, sorted!")
		assert.Equal(t, []string{"badger", "stores", "keys", "sorted"}, tokens)
	})

	t.Run("removes stop words", func(t *testing.T) {
		tokens := text.Tokenize("the index is built from the postings")
		assert.Equal(t, []string{"index", "built", "postings"}, tokens)
	})

	t.Run("empty input yields no tokens", func(t *testing.T) {
		assert.Empty(t, text.Tokenize("   "))
	})

	t.Run("pure punctuation tokens are dropped", func(t *testing.T) {
		assert.Empty(t, text.Tokenize("... !!! ---"))
	})
}

func TestIsStopWord(t *testing.T) {
	assert.True(t, text.IsStopWord("the"))
	assert.False(t, text.IsStopWord("retrieval"))
}

func TestWords(t *testing.T) {
	assert.Equal(t, []string{"A", "B", "C"}, text.Words("  A  B\tC\n"))
}

func TestNormalizeWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", text.NormalizeWhitespace("  a\t b \n c "))
	assert.Equal(t, "", text.NormalizeWhitespace(" \n\t "))
}

func TestWordCounter(t *testing.T) {
	counter := text.WordCounter{}
	assert.Equal(t, 4, counter.Count("one two three four"))
	assert.Equal(t, 0, counter.Count(""))
}
