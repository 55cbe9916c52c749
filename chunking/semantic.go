package chunking

import (
	"regexp"
	"strings"
)

var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+(?:\s|$)|[^.!?]+$`)

// splitSentences splits a paragraph into sentences on terminal punctuation.
func splitSentences(paragraph string) []string {
	matches := sentencePattern.FindAllString(paragraph, -1)
	sentences := make([]string, 0, len(matches))
	for _, m := range matches {
		if trimmed := strings.TrimSpace(m); trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}
	return sentences
}

// splitParagraphs splits text on blank lines.
func splitParagraphs(input string) []string {
	parts := strings.Split(input, "\n\n")
	paragraphs := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			paragraphs = append(paragraphs, trimmed)
		}
	}
	return paragraphs
}

// chunkSemantic splits on sentence and paragraph boundaries. ChunkSize is a
// soft maximum: a chunk is flushed once adding the next sentence would exceed
// it. A sentence longer than MaxChunkSize is hard-split by window.
func (c *Chunker) chunkSemantic(input string, cfg Config) []Candidate {
	var (
		candidates []Candidate
		buffer     []string
		bufTokens  int
	)

	flush := func() {
		if len(buffer) == 0 {
			return
		}
		candidates = append(candidates, Candidate{
			Text:       strings.Join(buffer, " "),
			TokenCount: bufTokens,
		})
		buffer = nil
		bufTokens = 0
	}

	for _, paragraph := range splitParagraphs(input) {
		for _, sentence := range splitSentences(paragraph) {
			tokens := c.counter.Count(sentence)

			if tokens > cfg.MaxChunkSize {
				flush()
				// Oversized sentence: fall back to windowing.
				hard := c.window(sentence, cfg.ChunkSize, cfg.ChunkSize, cfg.MinChunkSize)
				candidates = append(candidates, hard...)
				continue
			}

			if bufTokens > 0 && bufTokens+tokens > cfg.ChunkSize {
				flush()
			}
			buffer = append(buffer, sentence)
			bufTokens += tokens
		}
	}
	flush()

	// A trailing fragment below the minimum merges into the previous chunk.
	last := len(candidates) - 1
	if last > 0 && candidates[last].TokenCount < cfg.MinChunkSize {
		prev := &candidates[last-1]
		prev.Text = prev.Text + " " + candidates[last].Text
		prev.TokenCount += candidates[last].TokenCount
		candidates = candidates[:last]
	}

	return candidates
}
