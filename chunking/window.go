package chunking

import (
	"strings"

	"github.com/Uththunga/Ethos-Prompt-sub003/text"
)

// chunkFixed implements the fixed-size strategy: a sliding word window of
// ChunkSize with Overlap words shared between consecutive windows.
func (c *Chunker) chunkFixed(input string, cfg Config) []Candidate {
	step := cfg.ChunkSize - cfg.Overlap
	return c.window(input, cfg.ChunkSize, step, cfg.MinChunkSize)
}

// chunkSliding implements the sliding-window strategy: a fixed window advanced
// by an explicit Step, independent of overlap.
func (c *Chunker) chunkSliding(input string, cfg Config) []Candidate {
	step := cfg.Step
	if step > cfg.ChunkSize {
		step = cfg.ChunkSize
	}
	return c.window(input, cfg.ChunkSize, step, cfg.MinChunkSize)
}

// window slices words into candidates of at most size words, advancing by
// step. The final window always ends at the last word; a trailing window
// shorter than minSize is merged into its predecessor.
func (c *Chunker) window(input string, size, step, minSize int) []Candidate {
	words := text.Words(input)
	if len(words) == 0 {
		return nil
	}

	var candidates []Candidate
	for start := 0; start < len(words); start += step {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		candidates = append(candidates, Candidate{
			Text:       strings.Join(words[start:end], " "),
			TokenCount: end - start,
		})
		if end == len(words) {
			break
		}
	}

	// Merge a degenerate tail fragment into the previous window.
	last := len(candidates) - 1
	if last > 0 && candidates[last].TokenCount < minSize {
		prev := &candidates[last-1]
		prev.Text = prev.Text + " " + candidates[last].Text
		prev.TokenCount = c.counter.Count(prev.Text)
		candidates = candidates[:last]
	}

	return candidates
}
