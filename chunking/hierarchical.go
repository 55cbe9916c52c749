package chunking

import (
	"regexp"
	"strconv"
	"strings"
)

var headingPattern = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)

type section struct {
	heading string // Empty for the preamble before the first heading
	parent  string // Heading trail of enclosing sections, "A > B"
	level   int
	body    string // Includes the heading line itself
}

// findHeadings returns the markdown heading lines in input.
func findHeadings(input string) []string {
	return headingPattern.FindAllString(input, -1)
}

// splitSections partitions input at markdown headings, tracking the enclosing
// heading trail per section for parent/child metadata.
func splitSections(input string) []section {
	locs := headingPattern.FindAllStringSubmatchIndex(input, -1)
	if len(locs) == 0 {
		return []section{{body: input}}
	}

	var sections []section
	if preamble := strings.TrimSpace(input[:locs[0][0]]); preamble != "" {
		sections = append(sections, section{body: preamble})
	}

	// Stack of (level, heading) for the parent trail.
	type frame struct {
		level   int
		heading string
	}
	var stack []frame

	for i, loc := range locs {
		level := loc[3] - loc[2]
		heading := strings.TrimSpace(input[loc[4]:loc[5]])

		for len(stack) > 0 && stack[len(stack)-1].level >= level {
			stack = stack[:len(stack)-1]
		}
		trail := make([]string, 0, len(stack))
		for _, f := range stack {
			trail = append(trail, f.heading)
		}
		stack = append(stack, frame{level: level, heading: heading})

		end := len(input)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		sections = append(sections, section{
			heading: heading,
			parent:  strings.Join(trail, " > "),
			level:   level,
			body:    strings.TrimSpace(input[loc[0]:end]),
		})
	}

	return sections
}

// chunkHierarchical splits along detected structural markers. Each section is
// chunked semantically within size limits; chunk metadata records the section
// heading and its parent trail.
func (c *Chunker) chunkHierarchical(input string, cfg Config) []Candidate {
	var candidates []Candidate

	for _, sec := range splitSections(input) {
		parts := c.chunkSemantic(sec.body, cfg)
		for _, part := range parts {
			if sec.heading != "" {
				part.Metadata = map[string]string{
					"heading": sec.heading,
					"level":   strconv.Itoa(sec.level),
				}
				if sec.parent != "" {
					part.Metadata["parent"] = sec.parent
				}
			}
			candidates = append(candidates, part)
		}
	}

	return candidates
}
