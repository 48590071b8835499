package templates

import (
	"regexp"
	"strings"
)

// BlockKind tells a narrative subheading from a body paragraph.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
)

// Block is one rendered unit of the analysis narrative.
type Block struct {
	Kind BlockKind
	Text string
}

var numberedHeading = regexp.MustCompile(`^\d+\.\s+`)

// ParseNarrative splits text on blank lines, drops empty segments, and marks
// segments that start with a numbered prefix such as "2. " as headings.
func ParseNarrative(text string) []Block {
	var blocks []Block
	for _, p := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(p) == "" {
			continue
		}
		kind := BlockParagraph
		if numberedHeading.MatchString(p) {
			kind = BlockHeading
		}
		blocks = append(blocks, Block{Kind: kind, Text: p})
	}
	return blocks
}
