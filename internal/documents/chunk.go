package documents

import (
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

// Chunk collapses whitespace in text and splits it on word boundaries into
// pieces of at most size runes. Consecutive chunks share up to overlap runes
// of trailing words; an overlap outside [0, size) is treated as zero. Words
// longer than size are hard-split.
func Chunk(text string, size, overlap int) ([]string, error) {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" || size <= 0 {
		return nil, nil
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(size),
		textsplitter.WithChunkOverlap(overlap),
		textsplitter.WithSeparators([]string{" ", ""}),
	)
	return splitter.SplitText(text)
}
