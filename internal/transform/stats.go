package transform

import (
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// Stats summarizes a document for the status footer.
type Stats struct {
	Lines      int
	EmptyLines int
	Chars      int // code points
	Graphemes  int // user-perceived characters
	Words      int
}

// Analyze computes Stats for text. An empty document has one empty line.
func Analyze(text string) Stats {
	lines := strings.Split(text, "\n")
	empty := 0
	for _, line := range lines {
		if isBlank(line) {
			empty++
		}
	}
	return Stats{
		Lines:      len(lines),
		EmptyLines: empty,
		Chars:      utf8.RuneCountInString(text),
		Graphemes:  uniseg.GraphemeClusterCount(text),
		Words:      len(strings.Fields(text)),
	}
}
