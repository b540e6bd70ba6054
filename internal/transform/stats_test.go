package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Stats
	}{
		{"empty", "", Stats{Lines: 1, EmptyLines: 1}},
		{"single", "hello world", Stats{Lines: 1, Chars: 11, Graphemes: 11, Words: 2}},
		{"blank lines", "a\n\n  \nb", Stats{Lines: 4, EmptyLines: 2, Chars: 7, Graphemes: 7, Words: 2}},
		{"combining mark", "é", Stats{Lines: 1, Chars: 2, Graphemes: 1, Words: 1}},
		{"trailing newline", "x\n", Stats{Lines: 2, EmptyLines: 1, Chars: 2, Graphemes: 2, Words: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Analyze(tt.text))
		})
	}
}
