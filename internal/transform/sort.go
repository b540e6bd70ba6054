package transform

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
)

// sortLines orders the lines of text with a locale-aware collator. Digit
// runs compare by numeric value. Descending order uses the reversed
// ascending comparator; both are stable.
func (e *Engine) sortLines(text string, desc bool) string {
	lines := strings.Split(text, "\n")
	col := collate.New(e.locale, collate.Numeric)
	cmp := col.CompareString
	if desc {
		cmp = func(a, b string) int { return col.CompareString(b, a) }
	}
	slices.SortStableFunc(lines, cmp)
	return strings.Join(lines, "\n")
}
