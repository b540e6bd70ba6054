package transform

import (
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
	"golang.org/x/text/cases"
)

// lineFunc maps one line to its replacement. Lines never contain '\n'.
type lineFunc func(line string) string

// mapLines applies fn to every line of text, preserving the line count
// (including trailing empty lines).
func mapLines(text string, fn lineFunc) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = fn(line)
	}
	return strings.Join(lines, "\n")
}

// isBlank reports whether line is empty after trimming whitespace.
func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// marker describes a wrap/unwrap pair such as "[" ... "]".
type marker struct {
	prefix string
	suffix string
}

var (
	plusMarker    = marker{prefix: "+"}
	quoteMarker   = marker{prefix: `"`, suffix: `"`}
	bracketMarker = marker{prefix: "[", suffix: "]"}
	dashMarker    = marker{prefix: "-"}
)

// wrap surrounds non-blank lines with the marker. Blank lines pass through.
func (m marker) wrap(line string) string {
	if isBlank(line) {
		return line
	}
	return m.prefix + line + m.suffix
}

// unwrap strips one leading prefix and, independently, one trailing suffix.
// A missing marker leaves that end untouched.
func (m marker) unwrap(line string) string {
	line = strings.TrimPrefix(line, m.prefix)
	if m.suffix != "" {
		line = strings.TrimSuffix(line, m.suffix)
	}
	return line
}

// isWordByte matches the \w class: ASCII letters, digits and underscore.
func isWordByte(b byte) bool {
	return b == '_' ||
		('0' <= b && b <= '9') ||
		('a' <= b && b <= 'z') ||
		('A' <= b && b <= 'Z')
}

// capWords upper-cases the first byte of every \w run.
func capWords(line string) string {
	var b strings.Builder
	b.Grow(len(line))
	prevWord := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		word := isWordByte(c)
		if word && !prevWord && 'a' <= c && c <= 'z' {
			c -= 'a' - 'A'
		}
		// Multi-byte UTF-8 sequences never contain ASCII bytes, so they
		// always count as non-word separators.
		b.WriteByte(c)
		prevWord = word
	}
	return b.String()
}

// capFirst upper-cases the first user-perceived character of the line.
func capFirst(upper cases.Caser) lineFunc {
	return func(line string) string {
		if line == "" {
			return line
		}
		first, rest, _, _ := uniseg.FirstGraphemeClusterInString(line, -1)
		return upper.String(first) + rest
	}
}

// trimLine removes leading and trailing whitespace.
func trimLine(line string) string {
	return strings.TrimSpace(line)
}

// removeAfterDash truncates the line at the first " -".
func removeAfterDash(line string) string {
	if idx := strings.Index(line, " -"); idx != -1 {
		return line[:idx]
	}
	return line
}

// stripSpecial keeps letters, numbers and whitespace.
func stripSpecial(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, text)
}

// unique keeps the first occurrence of every distinct line.
func unique(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := lines[:0]
	for _, line := range lines {
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
