package transform

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Params carries the optional arguments of find_replace.
type Params struct {
	Find    string `json:"find,omitempty" toml:"find"`
	Replace string `json:"replace,omitempty" toml:"replace"`
}

// Engine applies actions to text. An Engine is immutable once built and safe
// for concurrent use; per-call state (casers, collators) is created inside
// Transform.
type Engine struct {
	locale language.Tag
}

// Option configures an Engine.
type Option func(*Engine)

// WithLocale sets the language used for collation and case mapping.
func WithLocale(tag language.Tag) Option {
	return func(e *Engine) {
		e.locale = tag
	}
}

// NewEngine builds an engine. The default locale is language.Und, the root
// collation order.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{locale: language.Und}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ParseLocale parses a BCP 47 tag such as "en", "ru" or "uk-UA". An empty
// string selects the root locale.
func ParseLocale(s string) (language.Tag, error) {
	if s == "" {
		return language.Und, nil
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und, fmt.Errorf("invalid locale %q: %w", s, err)
	}
	return tag, nil
}

// Locale returns the engine's collation language.
func (e *Engine) Locale() language.Tag {
	return e.locale
}

var defaultEngine = NewEngine()

// Transform applies action to text using the root locale.
func Transform(action Action, text string, params Params) string {
	return defaultEngine.Transform(action, text, params)
}

// Transform applies action to text. It panics on an action outside the
// catalog; callers are expected to obtain actions from ParseAction or All.
func (e *Engine) Transform(action Action, text string, params Params) string {
	switch action {
	// Whole-text
	case ActionUpper:
		return cases.Upper(e.locale).String(text)
	case ActionLower:
		return cases.Lower(e.locale).String(text)
	case ActionSpaceToUnderscore:
		return strings.ReplaceAll(text, " ", "_")
	case ActionRemoveTabs:
		return strings.ReplaceAll(text, "\t", "")
	case ActionStripSpecial:
		return stripSpecial(text)
	case ActionFindReplace:
		if params.Find == "" {
			return text
		}
		return strings.ReplaceAll(text, params.Find, params.Replace)

	// Line-based, per line
	case ActionCapWords:
		return mapLines(text, capWords)
	case ActionCapFirst:
		return mapLines(text, capFirst(cases.Upper(e.locale)))
	case ActionAddPlus:
		return mapLines(text, plusMarker.wrap)
	case ActionRemovePlus:
		return mapLines(text, plusMarker.unwrap)
	case ActionAddQuotes:
		return mapLines(text, quoteMarker.wrap)
	case ActionRemoveQuotes:
		return mapLines(text, quoteMarker.unwrap)
	case ActionAddBrackets:
		return mapLines(text, bracketMarker.wrap)
	case ActionRemoveBrackets:
		return mapLines(text, bracketMarker.unwrap)
	case ActionAddDash:
		return mapLines(text, dashMarker.wrap)
	case ActionRemoveDash:
		return mapLines(text, dashMarker.unwrap)
	case ActionTrim:
		return mapLines(text, trimLine)
	case ActionRemoveAfterDash:
		return mapLines(text, removeAfterDash)

	// Line-based, whole set of lines
	case ActionSortAsc:
		return e.sortLines(text, false)
	case ActionSortDesc:
		return e.sortLines(text, true)
	case ActionUnique:
		return strings.Join(unique(strings.Split(text, "\n")), "\n")
	}
	panic(fmt.Sprintf("transform: no handler for %v", action))
}
