// Package transform implements the catalog of text transformations.
//
// Every transformation is a pure function of (action, text, params). Actions
// are either whole-text (operate on the full string) or line-based (split on
// '\n', map each line, rejoin with '\n').
package transform

import (
	"errors"
	"fmt"
)

// ErrUnknownAction is returned by ParseAction for names outside the catalog.
var ErrUnknownAction = errors.New("unknown action")

// Action identifies one transformation of the closed catalog.
type Action int

const (
	ActionUnknown Action = iota

	// Case
	ActionUpper
	ActionLower
	ActionCapWords
	ActionCapFirst

	// Symbols
	ActionAddPlus
	ActionRemovePlus
	ActionAddQuotes
	ActionRemoveQuotes
	ActionAddBrackets
	ActionRemoveBrackets
	ActionAddDash
	ActionRemoveDash

	// Cleaning
	ActionTrim
	ActionRemoveTabs
	ActionRemoveAfterDash
	ActionSpaceToUnderscore
	ActionStripSpecial

	// Search
	ActionFindReplace

	// Sort / unique
	ActionSortAsc
	ActionSortDesc
	ActionUnique

	actionCount // sentinel, keep last
)

// Kind tells how an action consumes its input.
type Kind int

const (
	WholeText Kind = iota
	LineBased
)

func (k Kind) String() string {
	if k == LineBased {
		return "line"
	}
	return "whole"
}

// Group is the UI category an action is listed under.
type Group int

const (
	GroupCase Group = iota
	GroupSymbols
	GroupCleaning
	GroupSearch
	GroupSort
)

var groupNames = [...]string{"Case", "Symbols", "Cleaning", "Search", "Sort & Unique"}

func (g Group) String() string {
	if g < 0 || int(g) >= len(groupNames) {
		return fmt.Sprintf("Group(%d)", int(g))
	}
	return groupNames[g]
}

// descriptor carries the static metadata for one action.
type descriptor struct {
	name  string // wire name
	label string // human label
	kind  Kind
	group Group
}

var catalog = [actionCount]descriptor{
	ActionUpper:             {"upper", "UPPERCASE", WholeText, GroupCase},
	ActionLower:             {"lower", "lowercase", WholeText, GroupCase},
	ActionCapWords:          {"cap_words", "Capitalize Words", LineBased, GroupCase},
	ActionCapFirst:          {"cap_first", "Sentence case", LineBased, GroupCase},
	ActionAddPlus:           {"add_plus", "Add +", LineBased, GroupSymbols},
	ActionRemovePlus:        {"remove_plus", "Remove +", LineBased, GroupSymbols},
	ActionAddQuotes:         {"add_quotes", `Add ""`, LineBased, GroupSymbols},
	ActionRemoveQuotes:      {"remove_quotes", `Remove ""`, LineBased, GroupSymbols},
	ActionAddBrackets:       {"add_brackets", "Add []", LineBased, GroupSymbols},
	ActionRemoveBrackets:    {"remove_brackets", "Remove []", LineBased, GroupSymbols},
	ActionAddDash:           {"add_dash", "Add -", LineBased, GroupSymbols},
	ActionRemoveDash:        {"remove_dash", "Remove -", LineBased, GroupSymbols},
	ActionTrim:              {"trim", "Trim Whitespace", LineBased, GroupCleaning},
	ActionRemoveTabs:        {"remove_tabs", "Remove Tabs", WholeText, GroupCleaning},
	ActionRemoveAfterDash:   {"remove_after_dash", "Remove after ' -'", LineBased, GroupCleaning},
	ActionSpaceToUnderscore: {"space_to_underscore", "Spaces to _", WholeText, GroupCleaning},
	ActionStripSpecial:      {"strip_special", "Strip Special Chars", WholeText, GroupCleaning},
	ActionFindReplace:       {"find_replace", "Replace All", WholeText, GroupSearch},
	ActionSortAsc:           {"sort_asc", "Sort A-Z", LineBased, GroupSort},
	ActionSortDesc:          {"sort_desc", "Sort Z-A", LineBased, GroupSort},
	ActionUnique:            {"unique", "Remove Duplicates", LineBased, GroupSort},
}

var byName = func() map[string]Action {
	m := make(map[string]Action, actionCount)
	for a := ActionUpper; a < actionCount; a++ {
		m[catalog[a].name] = a
	}
	return m
}()

// All returns every action of the catalog in declaration order.
func All() []Action {
	out := make([]Action, 0, actionCount-1)
	for a := ActionUpper; a < actionCount; a++ {
		out = append(out, a)
	}
	return out
}

// ParseAction maps a wire name such as "sort_asc" to its Action.
func ParseAction(name string) (Action, error) {
	a, ok := byName[name]
	if !ok {
		return ActionUnknown, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
	return a, nil
}

// Valid reports whether a is a member of the catalog.
func (a Action) Valid() bool {
	return a > ActionUnknown && a < actionCount
}

// String returns the wire name of the action.
func (a Action) String() string {
	if !a.Valid() {
		return fmt.Sprintf("Action(%d)", int(a))
	}
	return catalog[a].name
}

// Label returns the human readable name shown in menus.
func (a Action) Label() string {
	if !a.Valid() {
		return a.String()
	}
	return catalog[a].label
}

// Kind reports whether the action is whole-text or line-based.
func (a Action) Kind() Kind {
	if !a.Valid() {
		return WholeText
	}
	return catalog[a].kind
}

func (a Action) Group() Group {
	if !a.Valid() {
		return GroupCase
	}
	return catalog[a].group
}

// MarshalText encodes the action by its wire name.
func (a Action) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAction, int(a))
	}
	return []byte(catalog[a].name), nil
}

// UnmarshalText decodes a wire name.
func (a *Action) UnmarshalText(b []byte) error {
	parsed, err := ParseAction(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
