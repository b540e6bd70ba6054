package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestEveryActionHasHandler(t *testing.T) {
	inputs := []string{"", "\n", "Hello World\n  two\t- x\n[3]", "ünïcödé\nпривет"}
	for _, a := range All() {
		for _, in := range inputs {
			assert.NotPanics(t, func() {
				Transform(a, in, Params{Find: "o", Replace: "0"})
			}, "action %v", a)
		}
	}
	assert.Len(t, All(), 21)
}

func TestTransformUnknownActionPanics(t *testing.T) {
	assert.Panics(t, func() { Transform(ActionUnknown, "x", Params{}) })
	assert.Panics(t, func() { Transform(Action(999), "x", Params{}) })
}

func TestWholeTextActions(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		in     string
		params Params
		want   string
	}{
		{"upper", ActionUpper, "héllo wörld\nпривет", Params{}, "HÉLLO WÖRLD\nПРИВЕТ"},
		{"lower", ActionLower, "HÉLLO\nПРИВЕТ", Params{}, "héllo\nпривет"},
		{"space to underscore keeps tabs", ActionSpaceToUnderscore, "a b\tc  d", Params{}, "a_b\tc__d"},
		{"remove tabs", ActionRemoveTabs, "\ta\tb\n\t", Params{}, "ab\n"},
		{"strip special", ActionStripSpecial, "héllo! 123_wörld", Params{}, "héllo 123wörld"},
		{"strip special keeps newlines", ActionStripSpecial, "a.\n\nb?", Params{}, "a\n\nb"},
		{"find replace all", ActionFindReplace, "foo bar foo", Params{Find: "foo", Replace: "baz"}, "baz bar baz"},
		{"find replace literal", ActionFindReplace, "a.b.c", Params{Find: ".", Replace: "*"}, "a*b*c"},
		{"find replace omitted replacement", ActionFindReplace, "a-b-c", Params{Find: "-"}, "abc"},
		{"find replace empty find", ActionFindReplace, "abc", Params{Replace: "x"}, "abc"},
		{"find replace across lines", ActionFindReplace, "a\nb", Params{Find: "\n", Replace: " "}, "a b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Transform(tt.action, tt.in, tt.params))
		})
	}
}

func TestLineActions(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		in     string
		want   string
	}{
		{"cap words", ActionCapWords, "hello world_foo bar-baz\n9lives", "Hello World_foo Bar-Baz\n9lives"},
		{"cap first", ActionCapFirst, "hello there\n\nélan vital", "Hello there\n\nÉlan vital"},
		{"cap first leading space", ActionCapFirst, " lower", " lower"},
		{"add plus skips blank", ActionAddPlus, "a\n  \nb\n", "+a\n  \n+b\n"},
		{"remove plus leading only", ActionRemovePlus, "+a+\n++b\nc", "a+\n+b\nc"},
		{"add quotes", ActionAddQuotes, "a\n\nb c", "\"a\"\n\n\"b c\""},
		{"remove quotes both ends", ActionRemoveQuotes, "\"a\"\n\"b\nc\"\nd", "a\nb\nc\nd"},
		{"remove quotes lone quote", ActionRemoveQuotes, "\"", ""},
		{"add brackets", ActionAddBrackets, "x\n\t", "[x]\n\t"},
		{"remove brackets", ActionRemoveBrackets, "[x]\n[y\nz]\n]w[", "x\ny\nz\n]w["},
		{"add dash without space", ActionAddDash, "item\n", "-item\n"},
		{"remove dash", ActionRemoveDash, "-item\n- spaced\n--double", "item\n spaced\n-double"},
		{"trim", ActionTrim, "  a  \n\tb\t\n   ", "a\nb\n"},
		{"remove after dash", ActionRemoveAfterDash, "item - note\nno dash\na-b\nx -y -z", "item\nno dash\na-b\nx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Transform(tt.action, tt.in, Params{}))
		})
	}
}

func TestLineCountPreserved(t *testing.T) {
	in := "a\n\n b \n\n"
	for _, a := range All() {
		if a == ActionUnique || a.Kind() != LineBased {
			continue
		}
		out := Transform(a, in, Params{})
		assert.Equal(t, Analyze(in).Lines, Analyze(out).Lines, "action %v", a)
	}
}

func TestCaseFoldingIsIdempotent(t *testing.T) {
	samples := []string{"", "Hello World", "ÀÉÎõü", "Привет Мир", "mixed 123 _x_"}
	for _, s := range samples {
		upper := Transform(ActionUpper, s, Params{})
		lower := Transform(ActionLower, s, Params{})
		assert.Equal(t, upper, Transform(ActionUpper, lower, Params{}), s)
		assert.Equal(t, lower, Transform(ActionLower, upper, Params{}), s)
	}
}

func TestWrapUnwrapRoundTrip(t *testing.T) {
	pairs := []struct{ add, remove Action }{
		{ActionAddPlus, ActionRemovePlus},
		{ActionAddQuotes, ActionRemoveQuotes},
		{ActionAddBrackets, ActionRemoveBrackets},
		{ActionAddDash, ActionRemoveDash},
	}
	lines := []string{"hello", "  padded  ", `a"`, "[x", "+plus", "-dash", "]", "ünï"}
	for _, p := range pairs {
		for _, line := range lines {
			wrapped := Transform(p.add, line, Params{})
			assert.NotEqual(t, line, wrapped)
			assert.Equal(t, line, Transform(p.remove, wrapped, Params{}), "%v/%v on %q", p.add, p.remove, line)
		}
		for _, blank := range []string{"", "   ", "\t"} {
			assert.Equal(t, blank, Transform(p.add, blank, Params{}), "%v on blank", p.add)
		}
	}
}

func TestUniqueKeepsFirstOccurrence(t *testing.T) {
	assert.Equal(t, "b\na\nc", Transform(ActionUnique, "b\na\nb\nc\na", Params{}))
	assert.Equal(t, "x\n", Transform(ActionUnique, "x\n\nx\n", Params{}))
}

func TestSort(t *testing.T) {
	t.Run("case insensitive primary order", func(t *testing.T) {
		in := "banana\nApple\ncherry"
		assert.Equal(t, "Apple\nbanana\ncherry", Transform(ActionSortAsc, in, Params{}))
		assert.Equal(t, "cherry\nbanana\nApple", Transform(ActionSortDesc, in, Params{}))
	})

	t.Run("latin and cyrillic", func(t *testing.T) {
		in := "яблоко\nzebra\nёж\napple\nбанан"
		assert.Equal(t, "apple\nzebra\nбанан\nёж\nяблоко", Transform(ActionSortAsc, in, Params{}))
	})

	t.Run("numeric runs", func(t *testing.T) {
		assert.Equal(t, "item1\nitem2\nitem10", Transform(ActionSortAsc, "item10\nitem2\nitem1", Params{}))
	})

	t.Run("stable for equal keys", func(t *testing.T) {
		// Precomposed and decomposed é collate as equal.
		nfc, nfd := "\u00e9", "e\u0301"
		assert.Equal(t, nfc+"\n"+nfd, Transform(ActionSortAsc, nfc+"\n"+nfd, Params{}))
		assert.Equal(t, nfd+"\n"+nfc, Transform(ActionSortAsc, nfd+"\n"+nfc, Params{}))
		assert.Equal(t, nfd+"\n"+nfc, Transform(ActionSortDesc, nfd+"\n"+nfc, Params{}))
	})

	t.Run("localized engine", func(t *testing.T) {
		tag, err := ParseLocale("ru")
		require.NoError(t, err)
		e := NewEngine(WithLocale(tag))
		assert.Equal(t, "ru", e.Locale().String())
		assert.Equal(t, "а\nб\nв", e.Transform(ActionSortAsc, "в\nа\nб", Params{}))
	})
}

func TestParseLocale(t *testing.T) {
	tag, err := ParseLocale("")
	require.NoError(t, err)
	assert.Equal(t, language.Und, tag)

	_, err = ParseLocale("not a locale!")
	assert.Error(t, err)
}
