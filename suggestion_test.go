package cmdcore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSuggestionsBuilder_SkipsIdenticalText(t *testing.T) {
	b := NewSuggestionsBuilder("foo bar", 4)
	b.Suggest("bar")
	b.Suggest("baz")
	out := b.Build()
	require.Len(t, out, 1)
	require.Equal(t, "baz", out[0].Text)
}

func TestDedupSuggestions_SortsCaseInsensitive(t *testing.T) {
	in := []Suggestion{NewSuggestion("Zed"), NewSuggestion("apple"), NewSuggestion("Zed")}
	out := DedupSuggestions(in)
	require.Equal(t, []string{"apple", "Zed"}, sortedSuggestionTexts(out))
}

func TestFilterSuggestions_PrefixCaseInsensitive(t *testing.T) {
	in := []Suggestion{NewSuggestion("Alice"), NewSuggestion("Bob"), NewSuggestion("alan")}
	out := FilterSuggestions(in, "al")
	require.Len(t, out, 2)
}

func TestTokenUnderCursor(t *testing.T) {
	require.Equal(t, "wor", tokenUnderCursor("hello wor"))
	require.Equal(t, "hello", tokenUnderCursor("hello"))
}
