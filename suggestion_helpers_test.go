package cmdcore

import "sort"

// sortedSuggestionTexts returns just the suggestion text, sorted, so tests
// can assert a suggestion set regardless of concurrent gather order.
func sortedSuggestionTexts(suggestions []Suggestion) []string {
	out := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, s.Text)
	}
	sort.Strings(out)
	return out
}
