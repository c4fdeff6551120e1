package cmdcore

import (
	"fmt"
	"sort"
	"strings"
)

// Suggestion is one completion candidate, with an optional tooltip payload
// shown alongside it by front-ends that support one.
type Suggestion struct {
	Text    string
	Tooltip fmt.Stringer
}

// NewSuggestion returns a plain Suggestion with no tooltip.
func NewSuggestion(text string) Suggestion { return Suggestion{Text: text} }

// WithTooltip returns a copy of s carrying tooltip.
func (s Suggestion) WithTooltip(tooltip fmt.Stringer) Suggestion {
	s.Tooltip = tooltip
	return s
}

// SuggestionsBuilder accumulates Suggestion values for one node during a
// suggestion walk (§4.9). Grounded on minekube-brigodier/suggestions.go's
// SuggestionsBuilder.
type SuggestionsBuilder struct {
	Input              string
	InputLowerCase     string
	Start              int
	Remaining          string
	RemainingLowerCase string

	result []Suggestion
}

// NewSuggestionsBuilder builds a SuggestionsBuilder for the token under the
// cursor, which begins at byte offset start within input.
func NewSuggestionsBuilder(input string, start int) *SuggestionsBuilder {
	return &SuggestionsBuilder{
		Input:              input,
		InputLowerCase:     strings.ToLower(input),
		Start:              start,
		Remaining:          input[start:],
		RemainingLowerCase: strings.ToLower(input[start:]),
	}
}

// Suggest adds text as a candidate completion, skipping it if it is
// identical to what's already typed.
func (b *SuggestionsBuilder) Suggest(text string) *SuggestionsBuilder {
	if text != b.Remaining {
		b.result = append(b.result, NewSuggestion(text))
	}
	return b
}

// SuggestWithTooltip adds text with an attached tooltip.
func (b *SuggestionsBuilder) SuggestWithTooltip(text string, tooltip fmt.Stringer) *SuggestionsBuilder {
	if text != b.Remaining {
		b.result = append(b.result, NewSuggestion(text).WithTooltip(tooltip))
	}
	return b
}

// Build finalizes the builder into a deduplicated, sorted Suggestion slice.
func (b *SuggestionsBuilder) Build() []Suggestion { return DedupSuggestions(b.result) }

// DedupSuggestions deduplicates by text (retaining the first tooltip seen)
// and sorts case-insensitively by text, per §4.9.
func DedupSuggestions(in []Suggestion) []Suggestion {
	seen := make(map[string]struct{}, len(in))
	out := make([]Suggestion, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s.Text]; ok {
			continue
		}
		seen[s.Text] = struct{}{}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Text) < strings.ToLower(out[j].Text)
	})
	return out
}

// FilterSuggestions keeps only the suggestions whose text starts
// case-insensitively with token, the default filter described in §4.9.
func FilterSuggestions(in []Suggestion, token string) []Suggestion {
	lowerTok := strings.ToLower(token)
	out := make([]Suggestion, 0, len(in))
	for _, s := range in {
		if strings.HasPrefix(strings.ToLower(s.Text), lowerTok) {
			out = append(out, s)
		}
	}
	return out
}

// tokenUnderCursor trims line at the last whitespace boundary, returning the
// partial token a suggestion walk should filter suggestions against.
func tokenUnderCursor(line string) string {
	idx := strings.LastIndexAny(line, " \t")
	return line[idx+1:]
}
