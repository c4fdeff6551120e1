package cmdcore

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// ArgumentParser turns the text at a CommandInput's cursor into a typed
// value, and can offer completions for a partial token (§4.2). Parsers are
// pure with respect to the Context store: they may read from it (e.g. to
// look up a previously-parsed argument) but must not mutate it beyond
// advancing the input cursor — the tree walk (§4.6) binds a parser's
// successful result into the Context. AggregateParser is the one exception:
// it also records each successful inner value in the Context store.
type ArgumentParser[C, T any] interface {
	Parse(ctx *Context[C], in *CommandInput) ParseResult[T]
	Suggestions(ctx *Context[C], in *CommandInput) []Suggestion
}

// ArgumentParserFuncs adapts two plain functions into an ArgumentParser,
// mirroring minekube-brigodier's ArgumentTypeFuncs.
type ArgumentParserFuncs[C, T any] struct {
	ParseFn       func(ctx *Context[C], in *CommandInput) ParseResult[T]
	SuggestionsFn func(ctx *Context[C], in *CommandInput) []Suggestion
}

func (f ArgumentParserFuncs[C, T]) Parse(ctx *Context[C], in *CommandInput) ParseResult[T] {
	return f.ParseFn(ctx, in)
}

func (f ArgumentParserFuncs[C, T]) Suggestions(ctx *Context[C], in *CommandInput) []Suggestion {
	if f.SuggestionsFn == nil {
		return nil
	}
	return f.SuggestionsFn(ctx, in)
}

// --- numeric parsers -------------------------------------------------------

// Numeric is the set of types the standard numeric parsers can produce.
type Numeric interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~float32 | ~float64
}

// NewInt32Parser builds a parser for int32 values bounded by [min, max].
func NewInt32Parser[C any](min, max int32, hasMin, hasMax bool) ArgumentParser[C, int32] {
	return newIntParser[C, int32](min, max, hasMin, hasMax, 32)
}

// NewInt64Parser builds a parser for int64 values bounded by [min, max].
func NewInt64Parser[C any](min, max int64, hasMin, hasMax bool) ArgumentParser[C, int64] {
	return newIntParser[C, int64](min, max, hasMin, hasMax, 64)
}

func newIntParser[C any, T Numeric](min, max T, hasMin, hasMax bool, bits int) ArgumentParser[C, T] {
	return ArgumentParserFuncs[C, T]{
		ParseFn: func(ctx *Context[C], in *CommandInput) ParseResult[T] {
			mark := in.Mark()
			tok := in.PeekString()
			i, err := strconv.ParseInt(tok, 10, bits)
			if err != nil {
				in.Rewind(mark)
				return Failure[T](ArgumentParse("int", &NumberParseError{
					Input: tok, Min: fmtNum(float64(min)), Max: fmtNum(float64(max)), HasMin: hasMin, HasMax: hasMax,
				}))
			}
			if hasMin && float64(i) < float64(min) || hasMax && float64(i) > float64(max) {
				in.Rewind(mark)
				return Failure[T](ArgumentParse("int", &NumberParseError{
					Input: tok, Min: fmtNum(float64(min)), Max: fmtNum(float64(max)), HasMin: hasMin, HasMax: hasMax,
				}))
			}
			in.Cursor += len(tok)
			return Success(T(i))
		},
		SuggestionsFn: func(ctx *Context[C], in *CommandInput) []Suggestion {
			return suggestIntPrefix(in.PeekString(), hasMin, min, hasMax, max)
		},
	}
}

// NewFloat32Parser builds a parser for float32 values bounded by [min, max].
func NewFloat32Parser[C any](min, max float32, hasMin, hasMax bool) ArgumentParser[C, float32] {
	return ArgumentParserFuncs[C, float32]{
		ParseFn: func(ctx *Context[C], in *CommandInput) ParseResult[float32] {
			return MapResult(parseFloatTok(in, 32, float64(min), float64(max), hasMin, hasMax), func(f float64) float32 {
				return float32(f)
			})
		},
	}
}

// NewFloat64Parser builds a parser for float64 values bounded by [min, max].
func NewFloat64Parser[C any](min, max float64, hasMin, hasMax bool) ArgumentParser[C, float64] {
	return ArgumentParserFuncs[C, float64]{
		ParseFn: func(ctx *Context[C], in *CommandInput) ParseResult[float64] {
			return parseFloatTok(in, 64, min, max, hasMin, hasMax)
		},
	}
}

func parseFloatTok(in *CommandInput, bits int, min, max float64, hasMin, hasMax bool) ParseResult[float64] {
	mark := in.Mark()
	tok := in.PeekString()
	f, err := strconv.ParseFloat(tok, bits)
	if err != nil || (hasMin && f < min) || (hasMax && f > max) {
		in.Rewind(mark)
		return Failure[float64](ArgumentParse("float", &NumberParseError{
			Input: tok, Min: fmtNum(min), Max: fmtNum(max), HasMin: hasMin, HasMax: hasMax,
		}))
	}
	in.Cursor += len(tok)
	return Success(f)
}

func fmtNum(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// suggestIntPrefix offers the range's own boundary values as completions
// when they extend the partially-typed digits, per §4.2's "complete digit
// prefixes consistent with the range".
func suggestIntPrefix[T Numeric](partial string, hasMin bool, min T, hasMax bool, max T) []Suggestion {
	var out []Suggestion
	if hasMin {
		out = append(out, NewSuggestion(fmtNum(float64(min))))
	}
	if hasMax {
		out = append(out, NewSuggestion(fmtNum(float64(max))))
	}
	return FilterSuggestions(out, partial)
}

// --- bool parser -------------------------------------------------------------

// boolTrueDefault and boolFalseDefault are the default recognized spellings;
// a parser built with NewBoolParser(true) additionally accepts yes/no,
// on/off per §4.2.
var (
	boolTrueDefault  = []string{"true"}
	boolFalseDefault = []string{"false"}
)

// NewBoolParser builds a parser recognizing true/false, and optionally
// yes/no and on/off when extended is true.
func NewBoolParser[C any](extended bool) ArgumentParser[C, bool] {
	trueWords := append([]string{}, boolTrueDefault...)
	falseWords := append([]string{}, boolFalseDefault...)
	if extended {
		trueWords = append(trueWords, "yes", "on")
		falseWords = append(falseWords, "no", "off")
	}
	return ArgumentParserFuncs[C, bool]{
		ParseFn: func(ctx *Context[C], in *CommandInput) ParseResult[bool] {
			mark := in.Mark()
			tok := in.PeekString()
			low := strings.ToLower(tok)
			for _, w := range trueWords {
				if low == w {
					in.Cursor += len(tok)
					return Success(true)
				}
			}
			for _, w := range falseWords {
				if low == w {
					in.Cursor += len(tok)
					return Success(false)
				}
			}
			in.Rewind(mark)
			return Failure[bool](ArgumentParse("bool", &BoolParseError{Input: tok}))
		},
		SuggestionsFn: func(ctx *Context[C], in *CommandInput) []Suggestion {
			var out []Suggestion
			for _, w := range append(trueWords, falseWords...) {
				out = append(out, NewSuggestion(w))
			}
			return FilterSuggestions(out, in.PeekString())
		},
	}
}

// --- char parser -------------------------------------------------------------

// NewCharParser builds a parser accepting a single-character token.
func NewCharParser[C any]() ArgumentParser[C, rune] {
	return ArgumentParserFuncs[C, rune]{
		ParseFn: func(ctx *Context[C], in *CommandInput) ParseResult[rune] {
			mark := in.Mark()
			tok := in.PeekString()
			runes := []rune(tok)
			if len(runes) != 1 {
				in.Rewind(mark)
				return Failure[rune](ArgumentParse("char", &CharParseError{Input: tok}))
			}
			in.Cursor += len(tok)
			return Success(runes[0])
		},
	}
}

// --- string parser -----------------------------------------------------------

// StringMode selects how the string parser delimits its value (§4.2).
type StringMode int

const (
	// StringSingle consumes exactly one whitespace-delimited token.
	StringSingle StringMode = iota
	// StringQuoted consumes either a bare token or a run quoted with " or '
	// (the quotes are stripped; a backslash may escape only the run's own
	// quote character or another backslash).
	StringQuoted
	// StringGreedy consumes everything remaining in the input. A greedy
	// component must be the terminal component before any flag block
	// (§9 Open Question, decided in SPEC_FULL.md §E).
	StringGreedy
)

// NewStringParser builds a parser operating in the given StringMode.
func NewStringParser[C any](mode StringMode) ArgumentParser[C, string] {
	return ArgumentParserFuncs[C, string]{
		ParseFn: func(ctx *Context[C], in *CommandInput) ParseResult[string] {
			switch mode {
			case StringGreedy:
				if !in.HasRemainingInput() {
					return Success("")
				}
				return Success(in.ReadRemaining())
			case StringQuoted:
				return parseQuotable(in)
			default:
				return Success(in.ReadToken())
			}
		},
	}
}

func parseQuotable(in *CommandInput) ParseResult[string] {
	c, ok := in.PeekChar()
	if !ok {
		return Success("")
	}
	if c != '"' && c != '\'' {
		return Success(in.ReadToken())
	}
	mark := in.Mark()
	quote := c
	in.MoveCursor(1)
	var b strings.Builder
	escaped := false
	for {
		ch, ok := in.PeekChar()
		if !ok {
			in.Rewind(mark)
			return Failure[string](ArgumentParse("string", &CharParseError{Input: in.String()[mark:]}))
		}
		in.MoveCursor(1)
		switch {
		case escaped:
			if ch == byte(quote) || ch == '\\' {
				b.WriteByte(ch)
			} else {
				in.Rewind(mark)
				return Failure[string](ArgumentParse("string", &CharParseError{Input: string(ch)}))
			}
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == byte(quote):
			return Success(b.String())
		default:
			b.WriteByte(ch)
		}
	}
}

// --- enum parser --------------------------------------------------------------

// NewEnumParser builds a parser accepting any of variants, compared
// case-insensitively (§4.2).
func NewEnumParser[C any](variants ...string) ArgumentParser[C, string] {
	lower := make(map[string]string, len(variants))
	for _, v := range variants {
		lower[strings.ToLower(v)] = v
	}
	return ArgumentParserFuncs[C, string]{
		ParseFn: func(ctx *Context[C], in *CommandInput) ParseResult[string] {
			mark := in.Mark()
			tok := in.PeekString()
			if canon, ok := lower[strings.ToLower(tok)]; ok {
				in.Cursor += len(tok)
				return Success(canon)
			}
			in.Rewind(mark)
			return Failure[string](ArgumentParse("enum", &EnumParseError{Input: tok, Acceptable: variants}))
		},
		SuggestionsFn: func(ctx *Context[C], in *CommandInput) []Suggestion {
			out := make([]Suggestion, 0, len(variants))
			for _, v := range variants {
				out = append(out, NewSuggestion(v))
			}
			return FilterSuggestions(out, in.PeekString())
		},
	}
}

// --- duration parser -----------------------------------------------------------

// durationUnits are the recognized single-character unit suffixes, largest
// first so NewDurationParser's suggestions offer them in a stable order.
var durationUnits = []byte{'d', 'h', 'm', 's'}

// Duration is a parsed <digits><unit> sequence, §4.2.
type Duration struct {
	Days, Hours, Minutes, Seconds int
}

// IsZero reports whether every field of d is zero — §8 scenario 6 requires
// "0s" to fail to parse for exactly this reason.
func (d Duration) IsZero() bool {
	return d.Days == 0 && d.Hours == 0 && d.Minutes == 0 && d.Seconds == 0
}

// NewDurationParser builds a parser for a non-empty concatenation of
// <digits><unit> pairs, unit in {d,h,m,s}.
func NewDurationParser[C any]() ArgumentParser[C, Duration] {
	return ArgumentParserFuncs[C, Duration]{
		ParseFn: parseDuration[C],
		SuggestionsFn: func(ctx *Context[C], in *CommandInput) []Suggestion {
			return suggestDurationUnits(in.PeekString())
		},
	}
}

func parseDuration[C any](ctx *Context[C], in *CommandInput) ParseResult[Duration] {
	mark := in.Mark()
	tok := in.PeekString()
	if tok == "" {
		in.Rewind(mark)
		return Failure[Duration](ArgumentParse("duration", &DurationParseError{Input: tok}))
	}

	var d Duration
	seenUnit := map[byte]bool{}
	i := 0
	for i < len(tok) {
		start := i
		for i < len(tok) && tok[i] >= '0' && tok[i] <= '9' {
			i++
		}
		if i == start || i >= len(tok) {
			in.Rewind(mark)
			return Failure[Duration](ArgumentParse("duration", &DurationParseError{Input: tok}))
		}
		n, err := strconv.Atoi(tok[start:i])
		if err != nil {
			in.Rewind(mark)
			return Failure[Duration](ArgumentParse("duration", &DurationParseError{Input: tok}))
		}
		unit := tok[i]
		i++
		if seenUnit[unit] || !isDurationUnit(unit) {
			in.Rewind(mark)
			return Failure[Duration](ArgumentParse("duration", &DurationParseError{Input: tok}))
		}
		seenUnit[unit] = true
		switch unit {
		case 'd':
			d.Days = n
		case 'h':
			d.Hours = n
		case 'm':
			d.Minutes = n
		case 's':
			d.Seconds = n
		}
	}

	if d.IsZero() {
		in.Rewind(mark)
		return Failure[Duration](ArgumentParse("duration", &DurationParseError{Input: tok}))
	}
	in.Cursor += len(tok)
	return Success(d)
}

func isDurationUnit(b byte) bool {
	for _, u := range durationUnits {
		if u == b {
			return true
		}
	}
	return false
}

func suggestDurationUnits(partial string) []Suggestion {
	used := map[byte]bool{}
	i := 0
	for i < len(partial) {
		start := i
		for i < len(partial) && partial[i] >= '0' && partial[i] <= '9' {
			i++
		}
		if i == start || i >= len(partial) {
			break
		}
		used[partial[i]] = true
		i++
	}
	var out []Suggestion
	for _, u := range durationUnits {
		if !used[u] {
			out = append(out, NewSuggestion(partial+string(u)))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Text < out[j].Text })
	return out
}

// --- literal parser -----------------------------------------------------------

// NewLiteralParser builds the parser a literal CommandComponent uses: it
// matches name or any of aliases case-insensitively, and always returns the
// canonical name on success (§4.2).
func NewLiteralParser[C any](name string, aliases ...string) ArgumentParser[C, string] {
	accepted := map[string]struct{}{strings.ToLower(name): {}}
	for _, a := range aliases {
		accepted[strings.ToLower(a)] = struct{}{}
	}
	return ArgumentParserFuncs[C, string]{
		ParseFn: func(ctx *Context[C], in *CommandInput) ParseResult[string] {
			mark := in.Mark()
			tok := in.PeekString()
			if _, ok := accepted[strings.ToLower(tok)]; !ok {
				in.Rewind(mark)
				return Failure[string](InvalidSyntax("", name))
			}
			in.Cursor += len(tok)
			return Success(name)
		},
		SuggestionsFn: func(ctx *Context[C], in *CommandInput) []Suggestion {
			if strings.HasPrefix(strings.ToLower(name), strings.ToLower(in.PeekString())) {
				return []Suggestion{NewSuggestion(name)}
			}
			return nil
		},
	}
}
