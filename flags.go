package cmdcore

import (
	"strings"

	"github.com/emirpasic/gods/sets/linkedhashset"
)

// FlagMode distinguishes a flag that may only appear once from one that may
// repeat (§3, §4.7).
type FlagMode int

const (
	// FlagSingle flags may appear at most once; a second occurrence is a
	// DUPLICATE_FLAG error.
	FlagSingle FlagMode = iota
	// FlagRepeatable flags may appear any number of times. Value flags
	// append each occurrence; presence flags just dedupe.
	FlagRepeatable
)

// CommandFlag is a named optional parameter introduced by `--name` or `-x`
// (§3, §4.7). Its value type is erased behind parseInner/suggestInner so
// that flags of differing inner types can live in one CommandFlagParser;
// use NewPresenceFlag or NewValueFlag to build one.
type CommandFlag[C any] struct {
	Name        string
	Aliases     []string // single-character, case-insensitive, unique per parser
	Description string
	Permission  func(C) bool
	Mode        FlagMode

	hasInner     bool
	parseInner   func(ctx *Context[C], in *CommandInput) ParseResult[any]
	suggestInner func(ctx *Context[C], in *CommandInput) []Suggestion
}

// HasInner reports whether the flag takes a value (vs. being presence-only).
func (f *CommandFlag[C]) HasInner() bool { return f.hasInner }

func mustValidateFlagDescriptor(name string, aliases []string) {
	if err := ValidateFlagDescriptor(FlagDescriptor{Name: name, Aliases: aliases}); err != nil {
		panic("cmdcore: " + err.Error())
	}
}

// NewPresenceFlag builds a flag whose presence alone is its value.
func NewPresenceFlag[C any](name string, aliases ...string) *CommandFlag[C] {
	mustValidateFlagDescriptor(name, aliases)
	return &CommandFlag[C]{Name: name, Aliases: aliases}
}

// NewValueFlag builds a flag whose inner parser consumes the token(s)
// following it.
func NewValueFlag[C, T any](name string, parser ArgumentParser[C, T], aliases ...string) *CommandFlag[C] {
	mustValidateFlagDescriptor(name, aliases)
	return &CommandFlag[C]{
		Name:     name,
		Aliases:  aliases,
		hasInner: true,
		parseInner: func(ctx *Context[C], in *CommandInput) ParseResult[any] {
			return MapResult(parser.Parse(ctx, in), func(v T) any { return v })
		},
		suggestInner: func(ctx *Context[C], in *CommandInput) []Suggestion {
			return parser.Suggestions(ctx, in)
		},
	}
}

// WithDescription sets f.Description and returns f for chaining.
func (f *CommandFlag[C]) WithDescription(d string) *CommandFlag[C] { f.Description = d; return f }

// WithPermission sets f.Permission and returns f for chaining.
func (f *CommandFlag[C]) WithPermission(p func(C) bool) *CommandFlag[C] { f.Permission = p; return f }

// Repeatable sets f.Mode to FlagRepeatable and returns f for chaining.
func (f *CommandFlag[C]) Repeatable() *CommandFlag[C] { f.Mode = FlagRepeatable; return f }

// FlagStore records which flags were present and their parsed values for
// one invocation. Keyed by canonical flag name since flag names are unique
// within a parser (§4.7); held directly on Context so it need not be
// parameterized over the sender type.
type FlagStore struct {
	presence *linkedhashset.Set
	values   map[string][]any

	// lastParsedFlag records, after a successful value-flag parse this
	// invocation, which flag (erased to `any`, the owning CommandFlagParser[C]
	// re-asserts it) was just filled — the §4.7 cursor-contract state. It
	// lives here, not on the shared CommandFlagParser, because the parser is
	// part of the read-only-after-registration tree and is reused
	// concurrently across invocations (§5); FlagStore is fresh per Context.
	lastParsedFlag any
}

// NewFlagStore returns an empty FlagStore.
func NewFlagStore() *FlagStore {
	return &FlagStore{presence: linkedhashset.New(), values: map[string][]any{}}
}

// AddPresenceFlag records that flag name was present. REPEATABLE presence
// flags just dedupe via the underlying set.
func (s *FlagStore) AddPresenceFlag(name string) { s.presence.Add(name) }

// HasPresence reports whether a presence (or value) flag named name was seen.
func (s *FlagStore) HasPresence(name string) bool {
	return s.presence.Contains(name) || len(s.values[name]) > 0
}

// AddValueFlag appends value under flag name. REPEATABLE value flags accrue
// every occurrence; FlagSingle flags are only ever called once (duplicates
// are rejected earlier by CommandFlagParser).
func (s *FlagStore) AddValueFlag(name string, value any) {
	s.values[name] = append(s.values[name], value)
}

// Get returns the latest value recorded for flag name.
func (s *FlagStore) Get(name string) (any, bool) {
	vs := s.values[name]
	if len(vs) == 0 {
		return nil, false
	}
	return vs[len(vs)-1], true
}

// GetAll returns every value recorded for a REPEATABLE flag named name, in
// occurrence order.
func (s *FlagStore) GetAll(name string) []any { return s.values[name] }

// FlagGet type-asserts the latest value stored for name to T.
func FlagGet[T any](s *FlagStore, name string) (T, bool) {
	var zero T
	raw, ok := s.Get(name)
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	return v, ok
}

// FlagGetAll type-asserts every value stored for a REPEATABLE flag named name.
func FlagGetAll[T any](s *FlagStore, name string) []T {
	raw := s.GetAll(name)
	out := make([]T, 0, len(raw))
	for _, r := range raw {
		if v, ok := r.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// CommandFlagParser owns a declared set of CommandFlag values and parses a
// run of flag tokens as a single unit at the point in a command where flags
// are admitted (§4.7). It is the subtlest part of the system: it implements
// a small state machine over --name / -x / -xyz tokens, interleaved with
// positional arguments by terminating (without consuming) on the first
// token that isn't a recognized flag.
type CommandFlagParser[C any] struct {
	byName  map[string]*CommandFlag[C]
	byAlias map[string]*CommandFlag[C]
	order   []*CommandFlag[C]
}

// NewCommandFlagParser builds a CommandFlagParser from flags. Aliases must
// be unique (case-insensitively) across every flag.
func NewCommandFlagParser[C any](flags ...*CommandFlag[C]) *CommandFlagParser[C] {
	p := &CommandFlagParser[C]{byName: map[string]*CommandFlag[C]{}, byAlias: map[string]*CommandFlag[C]{}}
	for _, f := range flags {
		p.byName[strings.ToLower(f.Name)] = f
		for _, a := range f.Aliases {
			p.byAlias[strings.ToLower(a)] = f
		}
		p.order = append(p.order, f)
	}
	return p
}

// Flags returns the declared flags in registration order.
func (p *CommandFlagParser[C]) Flags() []*CommandFlag[C] { return p.order }

func (p *CommandFlagParser[C]) byCanonicalName(name string) (*CommandFlag[C], bool) {
	f, ok := p.byName[strings.ToLower(name)]
	return f, ok
}

func (p *CommandFlagParser[C]) byCanonicalAlias(alias string) (*CommandFlag[C], bool) {
	f, ok := p.byAlias[strings.ToLower(alias)]
	return f, ok
}

// ParseInto consumes as many recognized flag tokens as it can from in,
// starting at the current cursor, writing presence/value entries directly
// into ctx.Flags. It stops — without consuming the offending token — at the
// first token that is not `--name` or `-x...`, per §4.7's flag-done
// sentinel. Returns the first structural error encountered, if any.
func (p *CommandFlagParser[C]) ParseInto(ctx *Context[C], in *CommandInput) error {
	for {
		in.SkipAllWhitespace()
		if !in.HasRemainingInput() {
			return nil
		}
		tok := in.PeekString()
		if !strings.HasPrefix(tok, "-") || tok == "-" {
			return nil // flag-done sentinel: leave token for the positional walk
		}

		mark := in.Mark()
		var err error
		switch {
		case strings.HasPrefix(tok, "--"):
			err = p.parseLong(ctx, in, tok)
		default:
			err = p.parseShort(ctx, in, tok)
		}
		if err != nil {
			in.Rewind(mark)
			return err
		}
	}
}

func (p *CommandFlagParser[C]) parseLong(ctx *Context[C], in *CommandInput, tok string) error {
	name := tok[2:]
	in.ReadToken()
	flag, ok := p.byCanonicalName(name)
	if !ok {
		return FlagParse(FlagUnknownFlag, tok)
	}
	return p.consumeFlag(ctx, in, flag, name)
}

func (p *CommandFlagParser[C]) parseShort(ctx *Context[C], in *CommandInput, tok string) error {
	aliases := tok[1:]
	// A combined short form -xyz: each char is a presence-only alias in
	// left-to-right order. A single alias -x may carry an inner value.
	if len(aliases) == 1 {
		in.ReadToken()
		flag, ok := p.byCanonicalAlias(aliases)
		if !ok {
			return FlagParse(FlagUnknownFlag, tok)
		}
		return p.consumeFlag(ctx, in, flag, flag.Name)
	}

	in.ReadToken()
	for i := 0; i < len(aliases); i++ {
		alias := string(aliases[i])
		flag, ok := p.byCanonicalAlias(alias)
		if !ok {
			return FlagParse(FlagUnknownFlag, tok)
		}
		if flag.HasInner() {
			return FlagParse(FlagNoFlagStarted, tok)
		}
		if err := p.consumePresence(ctx, flag); err != nil {
			return err
		}
	}
	return nil
}

func (p *CommandFlagParser[C]) consumeFlag(ctx *Context[C], in *CommandInput, flag *CommandFlag[C], token string) error {
	if flag.Permission != nil && !flag.Permission(ctx.Sender) {
		return FlagParse(FlagNoPermission, flag.Name)
	}
	if !flag.HasInner() {
		return p.consumePresence(ctx, flag)
	}

	if flag.Mode != FlagRepeatable && ctx.Flags.HasPresence(flag.Name) {
		return FlagParse(FlagDuplicateFlag, token)
	}
	if !in.HasRemainingInput() || in.IsEmpty(true) {
		return FlagParse(FlagMissingArgument, flag.Name)
	}
	in.SkipAllWhitespace()
	if !in.HasRemainingInput() {
		return FlagParse(FlagMissingArgument, flag.Name)
	}

	result := flag.parseInner(ctx, in)
	v, ok := result.Value()
	if !ok {
		return result.Err()
	}
	ctx.Flags.AddValueFlag(flag.Name, v)
	ctx.Flags.lastParsedFlag = flag
	return nil
}

func (p *CommandFlagParser[C]) consumePresence(ctx *Context[C], flag *CommandFlag[C]) error {
	if flag.Mode != FlagRepeatable && ctx.Flags.HasPresence(flag.Name) {
		return FlagParse(FlagDuplicateFlag, flag.Name)
	}
	ctx.Flags.AddPresenceFlag(flag.Name)
	return nil
}

// LastParsedFlag returns the flag most recently filled by a value parse this
// invocation (read off ctx.Flags, not p itself — see FlagStore.lastParsedFlag),
// used by the suggestion walk's mid-flag completion (§4.7, §4.9).
func (p *CommandFlagParser[C]) LastParsedFlag(ctx *Context[C]) (*CommandFlag[C], bool) {
	flag, ok := ctx.Flags.lastParsedFlag.(*CommandFlag[C])
	return flag, ok
}

// FlagsComponent wraps a CommandFlagParser as a single componentParser, so a
// flags block takes one position in a Command's component sequence just
// like any positional argument (§4.7: "a CommandFlagParser ... is itself a
// positional parser invoked as a whole unit").
type FlagsComponent[C any] struct {
	name   string
	parser *CommandFlagParser[C]
}

// NewFlagsComponent wraps parser as a component named name (used only for
// diagnostics; flag tokens themselves carry their own names).
func NewFlagsComponent[C any](name string, parser *CommandFlagParser[C]) *FlagsComponent[C] {
	return &FlagsComponent[C]{name: name, parser: parser}
}

func (f *FlagsComponent[C]) parseErased(ctxAny any, in *CommandInput) (any, error) {
	ctx := ctxAny.(*Context[C])
	if err := f.parser.ParseInto(ctx, in); err != nil {
		return nil, err
	}
	return ctx.Flags, nil
}

func (f *FlagsComponent[C]) suggestErased(ctxAny any, in *CommandInput) []Suggestion {
	ctx := ctxAny.(*Context[C])
	return f.parser.Suggestions(ctx, in)
}

func (f *FlagsComponent[C]) isLiteral() bool                      { return false }
func (f *FlagsComponent[C]) literalTokens() []string              { return nil }
func (f *FlagsComponent[C]) isGreedyString() bool                 { return false }
func (f *FlagsComponent[C]) isFlagsBlock() bool                   { return true }
func (f *FlagsComponent[C]) componentName() string                { return f.name }
func (f *FlagsComponent[C]) required() bool                       { return true }
func (f *FlagsComponent[C]) typeTag() string                      { return "cmdcore.flags#" + f.name }
func (f *FlagsComponent[C]) defaultErased() (value any, has bool) { return nil, false }

// Suggestions walks already-complete flag tokens the same way ParseInto
// does — but never fails — stopping at the first token still being typed,
// and returns completions for it: flag names/aliases if the cursor sits at a
// fresh `-`/`--` token, or a value flag's own inner suggestions if its name
// is already fully typed but its value isn't (§4.7's cursor contract, §4.9).
// Unlike ParseInto it does not mutate ctx.Flags — a suggestion walk must be
// side-effect free since it may run speculatively over several sibling
// components (§4.9).
func (p *CommandFlagParser[C]) Suggestions(ctx *Context[C], in *CommandInput) []Suggestion {
	for {
		in.SkipAllWhitespace()
		if !in.HasRemainingInput() {
			return p.suggestFlagNames(ctx, "")
		}
		tok := in.PeekString()
		if !strings.HasPrefix(tok, "-") || tok == "-" {
			return nil // positional token under the cursor: not this parser's concern
		}

		// midToken: the token under the cursor runs to the end of input, so
		// the sender is still typing its name rather than having finished it
		// and moved on.
		midToken := in.Cursor+len(tok) == len(in.String())
		if midToken {
			return p.suggestFlagNames(ctx, tok)
		}

		if strings.HasPrefix(tok, "--") {
			flag, ok := p.byCanonicalName(tok[2:])
			if !ok {
				return p.suggestFlagNames(ctx, tok)
			}
			if suggestions, done := p.stepValueFlagForSuggest(ctx, in, flag); done {
				return suggestions
			}
			continue
		}

		aliases := tok[1:]
		if len(aliases) != 1 {
			return p.suggestFlagNames(ctx, tok) // combined short form: no deeper completion
		}
		flag, ok := p.byCanonicalAlias(aliases)
		if !ok {
			return p.suggestFlagNames(ctx, tok)
		}
		if suggestions, done := p.stepValueFlagForSuggest(ctx, in, flag); done {
			return suggestions
		}
	}
}

// stepValueFlagForSuggest consumes one already-named flag's token and, for a
// value flag, its value if one is present. It reports (suggestions, true)
// when the walk should stop and return suggestions immediately — either
// because the flag's value hasn't been typed yet, or because typing it
// failed — and (nil, false) to keep walking the remaining tokens.
func (p *CommandFlagParser[C]) stepValueFlagForSuggest(ctx *Context[C], in *CommandInput, flag *CommandFlag[C]) ([]Suggestion, bool) {
	in.ReadToken()
	if !flag.HasInner() {
		return nil, false
	}
	in.SkipAllWhitespace()
	if in.IsEmpty(true) {
		return flag.suggestInner(ctx, in), true
	}
	result := flag.parseInner(ctx, in)
	if _, ok := result.Value(); !ok {
		return flag.suggestInner(ctx, in), true
	}
	return nil, false
}

func (p *CommandFlagParser[C]) suggestFlagNames(ctx *Context[C], token string) []Suggestion {
	var out []Suggestion
	for _, f := range p.order {
		if f.Permission != nil && !f.Permission(ctx.Sender) {
			continue
		}
		out = append(out, NewSuggestion("--"+f.Name))
		for _, a := range f.Aliases {
			out = append(out, NewSuggestion("-"+a))
		}
	}
	return FilterSuggestions(DedupSuggestions(out), token)
}
