package cmdcore

import (
	"strconv"
	"strings"
)

// whitespace is the set of runes CommandInput treats as argument separators.
// Decided in SPEC_FULL.md §E: ASCII space and tab only, not unicode.IsSpace.
func isWhitespace(r byte) bool { return r == ' ' || r == '\t' }

// CommandInput is a cursor over a raw command line. All typed readers are
// non-consuming on failure: the Cursor is left exactly where it was found.
type CommandInput struct {
	raw    string
	Cursor int
}

// NewCommandInput creates a CommandInput over raw, with the cursor at 0.
func NewCommandInput(raw string) *CommandInput { return &CommandInput{raw: raw} }

// String returns the original raw input the CommandInput was built from.
func (in *CommandInput) String() string { return in.raw }

// HasRemainingInput reports whether any character remains unread.
func (in *CommandInput) HasRemainingInput() bool { return in.Cursor < len(in.raw) }

// IsEmpty reports whether there is nothing left to read. If ignoreWhitespace
// is true, trailing whitespace does not count as remaining input.
func (in *CommandInput) IsEmpty(ignoreWhitespace bool) bool {
	if !ignoreWhitespace {
		return !in.HasRemainingInput()
	}
	for i := in.Cursor; i < len(in.raw); i++ {
		if !isWhitespace(in.raw[i]) {
			return false
		}
	}
	return true
}

// PeekChar returns the next byte without consuming it, and whether one exists.
func (in *CommandInput) PeekChar() (byte, bool) {
	if !in.HasRemainingInput() {
		return 0, false
	}
	return in.raw[in.Cursor], true
}

// PeekString returns the next whitespace-delimited token without consuming it.
func (in *CommandInput) PeekString() string {
	end := in.Cursor
	for end < len(in.raw) && !isWhitespace(in.raw[end]) {
		end++
	}
	return in.raw[in.Cursor:end]
}

// ReadToken consumes and returns the next whitespace-delimited token.
func (in *CommandInput) ReadToken() string {
	tok := in.PeekString()
	in.Cursor += len(tok)
	return tok
}

// ReadRemaining consumes and returns everything left in the input.
func (in *CommandInput) ReadRemaining() string {
	rest := in.raw[in.Cursor:]
	in.Cursor = len(in.raw)
	return rest
}

// RemainingTokens returns the whitespace-delimited tokens not yet consumed,
// without consuming them.
func (in *CommandInput) RemainingTokens() []string {
	rest := strings.TrimFunc(in.raw[in.Cursor:], func(r rune) bool { return r == ' ' || r == '\t' })
	if rest == "" {
		return nil
	}
	return strings.FieldsFunc(rest, func(r rune) bool { return r == ' ' || r == '\t' })
}

// LastRemainingToken returns the final whitespace-delimited token of the
// remaining input, or "" if there is none.
func (in *CommandInput) LastRemainingToken() string {
	toks := in.RemainingTokens()
	if len(toks) == 0 {
		return ""
	}
	return toks[len(toks)-1]
}

// LastRemainingCharacter returns the final byte of the raw input, and whether
// the input is non-empty.
func (in *CommandInput) LastRemainingCharacter() (byte, bool) {
	if len(in.raw) == 0 {
		return 0, false
	}
	return in.raw[len(in.raw)-1], true
}

// SkipWhitespace advances the cursor over at most n whitespace characters.
func (in *CommandInput) SkipWhitespace(n int) int {
	skipped := 0
	for skipped < n && in.HasRemainingInput() && isWhitespace(in.raw[in.Cursor]) {
		in.Cursor++
		skipped++
	}
	return skipped
}

// SkipAllWhitespace advances the cursor over all immediately following
// whitespace characters, however many there are.
func (in *CommandInput) SkipAllWhitespace() int {
	start := in.Cursor
	for in.HasRemainingInput() && isWhitespace(in.raw[in.Cursor]) {
		in.Cursor++
	}
	return in.Cursor - start
}

// MoveCursor advances (or rewinds, if delta is negative) the cursor by delta,
// clamped to the input bounds. Apart from Rewind, it is the only way to move
// the cursor backwards; every reader only ever advances it.
func (in *CommandInput) MoveCursor(delta int) {
	in.Cursor += delta
	if in.Cursor < 0 {
		in.Cursor = 0
	}
	if in.Cursor > len(in.raw) {
		in.Cursor = len(in.raw)
	}
}

// Mark returns an opaque cursor position that Rewind can later restore.
func (in *CommandInput) Mark() int { return in.Cursor }

// Rewind restores the cursor to a position previously returned by Mark.
func (in *CommandInput) Rewind(mark int) { in.Cursor = mark }

// Clone returns an independent copy of in, positioned at the same cursor.
// Used by suggestion walks that need to speculatively advance through input
// without disturbing the caller's own CommandInput.
func (in *CommandInput) Clone() *CommandInput { return &CommandInput{raw: in.raw, Cursor: in.Cursor} }

// NumberRange bounds a typed numeric reader. A zero-value NumberRange has
// hasMin/hasMax both false, meaning "use the type's natural bounds".
type NumberRange[T int64 | float64] struct {
	Min, Max   T
	HasMin     bool
	HasMax     bool
}

// ReadByte tries to read the next token as an int8 within rng. On failure the
// cursor is left unchanged.
func (in *CommandInput) ReadByte(rng NumberRange[int64]) (int8, bool) {
	v, ok := in.readRangedInt(8, rng)
	return int8(v), ok
}

// ReadShort tries to read the next token as an int16 within rng.
func (in *CommandInput) ReadShort(rng NumberRange[int64]) (int16, bool) {
	v, ok := in.readRangedInt(16, rng)
	return int16(v), ok
}

// ReadInt tries to read the next token as an int32 within rng.
func (in *CommandInput) ReadInt(rng NumberRange[int64]) (int32, bool) {
	v, ok := in.readRangedInt(32, rng)
	return int32(v), ok
}

// ReadLong tries to read the next token as an int64 within rng.
func (in *CommandInput) ReadLong(rng NumberRange[int64]) (int64, bool) {
	return in.readRangedInt(64, rng)
}

func (in *CommandInput) readRangedInt(bitSize int, rng NumberRange[int64]) (int64, bool) {
	mark := in.Mark()
	tok := in.PeekString()
	i, err := strconv.ParseInt(tok, 10, bitSize)
	if err != nil {
		in.Rewind(mark)
		return 0, false
	}
	if rng.HasMin && i < rng.Min || rng.HasMax && i > rng.Max {
		in.Rewind(mark)
		return 0, false
	}
	in.Cursor += len(tok)
	return i, true
}

// ReadFloat tries to read the next token as a float32 within rng.
func (in *CommandInput) ReadFloat(rng NumberRange[float64]) (float32, bool) {
	v, ok := in.readRangedFloat(32, rng)
	return float32(v), ok
}

// ReadDouble tries to read the next token as a float64 within rng.
func (in *CommandInput) ReadDouble(rng NumberRange[float64]) (float64, bool) {
	return in.readRangedFloat(64, rng)
}

func (in *CommandInput) readRangedFloat(bitSize int, rng NumberRange[float64]) (float64, bool) {
	mark := in.Mark()
	tok := in.PeekString()
	f, err := strconv.ParseFloat(tok, bitSize)
	if err != nil {
		in.Rewind(mark)
		return 0, false
	}
	if rng.HasMin && f < rng.Min || rng.HasMax && f > rng.Max {
		in.Rewind(mark)
		return 0, false
	}
	in.Cursor += len(tok)
	return f, true
}
