package cmdcore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newFlagCtx() *Context[noSender] { return NewContext[noSender](nil, noSender{}, nil) }

func TestCommandFlagParser_LongPresenceFlag(t *testing.T) {
	p := NewCommandFlagParser[noSender](NewPresenceFlag[noSender]("verbose", "v"))
	ctx := newFlagCtx()
	in := NewCommandInput("--verbose")
	require.NoError(t, p.ParseInto(ctx, in))
	require.True(t, ctx.Flags.HasPresence("verbose"))
}

func TestCommandFlagParser_CombinedShortAliases(t *testing.T) {
	p := NewCommandFlagParser[noSender](
		NewPresenceFlag[noSender]("verbose", "v"),
		NewPresenceFlag[noSender]("force", "f"),
		NewPresenceFlag[noSender]("yes", "y"),
	)
	ctx := newFlagCtx()
	in := NewCommandInput("-vfy")
	require.NoError(t, p.ParseInto(ctx, in))
	require.True(t, ctx.Flags.HasPresence("verbose"))
	require.True(t, ctx.Flags.HasPresence("force"))
	require.True(t, ctx.Flags.HasPresence("yes"))
}

func TestCommandFlagParser_CombinedShortWithValueFlagFails(t *testing.T) {
	p := NewCommandFlagParser[noSender](
		NewPresenceFlag[noSender]("verbose", "v"),
		NewValueFlag[noSender, int32]("count", NewInt32Parser[noSender](0, 10, true, true), "c"),
	)
	ctx := newFlagCtx()
	in := NewCommandInput("-vc")
	err := p.ParseInto(ctx, in)
	require.Error(t, err)
	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	require.Equal(t, KindFlagParse, cmdErr.Kind)
	require.Equal(t, FlagNoFlagStarted.String(), cmdErr.Vars["reason"])
}

func TestCommandFlagParser_ValueFlagMissingArgument(t *testing.T) {
	p := NewCommandFlagParser[noSender](NewValueFlag[noSender, int32]("count", NewInt32Parser[noSender](0, 10, true, true), "c"))
	ctx := newFlagCtx()
	in := NewCommandInput("--count")
	err := p.ParseInto(ctx, in)
	require.Error(t, err)
	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	require.Equal(t, FlagMissingArgument.String(), cmdErr.Vars["reason"])
}

func TestCommandFlagParser_DuplicateSingleFlag(t *testing.T) {
	p := NewCommandFlagParser[noSender](NewPresenceFlag[noSender]("verbose", "v"))
	ctx := newFlagCtx()
	in := NewCommandInput("--verbose --verbose")
	err := p.ParseInto(ctx, in)
	require.Error(t, err)
	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	require.Equal(t, FlagDuplicateFlag.String(), cmdErr.Vars["reason"])
}

func TestCommandFlagParser_RepeatableFlagAccrues(t *testing.T) {
	flag := NewValueFlag[noSender, string]("tag", NewStringParser[noSender](StringSingle), "t").Repeatable()
	p := NewCommandFlagParser[noSender](flag)
	ctx := newFlagCtx()
	in := NewCommandInput("--tag a --tag b")
	require.NoError(t, p.ParseInto(ctx, in))
	require.Equal(t, []string{"a", "b"}, FlagGetAll[string](ctx.Flags, "tag"))
}

func TestCommandFlagParser_StopsAtFlagDoneSentinel(t *testing.T) {
	p := NewCommandFlagParser[noSender](NewPresenceFlag[noSender]("verbose", "v"))
	ctx := newFlagCtx()
	in := NewCommandInput("--verbose positional")
	require.NoError(t, p.ParseInto(ctx, in))
	require.Equal(t, "positional", in.PeekString())
}

func TestCommandFlagParser_UnknownFlag(t *testing.T) {
	p := NewCommandFlagParser[noSender]()
	ctx := newFlagCtx()
	in := NewCommandInput("--nope")
	err := p.ParseInto(ctx, in)
	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	require.Equal(t, FlagUnknownFlag.String(), cmdErr.Vars["reason"])
}

func TestCommandFlagParser_MidFlagSuggestionCursor(t *testing.T) {
	p := NewCommandFlagParser[noSender](NewValueFlag[noSender, string]("color", NewEnumParser[noSender]("red", "green"), "c"))
	ctx := newFlagCtx()

	// The flag's name is fully typed but its value isn't: suggestions must
	// offer the inner enum parser's completions, not flag names.
	suggestions := p.Suggestions(ctx, NewCommandInput("--color "))
	require.Equal(t, []string{"green", "red"}, sortedSuggestionTexts(suggestions))
}

func TestCommandFlagParser_SuggestionsAfterCompleteFlagOfferNextFlagNames(t *testing.T) {
	p := NewCommandFlagParser[noSender](
		NewValueFlag[noSender, string]("color", NewEnumParser[noSender]("red", "green"), "c"),
		NewPresenceFlag[noSender]("verbose", "v"),
	)
	ctx := newFlagCtx()

	suggestions := p.Suggestions(ctx, NewCommandInput("--color red "))
	require.Equal(t, []string{"--color", "--verbose"}, sortedSuggestionTexts(suggestions))
}

func TestCommandFlagParser_SuggestionsOfferFlagNames(t *testing.T) {
	p := NewCommandFlagParser[noSender](NewPresenceFlag[noSender]("verbose", "v"))
	ctx := newFlagCtx()
	in := NewCommandInput("--ver")
	suggestions := p.Suggestions(ctx, in)
	require.Equal(t, []string{"--verbose"}, sortedSuggestionTexts(suggestions))
}

// TestCommandFlagParser_LastParsedFlagIsPerContext is the concurrency-safety
// regression this state's relocation to FlagStore fixes: two Contexts
// sharing one CommandFlagParser must not observe each other's mid-flag
// suggestion cursor.
func TestCommandFlagParser_LastParsedFlagIsPerContext(t *testing.T) {
	p := NewCommandFlagParser[noSender](NewValueFlag[noSender, string]("color", NewEnumParser[noSender]("red", "green"), "c"))

	ctxA := newFlagCtx()
	inA := NewCommandInput("--color red")
	require.NoError(t, p.ParseInto(ctxA, inA))

	ctxB := newFlagCtx()
	_, hasB := p.LastParsedFlag(ctxB)
	require.False(t, hasB)

	_, hasA := p.LastParsedFlag(ctxA)
	require.True(t, hasA)
}
