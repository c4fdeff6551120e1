package cmdcore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buildSuggestTree(t *testing.T, commands ...*Command[permSender]) *SuggestionFactory[permSender] {
	t.Helper()
	tree := NewCommandTree[permSender]()
	for _, c := range commands {
		require.NoError(t, tree.RegisterCommand(c))
	}
	return NewSuggestionFactory(tree)
}

func TestSuggestionFactory_LiteralFanOutOnSharedPrefix(t *testing.T) {
	ping := NewCommand[permSender](LiteralComponent[permSender]("ping")).Handles(func(ctx *Context[permSender]) error { return nil })
	pong := NewCommand[permSender](LiteralComponent[permSender]("pong")).Handles(func(ctx *Context[permSender]) error { return nil })
	factory := buildSuggestTree(t, ping, pong)

	ctx := NewContext[permSender](nil, permSender{}, nil)
	suggestions := factory.Suggest(ctx, NewCommandInput("p"))
	require.Equal(t, []string{"ping", "pong"}, sortedSuggestionTexts(suggestions))
}

func TestSuggestionFactory_PermissionGatedChildExcluded(t *testing.T) {
	kick := NewCommand[permSender](LiteralComponent[permSender]("kick")).
		RequiresPermission(func(s permSender) bool { return s.Has("admin") }).
		Handles(func(ctx *Context[permSender]) error { return nil })
	kill := NewCommand[permSender](LiteralComponent[permSender]("kill")).
		Handles(func(ctx *Context[permSender]) error { return nil })
	factory := buildSuggestTree(t, kick, kill)

	ctx := NewContext[permSender](nil, permSender{perms: map[string]bool{}}, nil)
	suggestions := factory.Suggest(ctx, NewCommandInput("k"))
	require.Equal(t, []string{"kill"}, sortedSuggestionTexts(suggestions))

	adminCtx := NewContext[permSender](nil, permSender{perms: map[string]bool{"admin": true}}, nil)
	adminSuggestions := factory.Suggest(adminCtx, NewCommandInput("k"))
	require.Equal(t, []string{"kick", "kill"}, sortedSuggestionTexts(adminSuggestions))
}

func TestSuggestionFactory_TypedChildSuggestionsAfterLiteral(t *testing.T) {
	color := NewCommand[permSender](LiteralComponent[permSender]("color")).
		Then(RequiredComponent[permSender, string]("c", NewEnumParser[permSender]("red", "green")).Build()).
		Handles(func(ctx *Context[permSender]) error { return nil })
	factory := buildSuggestTree(t, color)

	ctx := NewContext[permSender](nil, permSender{}, nil)
	suggestions := factory.Suggest(ctx, NewCommandInput("color r"))
	require.Equal(t, []string{"red"}, sortedSuggestionTexts(suggestions))
}

func TestSuggestionFactory_MidFlagSuggestionsIntegrateWithFlagsComponent(t *testing.T) {
	flagParser := NewCommandFlagParser[permSender](
		NewValueFlag[permSender, string]("target", NewEnumParser[permSender]("red", "green"), "t"),
	)
	build := NewCommand[permSender](LiteralComponent[permSender]("build")).
		Then(NewFlagsComponent[permSender]("flags", flagParser)).
		Handles(func(ctx *Context[permSender]) error { return nil })
	factory := buildSuggestTree(t, build)

	ctx := NewContext[permSender](nil, permSender{}, nil)
	suggestions := factory.Suggest(ctx, NewCommandInput("build --target "))
	require.Equal(t, []string{"green", "red"}, sortedSuggestionTexts(suggestions))
}

// TestSuggestionFactory_Monotonicity covers the §8 "Suggestion monotonicity"
// property: narrowing the typed prefix only ever narrows (never grows or
// changes the membership of) the suggestion set.
func TestSuggestionFactory_Monotonicity(t *testing.T) {
	alpha := NewCommand[permSender](LiteralComponent[permSender]("alpha")).Handles(func(ctx *Context[permSender]) error { return nil })
	album := NewCommand[permSender](LiteralComponent[permSender]("album")).Handles(func(ctx *Context[permSender]) error { return nil })
	factory := buildSuggestTree(t, alpha, album)

	ctx := NewContext[permSender](nil, permSender{}, nil)
	wide := sortedSuggestionTexts(factory.Suggest(ctx, NewCommandInput("al")))
	require.Equal(t, []string{"album", "alpha"}, wide)

	narrow := sortedSuggestionTexts(factory.Suggest(ctx, NewCommandInput("alp")))
	require.Equal(t, []string{"alpha"}, narrow)

	for _, text := range narrow {
		require.Contains(t, wide, text)
	}
}
