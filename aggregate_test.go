package cmdcore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPairParser_ParsesBothInners(t *testing.T) {
	p := NewPairParser[noSender]("x", NewInt32Parser[noSender](0, 100, true, true), "y", NewInt32Parser[noSender](0, 100, true, true))
	ctx := NewContext[noSender](nil, noSender{}, nil)
	r := p.Parse(ctx, NewCommandInput("3 4"))
	v, ok := r.Value()
	require.True(t, ok)
	require.Equal(t, Pair[int32, int32]{First: 3, Second: 4}, v)
}

func TestAggregateParser_FailureLocalizesToFailingInner(t *testing.T) {
	p := NewPairParser[noSender]("x", NewInt32Parser[noSender](0, 100, true, true), "y", NewInt32Parser[noSender](0, 100, true, true))
	ctx := NewContext[noSender](nil, noSender{}, nil)
	r := p.Parse(ctx, NewCommandInput("3 not-a-number"))
	require.True(t, r.IsFailure())

	var aggErr *CommandError
	require.ErrorAs(t, r.Err(), &aggErr)
	require.Equal(t, KindAggregateParse, aggErr.Kind)
	require.Equal(t, "y", aggErr.Vars["component"])

	// §8 aggregate-failure-localization: the first inner's binding survives
	// even though the second inner failed.
	v, ok := ctx.store[aggregateBindingKey("x")]
	require.True(t, ok)
	require.EqualValues(t, 3, v)
}

func TestAggregateParser_MissingInputFailsLastInner(t *testing.T) {
	p := NewPairParser[noSender]("x", NewInt32Parser[noSender](0, 100, true, true), "y", NewInt32Parser[noSender](0, 100, true, true))
	ctx := NewContext[noSender](nil, noSender{}, nil)
	r := p.Parse(ctx, NewCommandInput("3"))
	require.True(t, r.IsFailure())
	var aggErr *CommandError
	require.ErrorAs(t, r.Err(), &aggErr)
	require.Equal(t, "y", aggErr.Vars["component"])
	require.Equal(t, "MISSING_INPUT", aggErr.Vars["reason"])
}

func TestTripletParser_ParsesThreeInners(t *testing.T) {
	p := NewTripletParser[noSender](
		"x", NewInt32Parser[noSender](0, 100, true, true),
		"y", NewInt32Parser[noSender](0, 100, true, true),
		"z", NewInt32Parser[noSender](0, 100, true, true),
	)
	ctx := NewContext[noSender](nil, noSender{}, nil)
	r := p.Parse(ctx, NewCommandInput("1 2 3"))
	v, ok := r.Value()
	require.True(t, ok)
	require.Equal(t, Triplet[int32, int32, int32]{First: 1, Second: 2, Third: 3}, v)
}

func TestAggregateParser_SuggestionsDelegateToFailingInner(t *testing.T) {
	p := NewPairParser[noSender]("x", NewInt32Parser[noSender](0, 100, true, true), "y", NewEnumParser[noSender]("red", "green"))
	ctx := NewContext[noSender](nil, noSender{}, nil)
	suggestions := p.Suggestions(ctx, NewCommandInput("3 re"))
	require.Equal(t, []string{"red"}, sortedSuggestionTexts(suggestions))
}
