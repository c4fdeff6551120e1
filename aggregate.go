package cmdcore

// aggregateInner is one inner parser of an AggregateParser, with its value
// type erased to `any` so a single ordered sequence can mix inner parsers
// of differing T (§4.4).
type aggregateInner[C any] struct {
	name    string
	parse   func(ctx *Context[C], in *CommandInput) ParseResult[any]
	suggest func(ctx *Context[C], in *CommandInput) []Suggestion
}

// AggregateComponent declares one inner slot of an AggregateParser, parsed
// by parser and bound under name within the AggregateParsingContext.
func AggregateComponent[C, T any](name string, parser ArgumentParser[C, T]) aggregateInner[C] {
	return aggregateInner[C]{
		name: name,
		parse: func(ctx *Context[C], in *CommandInput) ParseResult[any] {
			return MapResult(parser.Parse(ctx, in), func(v T) any { return v })
		},
		suggest: func(ctx *Context[C], in *CommandInput) []Suggestion {
			return parser.Suggestions(ctx, in)
		},
	}
}

// AggregateParsingContext exposes the values bound by inner parsers that
// have already succeeded, to the final mapper (§4.4).
type AggregateParsingContext struct {
	values map[string]any
}

// Get returns the value bound under name, if any inner parser bound one.
func (a *AggregateParsingContext) Get(name string) (any, bool) {
	v, ok := a.values[name]
	return v, ok
}

// AggregateValue type-asserts the value bound under name to T.
func AggregateValue[T any](a *AggregateParsingContext, name string) (T, bool) {
	var zero T
	raw, ok := a.Get(name)
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	return v, ok
}

// AggregateMapper combines the bound inner values into the aggregate's
// output type, after every inner parser has succeeded (§4.4).
type AggregateMapper[C, O any] func(ctx *Context[C], actx *AggregateParsingContext) ParseResult[O]

// AggregateParser is a declared-order sequence of inner component parsers
// plus a mapper producing one composite value (§4.4, the Glossary's
// "Aggregate parser"). Grounded on the familiar ArgumentBuilder.Then
// chaining idiom, generalized from tree-node composition to parser
// composition.
type AggregateParser[C, O any] struct {
	inners []aggregateInner[C]
	mapper AggregateMapper[C, O]
}

// NewAggregateParser builds an AggregateParser from inners (in declared
// order) and mapper.
func NewAggregateParser[C, O any](mapper AggregateMapper[C, O], inners ...aggregateInner[C]) *AggregateParser[C, O] {
	return &AggregateParser[C, O]{inners: inners, mapper: mapper}
}

func aggregateBindingKey(name string) string { return "aggregate#" + name }

func (p *AggregateParser[C, O]) Parse(ctx *Context[C], in *CommandInput) ParseResult[O] {
	values := map[string]any{}
	for idx, inner := range p.inners {
		if idx > 0 {
			if !in.HasRemainingInput() {
				return Failure[O](AggregateParse(inner.name, nil))
			}
			in.SkipWhitespace(1)
		}
		if in.IsEmpty(true) {
			return Failure[O](AggregateParse(inner.name, nil))
		}

		result := inner.parse(ctx, in)
		v, ok := result.Value()
		if !ok {
			return Failure[O](AggregateParse(inner.name, result.Err()))
		}
		values[inner.name] = v
		// Bind successful inner values directly into the Context's raw
		// store so that, per §8's aggregate-failure-localization property,
		// bindings of inner j<i (the ones that already succeeded) remain
		// visible even if inner i then fails.
		ctx.store[aggregateBindingKey(inner.name)] = v
	}

	actx := &AggregateParsingContext{values: values}
	return p.mapper(ctx, actx)
}

func (p *AggregateParser[C, O]) Suggestions(ctx *Context[C], in *CommandInput) []Suggestion {
	clone := in.Clone()
	for idx, inner := range p.inners {
		if idx > 0 {
			clone.SkipAllWhitespace()
		}
		if clone.IsEmpty(true) {
			return inner.suggest(ctx, clone)
		}
		result := inner.parse(ctx, clone)
		if result.IsFailure() {
			return inner.suggest(ctx, clone)
		}
	}
	return nil
}

// Pair is the default two-element tuple AggregateParser output (§4.4).
type Pair[A, B any] struct {
	First  A
	Second B
}

// NewPairParser builds an AggregateParser of two inner parsers, returning a
// Pair on success.
func NewPairParser[C, A, B any](nameA string, a ArgumentParser[C, A], nameB string, b ArgumentParser[C, B]) *AggregateParser[C, Pair[A, B]] {
	return NewAggregateParser[C, Pair[A, B]](
		func(ctx *Context[C], actx *AggregateParsingContext) ParseResult[Pair[A, B]] {
			va, _ := AggregateValue[A](actx, nameA)
			vb, _ := AggregateValue[B](actx, nameB)
			return Success(Pair[A, B]{First: va, Second: vb})
		},
		AggregateComponent(nameA, a),
		AggregateComponent(nameB, b),
	)
}

// Triplet is the default three-element tuple AggregateParser output (§4.4).
type Triplet[A, B, D any] struct {
	First  A
	Second B
	Third  D
}

// NewTripletParser builds an AggregateParser of three inner parsers,
// returning a Triplet on success.
func NewTripletParser[C, A, B, D any](
	nameA string, a ArgumentParser[C, A],
	nameB string, b ArgumentParser[C, B],
	nameD string, d ArgumentParser[C, D],
) *AggregateParser[C, Triplet[A, B, D]] {
	return NewAggregateParser[C, Triplet[A, B, D]](
		func(ctx *Context[C], actx *AggregateParsingContext) ParseResult[Triplet[A, B, D]] {
			va, _ := AggregateValue[A](actx, nameA)
			vb, _ := AggregateValue[B](actx, nameB)
			vd, _ := AggregateValue[D](actx, nameD)
			return Success(Triplet[A, B, D]{First: va, Second: vb, Third: vd})
		},
		AggregateComponent(nameA, a),
		AggregateComponent(nameB, b),
		AggregateComponent(nameD, d),
	)
}
