package cmdcore

// Mapper transforms a base parser's ParseResult[I] into ParseResult[O],
// after the base parser has already run (§4.5). MappedParser calls it only
// for a successful base result; it returns a full ParseResult, so it can
// also downgrade an upstream success into a failure (e.g. cross-field
// validation).
type Mapper[C, I, O any] func(ctx *Context[C], result ParseResult[I]) ParseResult[O]

// MappedParser wraps a base ArgumentParser and transforms its result with a
// Mapper (§4.5). Suggestions always delegate to the base parser — only a
// successful parse is ever mapped, so suggestion text (which describes
// what's typeable, not what's been parsed) stays in terms of the base.
type MappedParser[C, I, O any] struct {
	base   ArgumentParser[C, I]
	mapper Mapper[C, I, O]
}

// NewMappedParser builds a MappedParser wrapping base with mapper.
func NewMappedParser[C, I, O any](base ArgumentParser[C, I], mapper Mapper[C, I, O]) *MappedParser[C, I, O] {
	return &MappedParser[C, I, O]{base: base, mapper: mapper}
}

func (p *MappedParser[C, I, O]) Parse(ctx *Context[C], in *CommandInput) ParseResult[O] {
	result := p.base.Parse(ctx, in)
	if result.IsFailure() {
		return Failure[O](result.Err())
	}
	return p.mapper(ctx, result)
}

func (p *MappedParser[C, I, O]) Suggestions(ctx *Context[C], in *CommandInput) []Suggestion {
	return p.base.Suggestions(ctx, in)
}

// MapSuccess builds a Mapper that only transforms successful values,
// leaving a Failure unchanged — the common case, and the one satisfying
// the `map(id) = id` / `map(f).map(g) = map(g∘f)` laws of §8.
func MapSuccess[C, I, O any](f func(I) O) Mapper[C, I, O] {
	return func(_ *Context[C], result ParseResult[I]) ParseResult[O] {
		return MapResult(result, f)
	}
}

// ThenMap composes p's mapper with a further transform g, satisfying
// `baseOf(map(f).map(g)) == baseOf(map(f∘g))`: the returned MappedParser
// wraps the SAME base as p, with mapper g∘(p's mapper), not a MappedParser
// wrapping p.
func ThenMap[C, I, M, O any](p *MappedParser[C, I, M], g func(M) O) *MappedParser[C, I, O] {
	inner := p.mapper
	return NewMappedParser[C, I, O](p.base, func(ctx *Context[C], result ParseResult[I]) ParseResult[O] {
		return MapResult(inner(ctx, result), g)
	})
}
