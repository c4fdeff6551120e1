package cmdcore

import (
	"reflect"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// ParserParameters is a typed key/value container of parser construction
// options (§4.3): RANGE_MIN, RANGE_MAX, and any options a caller registers.
// Kept as a plain map (not CloudKey-indexed) since these are short-lived
// registration-time values, not the long-lived per-invocation Context store.
type ParserParameters map[string]any

// Recognized ParserParameters keys (§4.3).
const (
	ParamRangeMin = "cmdcore.param.range_min"
	ParamRangeMax = "cmdcore.param.range_max"
)

// ParserFactory builds an ArgumentParser from ParserParameters, erased
// behind `any` so a single ordered map can hold factories for every value
// type; ResolveParser re-asserts it to the caller's requested T.
type ParserFactory[C, T any] func(params ParserParameters) ArgumentParser[C, T]

// ParserRegistry maps a value type to a factory that builds an
// ArgumentParser for it (§4.3). One registry is shared by every command
// registered through the same CommandManager; it is mutated only during
// registration and is read-only after CommandTree.LockRegistration (§3
// Lifecycle).
type ParserRegistry[C any] struct {
	byType *linkedhashmap.Map // string (reflect type name) -> any (ParserFactory[C,T])
}

// NewParserRegistry returns an empty ParserRegistry.
func NewParserRegistry[C any]() *ParserRegistry[C] {
	return &ParserRegistry[C]{byType: linkedhashmap.New()}
}

func typeKey[T any]() string {
	var zero T
	t := reflect.TypeOf(&zero).Elem()
	// Promote primitive value types to their boxed-equivalent name so that
	// resolving a parser for e.g. `int32` transparently reaches a factory
	// registered for `int32`, matching §4.3's "primitives promote to boxed
	// type" rule (Go has no unboxed/boxed split, so this promotion is a
	// no-op beyond normalizing the lookup key through reflect.Type.String).
	return t.String()
}

// RegisterParserSupplier registers factory as the builder for values of
// type T.
func RegisterParserSupplier[C, T any](reg *ParserRegistry[C], factory ParserFactory[C, T]) {
	reg.byType.Put(typeKey[T](), factory)
}

// ResolveParser looks up and invokes the factory registered for T, or
// returns (nil, false) if none was registered — the caller decides the
// fallback (§4.3).
func ResolveParser[C, T any](reg *ParserRegistry[C], params ParserParameters) (ArgumentParser[C, T], bool) {
	raw, ok := reg.byType.Get(typeKey[T]())
	if !ok {
		return nil, false
	}
	factory, ok := raw.(ParserFactory[C, T])
	if !ok {
		return nil, false
	}
	if params == nil {
		params = ParserParameters{}
	}
	return factory(params), true
}

// AnnotationKind identifies a kind of declaration-time annotation an
// AnnotationMapper translates into ParserParameters (§4.3). The core itself
// never inspects annotations — that's reflective discovery, explicitly
// excluded (§1, §9) — but it defines the narrow interface a front-end's
// discovery layer plugs descriptors into.
type AnnotationKind string

// AnnotationMapper translates one declared annotation plus the argument's
// declared type into ParserParameters, merged at registration time.
type AnnotationMapper func(declaredType reflect.Type, annotation any) ParserParameters

// AnnotationMapperRegistry holds one AnnotationMapper per AnnotationKind.
type AnnotationMapperRegistry struct {
	mappers map[AnnotationKind]AnnotationMapper
}

// NewAnnotationMapperRegistry returns an empty AnnotationMapperRegistry.
func NewAnnotationMapperRegistry() *AnnotationMapperRegistry {
	return &AnnotationMapperRegistry{mappers: map[AnnotationKind]AnnotationMapper{}}
}

// Register adds or replaces the mapper for kind.
func (r *AnnotationMapperRegistry) Register(kind AnnotationKind, mapper AnnotationMapper) {
	r.mappers[kind] = mapper
}

// Resolve applies every registered mapper whose kind appears in
// annotations, merging their ParserParameters. annotations is a map, so when
// two mappers set the same key, which value is kept is not defined.
func (r *AnnotationMapperRegistry) Resolve(declaredType reflect.Type, annotations map[AnnotationKind]any) ParserParameters {
	merged := ParserParameters{}
	for kind, annotation := range annotations {
		mapper, ok := r.mappers[kind]
		if !ok {
			continue
		}
		for k, v := range mapper(declaredType, annotation) {
			merged[k] = v
		}
	}
	return merged
}
