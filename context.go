package cmdcore

import (
	"context"
	"reflect"

	"github.com/davecgh/go-spew/spew"
)

// CloudKey identifies a value in a Context's typed store by name and type:
// two keys with the same name but different V are distinct, per §3.
type CloudKey[V any] struct {
	name    string
	typeTag string
}

// NewCloudKey returns a new CloudKey[V] named name.
func NewCloudKey[V any](name string) CloudKey[V] {
	var zero V
	return CloudKey[V]{name: name, typeTag: reflect.TypeOf(&zero).Elem().String()}
}

func (k CloudKey[V]) storeKey() string { return k.typeTag + "#" + k.name }

// Injector supplies a value of type V for parameter injection into handlers
// that ask for it via Context.Inject, per §6.
type Injector[C, V any] func(ctx *Context[C]) (V, bool)

// injectorRegistry holds type-keyed providers, erased behind `any` since Go
// forbids heterogeneous generic maps; each entry's func is re-asserted to
// its concrete Injector[C,V] signature by ContextInject.
type injectorRegistry struct {
	providers map[string]any
}

func newInjectorRegistry() *injectorRegistry {
	return &injectorRegistry{providers: map[string]any{}}
}

// RegisterInjector registers fn as the provider for values of type V.
func RegisterInjector[C, V any](reg *injectorRegistry, fn Injector[C, V]) {
	var zero V
	reg.providers[reflect.TypeOf(&zero).Elem().String()] = fn
}

// ContextInject consults the Context's injector registry for a provider of
// type V and runs it, per §6's `context.inject(Type) -> Optional<T>`.
func ContextInject[C, V any](ctx *Context[C]) (V, bool) {
	var zero V
	key := reflect.TypeOf(&zero).Elem().String()
	raw, ok := ctx.injectors.providers[key]
	if !ok {
		return zero, false
	}
	fn, ok := raw.(Injector[C, V])
	if !ok {
		return zero, false
	}
	return fn(ctx)
}

// Context is the per-invocation key/value store, sender identity, flag
// store and injector registry threaded through one CommandTree walk. It
// embeds context.Context so handlers can respect caller cancellation and
// deadlines without the core owning any scheduling of its own (§5).
//
// A Context exists for exactly one invocation and must never be shared
// across invocations (§5 Shared state).
type Context[C any] struct {
	context.Context

	Sender C
	Flags  *FlagStore

	store     map[string]any
	injectors *injectorRegistry
}

// NewContext builds a fresh per-invocation Context for sender.
func NewContext[C any](parent context.Context, sender C, injectors *injectorRegistry) *Context[C] {
	if parent == nil {
		parent = context.Background()
	}
	if injectors == nil {
		injectors = newInjectorRegistry()
	}
	return &Context[C]{
		Context:   parent,
		Sender:    sender,
		Flags:     NewFlagStore(),
		store:     map[string]any{},
		injectors: injectors,
	}
}

// ContextPut stores value under key.
func ContextPut[C, V any](ctx *Context[C], key CloudKey[V], value V) {
	ctx.store[key.storeKey()] = value
}

// ContextGet retrieves the value stored under key.
func ContextGet[C, V any](ctx *Context[C], key CloudKey[V]) (V, bool) {
	raw, ok := ctx.store[key.storeKey()]
	if !ok {
		var zero V
		return zero, false
	}
	v, ok := raw.(V)
	return v, ok
}

// DebugDump renders every bound component and stored value in ctx via
// go-spew, for a front-end's diagnostic/"why did this resolve this way"
// command — never parsed by cmdcore itself, purely a debugging aid (§5).
func (ctx *Context[C]) DebugDump() string {
	return spew.Sdump(ctx.store)
}

// ContextComputeIfAbsent returns the value stored under key, computing and
// storing compute()'s result first if none is present yet, per §3's
// "computeIfAbsent" requirement on Context reads.
func ContextComputeIfAbsent[C, V any](ctx *Context[C], key CloudKey[V], compute func() V) V {
	if v, ok := ContextGet(ctx, key); ok {
		return v
	}
	v := compute()
	ContextPut(ctx, key, v)
	return v
}
