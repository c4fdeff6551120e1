package cmdcore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCloudKey_DistinctByType(t *testing.T) {
	ctx := NewContext[noSender](nil, noSender{}, nil)
	strKey := NewCloudKey[string]("value")
	intKey := NewCloudKey[int]("value")

	ContextPut(ctx, strKey, "hello")
	ContextPut(ctx, intKey, 42)

	s, ok := ContextGet(ctx, strKey)
	require.True(t, ok)
	require.Equal(t, "hello", s)

	i, ok := ContextGet(ctx, intKey)
	require.True(t, ok)
	require.Equal(t, 42, i)
}

func TestContextGet_MissingKey(t *testing.T) {
	ctx := NewContext[noSender](nil, noSender{}, nil)
	_, ok := ContextGet(ctx, NewCloudKey[string]("missing"))
	require.False(t, ok)
}

func TestContextComputeIfAbsent_ComputesOnce(t *testing.T) {
	ctx := NewContext[noSender](nil, noSender{}, nil)
	key := NewCloudKey[int]("calls")
	calls := 0
	compute := func() int {
		calls++
		return 7
	}
	require.Equal(t, 7, ContextComputeIfAbsent(ctx, key, compute))
	require.Equal(t, 7, ContextComputeIfAbsent(ctx, key, compute))
	require.Equal(t, 1, calls)
}

func TestContextInject_ResolvesRegisteredProvider(t *testing.T) {
	injectors := newInjectorRegistry()
	RegisterInjector[noSender, string](injectors, func(ctx *Context[noSender]) (string, bool) {
		return "injected", true
	})
	ctx := NewContext[noSender](nil, noSender{}, injectors)

	v, ok := ContextInject[noSender, string](ctx)
	require.True(t, ok)
	require.Equal(t, "injected", v)
}

func TestContextInject_NoProviderReturnsFalse(t *testing.T) {
	ctx := NewContext[noSender](nil, noSender{}, nil)
	_, ok := ContextInject[noSender, int](ctx)
	require.False(t, ok)
}
