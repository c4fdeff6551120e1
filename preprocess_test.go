package cmdcore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProcessorChain_RunsEveryStageWhenNoneHalt(t *testing.T) {
	chain := &processorChain[noSender]{}
	calls := 0
	chain.register(func(ctx *Context[noSender]) PreprocessVerdict { calls++; return Continue })
	chain.register(func(ctx *Context[noSender]) PreprocessVerdict { calls++; return Continue })

	ctx := NewContext[noSender](nil, noSender{}, nil)
	require.True(t, chain.run(ctx))
	require.Equal(t, 2, calls)
}

func TestProcessorChain_StopsAtFirstHalt(t *testing.T) {
	chain := &processorChain[noSender]{}
	chain.register(func(ctx *Context[noSender]) PreprocessVerdict { return Halt })
	chain.register(func(ctx *Context[noSender]) PreprocessVerdict {
		t.Fatal("stage after Halt must not run")
		return Continue
	})

	ctx := NewContext[noSender](nil, noSender{}, nil)
	require.False(t, chain.run(ctx))
}

func TestProcessorChain_EmptyChainRunsToCompletion(t *testing.T) {
	chain := &processorChain[noSender]{}
	ctx := NewContext[noSender](nil, noSender{}, nil)
	require.True(t, chain.run(ctx))
}
