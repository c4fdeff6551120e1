package cmdcore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExceptionController_FirstHandlerClaims(t *testing.T) {
	ctrl := NewExceptionController[noSender]()
	called := 0
	ctrl.Register(KindNoPermission, func(ctx *Context[noSender], err *CommandError) error {
		called++
		return nil
	})
	ctrl.Register(KindNoPermission, func(ctx *Context[noSender], err *CommandError) error {
		t.Fatal("second handler must not run once the first claims the error")
		return nil
	})

	ctx := NewContext[noSender](nil, noSender{}, nil)
	err := ctrl.Handle(ctx, NoPermission("kick", "command"))
	require.NoError(t, err)
	require.Equal(t, 1, called)
}

func TestExceptionController_RethrowFallsThroughToNextHandler(t *testing.T) {
	ctrl := NewExceptionController[noSender]()
	ctrl.Register(KindNoPermission, func(ctx *Context[noSender], err *CommandError) error {
		return ErrRethrow
	})
	second := false
	ctrl.Register(KindNoPermission, func(ctx *Context[noSender], err *CommandError) error {
		second = true
		return nil
	})

	ctx := NewContext[noSender](nil, noSender{}, nil)
	err := ctrl.Handle(ctx, NoPermission("kick", "command"))
	require.NoError(t, err)
	require.True(t, second)
}

func TestExceptionController_UnhandledFallsBackToInternalSink(t *testing.T) {
	ctrl := NewExceptionController[noSender]()
	ctx := NewContext[noSender](nil, noSender{}, nil)
	err := ctrl.Handle(ctx, NoSuchCommand("frobnicate"))
	require.Error(t, err)
	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	require.Equal(t, KindInternal, cmdErr.Kind)
}

func TestExceptionController_NonCommandErrorWrappedAsInternal(t *testing.T) {
	ctrl := NewExceptionController[noSender]()
	seenKind := ErrorKind(-1)
	ctrl.Register(KindInternal, func(ctx *Context[noSender], err *CommandError) error {
		seenKind = err.Kind
		return nil
	})

	ctx := NewContext[noSender](nil, noSender{}, nil)
	require.NoError(t, ctrl.Handle(ctx, errors.New("boom")))
	require.Equal(t, KindInternal, seenKind)
}

func TestExceptionController_UnwrapsCompletionError(t *testing.T) {
	ctrl := NewExceptionController[noSender]()
	seen := false
	ctrl.Register(KindArgumentParse, func(ctx *Context[noSender], err *CommandError) error {
		seen = true
		return nil
	})

	wrapped := &CompletionError{Cause: ArgumentParse("int", &NumberParseError{Input: "x"})}
	ctx := NewContext[noSender](nil, noSender{}, nil)
	require.NoError(t, ctrl.Handle(ctx, wrapped))
	require.True(t, seen)
}
