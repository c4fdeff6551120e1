package cmdcore

import (
	pkgerrors "github.com/pkg/errors"
	"github.com/tliron/commonlog"
)

// ErrRethrow is returned by an ExceptionHandler to signal that lookup should
// continue to the next matching handler in the chain (§4.8 "rethrow").
var ErrRethrow = pkgerrors.New("cmdcore: rethrow to next exception handler")

// ExceptionHandler reacts to a *CommandError of a given kind. Returning
// ErrRethrow causes the chain to fall through to the next handler
// registered for the same kind, in registration order.
type ExceptionHandler[C any] func(ctx *Context[C], err *CommandError) error

// ExceptionController is a prioritized chain of handlers keyed by
// ErrorKind (§4.8). It is the one legitimate logging seam on the failure
// path: a handler unhandled by every registered chain falls through to a
// sink that logs via commonlog and reports a generic internal-error
// outcome.
type ExceptionController[C any] struct {
	chains map[ErrorKind][]ExceptionHandler[C]
	log    commonlog.Logger
}

// NewExceptionController returns an ExceptionController with no handlers
// registered, logging unhandled failures under the "cmdcore.exception" name.
func NewExceptionController[C any]() *ExceptionController[C] {
	return &ExceptionController[C]{
		chains: map[ErrorKind][]ExceptionHandler[C]{},
		log:    commonlog.GetLogger("cmdcore.exception"),
	}
}

// Register appends handler to the chain for kind. Handlers run in
// registration order; a handler may return ErrRethrow to defer to the next.
func (e *ExceptionController[C]) Register(kind ErrorKind, handler ExceptionHandler[C]) {
	e.chains[kind] = append(e.chains[kind], handler)
}

// Handle unwraps a completion-exception cause (if err came wrapped in one),
// then walks the chain registered for err's Kind in priority order. If no
// handler claims it (or every handler rethrows), Handle falls through to the
// sink: log the error with its stack (when present) and return a generic
// internal-error *CommandError.
func (e *ExceptionController[C]) Handle(ctx *Context[C], err error) error {
	if ce, ok := err.(*CompletionError); ok {
		err = ce.Cause
	}

	cmdErr, ok := err.(*CommandError)
	if !ok {
		cmdErr = Internal(err)
	}

	for _, handler := range e.chains[cmdErr.Kind] {
		handleErr := handler(ctx, cmdErr)
		if handleErr == nil {
			return nil
		}
		if handleErr != ErrRethrow {
			return handleErr
		}
	}

	return e.sink(cmdErr)
}

func (e *ExceptionController[C]) sink(cmdErr *CommandError) error {
	if st, ok := cmdErr.Cause().(interface{ StackTrace() pkgerrors.StackTrace }); ok {
		e.log.Errorf("unhandled %s: %+v (stack: %+v)", cmdErr.Kind, cmdErr, st.StackTrace())
	} else {
		e.log.Errorf("unhandled %s: %+v", cmdErr.Kind, cmdErr)
	}
	return &CommandError{Kind: KindInternal, Caption: "cmdcore.caption.internal", Vars: Vars{"reason": "unhandled"}, cause: cmdErr}
}
