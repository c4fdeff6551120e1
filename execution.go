package cmdcore

import (
	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"
)

// Promise is a lightweight value-or-failure continuation type (§5 "a promise
// abstraction (value-or-failure, continuations thenCompose and thenApply)").
// It is always built already resolved, from a computed value
// (ResolvedPromise) or a known failure (FailedPromise); ThenApply/ThenCompose
// run their continuation immediately against that value, since cmdcore never
// hands back a still-pending Promise across an API boundary.
type Promise[T any] struct {
	value T
	err   error
}

// ResolvedPromise wraps an already-computed value.
func ResolvedPromise[T any](value T) Promise[T] { return Promise[T]{value: value} }

// FailedPromise wraps an already-known failure.
func FailedPromise[T any](err error) Promise[T] { return Promise[T]{err: err} }

// Get returns the held value and error (exactly one of which is the zero
// value).
func (p Promise[T]) Get() (T, error) { return p.value, p.err }

// ThenApply runs f against a successful value, propagating failure
// unchanged — the promise analogue of MapResult.
func ThenApply[T, U any](p Promise[T], f func(T) U) Promise[U] {
	if p.err != nil {
		return FailedPromise[U](p.err)
	}
	return ResolvedPromise(f(p.value))
}

// ThenCompose chains a Promise-returning continuation onto a successful
// value, propagating failure unchanged.
func ThenCompose[T, U any](p Promise[T], f func(T) Promise[U]) Promise[U] {
	if p.err != nil {
		return FailedPromise[U](p.err)
	}
	return f(p.value)
}

// ExecutionCoordinator schedules the two phases of handling one command
// line (§4.10): parsing (the CommandTree walk) and handler invocation. Both
// operations are synchronous Go funcs; an Asynchronous coordinator is free
// to run them on a worker and block the returned Promise's resolution on
// that worker's completion — cmdcore's own API stays synchronous-looking
// because nothing it exposes hands back a pending Promise (§5).
type ExecutionCoordinator interface {
	ExecuteParse(work func() error) error
	ExecuteHandler(work func() error) error
}

// SimpleExecutionCoordinator runs both phases synchronously on the calling
// goroutine (§4.10 "Simple").
type SimpleExecutionCoordinator struct{}

// NewSimpleExecutionCoordinator returns a SimpleExecutionCoordinator.
func NewSimpleExecutionCoordinator() *SimpleExecutionCoordinator { return &SimpleExecutionCoordinator{} }

func (s *SimpleExecutionCoordinator) ExecuteParse(work func() error) error   { return work() }
func (s *SimpleExecutionCoordinator) ExecuteHandler(work func() error) error { return work() }

// AsynchronousExecutionCoordinator runs parse and handler work on supplied
// executors (§4.10 "Asynchronous"); each phase runs inside an errgroup of
// one so a handler panic is recovered and turned into a COMMAND_EXECUTION
// error rather than crashing the goroutine it ran on.
type AsynchronousExecutionCoordinator struct {
	parseExecutor   func(func())
	handlerExecutor func(func())
	log             commonlog.Logger
}

// AsyncOption configures an AsynchronousExecutionCoordinator.
type AsyncOption func(*AsynchronousExecutionCoordinator)

// WithParseExecutor sets the executor parse work is submitted to (default:
// a fresh goroutine per call).
func WithParseExecutor(executor func(func())) AsyncOption {
	return func(a *AsynchronousExecutionCoordinator) { a.parseExecutor = executor }
}

// WithHandlerExecutor sets the executor handler work is submitted to
// (default: the same fresh-goroutine-per-call policy as parse).
func WithHandlerExecutor(executor func(func())) AsyncOption {
	return func(a *AsynchronousExecutionCoordinator) { a.handlerExecutor = executor }
}

func goroutinePerCall(fn func()) { go fn() }

// NewAsynchronousExecutionCoordinator returns an AsynchronousExecutionCoordinator;
// by default both phases run on a fresh goroutine per call.
func NewAsynchronousExecutionCoordinator(opts ...AsyncOption) *AsynchronousExecutionCoordinator {
	a := &AsynchronousExecutionCoordinator{
		parseExecutor:   goroutinePerCall,
		handlerExecutor: goroutinePerCall,
		log:             commonlog.GetLogger("cmdcore.execution"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *AsynchronousExecutionCoordinator) run(executor func(func()), work func() error) error {
	var g errgroup.Group
	g.Go(func() error {
		result := make(chan error, 1)
		executor(func() {
			defer func() {
				if r := recover(); r != nil {
					a.log.Errorf("recovered panic in cmdcore execution phase: %v", r)
					result <- CommandExecution(internalPanicError{r})
				}
			}()
			result <- work()
		})
		return <-result
	})
	return g.Wait()
}

// ExecuteParse runs work on the parse executor, recovering a panic into a
// COMMAND_EXECUTION error.
func (a *AsynchronousExecutionCoordinator) ExecuteParse(work func() error) error {
	return a.run(a.parseExecutor, work)
}

// ExecuteHandler runs work on the handler executor, recovering a panic into
// a COMMAND_EXECUTION error.
func (a *AsynchronousExecutionCoordinator) ExecuteHandler(work func() error) error {
	return a.run(a.handlerExecutor, work)
}

type internalPanicError struct{ recovered any }

func (e internalPanicError) Error() string {
	if err, ok := e.recovered.(error); ok {
		return err.Error()
	}
	return "panic: " + toString(e.recovered)
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if st, ok := v.(interface{ String() string }); ok {
		return st.String()
	}
	return "unknown panic value"
}
