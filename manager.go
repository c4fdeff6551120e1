package cmdcore

import (
	"context"

	"github.com/tliron/commonlog"
)

// SenderMapper translates between a front-end's raw platform identity (Raw)
// and the domain sender type (C) cmdcore is parameterized over (§6 "Sender
// mapping"). ReverseSender is used by front-ends that need to go the other
// way, e.g. to address a sender from inside a Preprocessor.
type SenderMapper[Raw, C any] interface {
	MapSender(raw Raw) C
	ReverseSender(sender C) Raw
}

// FuncSenderMapper adapts a pair of plain functions into a SenderMapper.
type FuncSenderMapper[Raw, C any] struct {
	ToDomain func(Raw) C
	ToRaw    func(C) Raw
}

// MapSender implements SenderMapper.
func (m FuncSenderMapper[Raw, C]) MapSender(raw Raw) C { return m.ToDomain(raw) }

// ReverseSender implements SenderMapper.
func (m FuncSenderMapper[Raw, C]) ReverseSender(sender C) Raw { return m.ToRaw(sender) }

// CommandManager is the public façade wiring a CommandTree, its registries,
// the exception and execution strategies, and the pre/postprocessor chains
// into the single CLI surface front-ends consume (§6): executeCommand,
// suggest, registerCommand, lockRegistration, registerException,
// registerPreprocessor/registerPostprocessor, parserRegistry(),
// captionRegistry().
type CommandManager[Raw, C any] struct {
	sender SenderMapper[Raw, C]

	tree        *CommandTree[C]
	parsers     *ParserRegistry[C]
	annotations *AnnotationMapperRegistry
	captions    *CaptionRegistry
	exceptions  *ExceptionController[C]
	execution   ExecutionCoordinator
	suggestions *SuggestionFactory[C]
	injectors   *injectorRegistry

	pre  *processorChain[C]
	post *processorChain[C]

	log commonlog.Logger
}

// Option configures a CommandManager at construction time.
type Option[Raw, C any] func(*CommandManager[Raw, C])

// WithExecutionCoordinator overrides the default SimpleExecutionCoordinator.
func WithExecutionCoordinator[Raw, C any](coordinator ExecutionCoordinator) Option[Raw, C] {
	return func(m *CommandManager[Raw, C]) { m.execution = coordinator }
}

// WithLogger overrides the default "cmdcore.manager" logger.
func WithLogger[Raw, C any](log commonlog.Logger) Option[Raw, C] {
	return func(m *CommandManager[Raw, C]) { m.log = log }
}

// WithInjectorRegistry supplies a pre-populated injector registry (useful
// when a front-end wants to register injectors before building commands that
// reference them).
func WithInjectorRegistry[Raw, C any](reg *injectorRegistry) Option[Raw, C] {
	return func(m *CommandManager[Raw, C]) { m.injectors = reg }
}

// NewCommandManager wires a fresh CommandTree and its supporting registries
// behind sender, applying opts (§6's construction surface, SPEC_FULL.md §A's
// functional-options note).
func NewCommandManager[Raw, C any](sender SenderMapper[Raw, C], opts ...Option[Raw, C]) *CommandManager[Raw, C] {
	tree := NewCommandTree[C]()
	m := &CommandManager[Raw, C]{
		sender:      sender,
		tree:        tree,
		parsers:     NewParserRegistry[C](),
		annotations: NewAnnotationMapperRegistry(),
		captions:    NewCaptionRegistry(),
		exceptions:  NewExceptionController[C](),
		execution:   NewSimpleExecutionCoordinator(),
		suggestions: NewSuggestionFactory(tree),
		injectors:   newInjectorRegistry(),
		pre:         &processorChain[C]{},
		post:        &processorChain[C]{},
		log:         commonlog.GetLogger("cmdcore.manager"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ParserRegistry returns the registry commands register typed-parser
// factories into (§6 "parserRegistry().registerParserSupplier(type,
// factory)").
func (m *CommandManager[Raw, C]) ParserRegistry() *ParserRegistry[C] { return m.parsers }

// AnnotationMappers returns the registry a front-end's declarative-command
// discovery layer plugs descriptors into (§4.3).
func (m *CommandManager[Raw, C]) AnnotationMappers() *AnnotationMapperRegistry { return m.annotations }

// CaptionRegistry returns the registry caption formatters are registered
// into (§6 "captionRegistry().register(key, formatter)").
func (m *CommandManager[Raw, C]) CaptionRegistry() *CaptionRegistry { return m.captions }

// Injectors returns the registry RegisterInjector populates (§6 "Injection").
func (m *CommandManager[Raw, C]) Injectors() *injectorRegistry { return m.injectors }

// RegisterCommand adds cmd to the tree (§6 "registerCommand").
func (m *CommandManager[Raw, C]) RegisterCommand(cmd *Command[C]) error {
	return m.tree.RegisterCommand(cmd)
}

// RegisterAlias adds an additional root literal resolving to target's
// subtree (SPEC_FULL.md §C).
func (m *CommandManager[Raw, C]) RegisterAlias(target, alias string, moreAliases ...string) error {
	return m.tree.RegisterAlias(target, alias, moreAliases...)
}

// LockRegistration freezes the tree (§6 "lockRegistration").
func (m *CommandManager[Raw, C]) LockRegistration() { m.tree.LockRegistration() }

// RegisterException appends handler to kind's chain (§6 "registerException").
func (m *CommandManager[Raw, C]) RegisterException(kind ErrorKind, handler ExceptionHandler[C]) {
	m.exceptions.Register(kind, handler)
}

// RegisterPreprocessor appends fn to the preprocessor chain run before every
// parse (§6).
func (m *CommandManager[Raw, C]) RegisterPreprocessor(fn Preprocessor[C]) {
	m.pre.register(func(ctx *Context[C]) PreprocessVerdict { return fn(ctx) })
}

// RegisterPostprocessor appends fn to the postprocessor chain run after a
// successful handler invocation (§6).
func (m *CommandManager[Raw, C]) RegisterPostprocessor(fn Postprocessor[C]) {
	m.post.register(func(ctx *Context[C]) PreprocessVerdict { return fn(ctx) })
}

func (m *CommandManager[Raw, C]) newContext(parent context.Context, raw Raw) *Context[C] {
	return NewContext(parent, m.sender.MapSender(raw), m.injectors)
}

// ExecuteCommand runs the full pipeline for one command line: preprocessors,
// the CommandTree walk, the matched handler, and postprocessors, yielding a
// Promise<Outcome> (§6 "executeCommand"). A Halt from a preprocessor ends the
// invocation with a successful, no-op Outcome rather than an error — per
// §6's Continue|Halt contract, halting is a deliberate skip, not a failure.
func (m *CommandManager[Raw, C]) ExecuteCommand(parent context.Context, raw Raw, line string) Promise[Outcome] {
	ctx := m.newContext(parent, raw)

	if !m.pre.run(ctx) {
		return ResolvedPromise(Outcome{CommandLine: line})
	}

	var matched *Command[C]
	parseErr := m.execution.ExecuteParse(func() error {
		in := NewCommandInput(line)
		cmd, err := m.tree.Resolve(ctx, in)
		if err != nil {
			return err
		}
		matched = cmd
		return nil
	})
	if parseErr != nil {
		return m.reportFailure(ctx, parseErr)
	}

	handlerErr := m.execution.ExecuteHandler(func() error { return matched.handler(ctx) })
	if handlerErr != nil {
		return m.reportFailure(ctx, CommandExecution(handlerErr))
	}

	m.post.run(ctx)
	return ResolvedPromise(Outcome{CommandLine: line})
}

func (m *CommandManager[Raw, C]) reportFailure(ctx *Context[C], err error) Promise[Outcome] {
	if handleErr := m.exceptions.Handle(ctx, err); handleErr != nil {
		return FailedPromise[Outcome](handleErr)
	}
	return ResolvedPromise(Outcome{})
}

// Suggest walks the tree in suggestion mode and returns completions for the
// token under the cursor (§6 "suggest"). Preprocessors still run first (a
// Halt yields no suggestions) but postprocessors never do — nothing executed.
func (m *CommandManager[Raw, C]) Suggest(parent context.Context, raw Raw, line string) []Suggestion {
	ctx := m.newContext(parent, raw)
	if !m.pre.run(ctx) {
		return nil
	}
	return m.suggestions.Suggest(ctx, NewCommandInput(line))
}

// FormatError renders err's caption via the manager's CaptionRegistry,
// unwrapping it to a *CommandError first if necessary.
func (m *CommandManager[Raw, C]) FormatError(err error) string {
	cmdErr, ok := err.(*CommandError)
	if !ok {
		cmdErr = Internal(err)
	}
	return m.captions.Format(cmdErr)
}
