package cmdcore

import (
	"fmt"
	"sort"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// CaptionKey is a stable identifier used to look up a localized message
// template for an error, per §6/§7. Keys with no registered formatter are
// rendered by DefaultCaptionFormatter; front-ends may register their own.
type CaptionKey string

// Caption keys for the standard parser errors (§4.2, §7).
const (
	CaptionNumberParse   CaptionKey = "cmdcore.caption.number_parse"
	CaptionDurationParse CaptionKey = "cmdcore.caption.duration_parse"
	CaptionEnumParse     CaptionKey = "cmdcore.caption.enum_parse"
	CaptionBoolParse     CaptionKey = "cmdcore.caption.bool_parse"
	CaptionCharParse     CaptionKey = "cmdcore.caption.char_parse"
)

// Vars is the substitution-variable map carried by a CommandError, e.g.
// {"input": "11", "min": "1", "max": "10"}.
type Vars map[string]string

// CaptionFormatter renders a CaptionKey and its substitution Vars into a
// human-readable message (§6 "captionRegistry().register(key, formatter)").
type CaptionFormatter func(vars Vars) string

// CaptionRegistry maps caption keys to formatters. A key with no registered
// formatter falls back to DefaultCaptionFormatter.
type CaptionRegistry struct {
	formatters map[CaptionKey]CaptionFormatter
}

// NewCaptionRegistry returns a CaptionRegistry with no formatters registered.
func NewCaptionRegistry() *CaptionRegistry {
	return &CaptionRegistry{formatters: map[CaptionKey]CaptionFormatter{}}
}

// Register sets the formatter used to render key.
func (r *CaptionRegistry) Register(key CaptionKey, formatter CaptionFormatter) {
	r.formatters[key] = formatter
}

// Format renders err's caption using whatever formatter key is registered
// under, or DefaultCaptionFormatter if none is.
func (r *CaptionRegistry) Format(err *CommandError) string {
	if f, ok := r.formatters[err.Caption]; ok {
		return f(err.Vars)
	}
	return DefaultCaptionFormatter(err.Caption, err.Vars)
}

// DefaultCaptionFormatter renders a caption key and its vars as
// "key: k1=v1, k2=v2" with keys in sorted order, a stable, dependency-free
// fallback a front-end can override entirely via CaptionRegistry.Register.
func DefaultCaptionFormatter(key CaptionKey, vars Vars) string {
	if len(vars) == 0 {
		return string(key)
	}
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, vars[k]))
	}
	return fmt.Sprintf("%s: %s", key, strings.Join(parts, ", "))
}

// CommandError is the common envelope for every error kind in §7: a stable
// Caption, its substitution Vars, and the parser type tag (when relevant)
// used to locate a default message. Each constructor below (InvalidSyntax,
// NoSuchCommand, ...) returns a *CommandError with Kind set accordingly.
type CommandError struct {
	Kind       ErrorKind
	Caption    CaptionKey
	Vars       Vars
	ParserType string
	cause      error
}

// ErrorKind enumerates the §7 taxonomy's fixed variants.
type ErrorKind int

const (
	KindInvalidSyntax ErrorKind = iota
	KindNoSuchCommand
	KindNoPermission
	KindInvalidSender
	KindArgumentParse
	KindFlagParse
	KindAggregateParse
	KindCommandExecution
	KindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidSyntax:
		return "INVALID_SYNTAX"
	case KindNoSuchCommand:
		return "NO_SUCH_COMMAND"
	case KindNoPermission:
		return "NO_PERMISSION"
	case KindInvalidSender:
		return "INVALID_SENDER"
	case KindArgumentParse:
		return "ARGUMENT_PARSE"
	case KindFlagParse:
		return "FLAG_PARSE"
	case KindAggregateParse:
		return "AGGREGATE_PARSE"
	case KindCommandExecution:
		return "COMMAND_EXECUTION"
	default:
		return "INTERNAL"
	}
}

func (e *CommandError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.cause)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Vars)
}

func (e *CommandError) Unwrap() error { return e.cause }

// Cause returns the wrapped underlying error, if any (mirrors pkg/errors.Cause
// for callers that prefer that idiom over errors.Unwrap).
func (e *CommandError) Cause() error { return e.cause }

// InvalidSyntax builds an INVALID_SYNTAX error: the walk reached a node that
// doesn't accept the next token, or input remained at a terminal node.
func InvalidSyntax(correctSyntax, matchedPrefix string) *CommandError {
	return &CommandError{
		Kind:    KindInvalidSyntax,
		Caption: "cmdcore.caption.invalid_syntax",
		Vars:    Vars{"correctSyntax": correctSyntax, "matchedPrefix": matchedPrefix},
	}
}

// NoSuchCommand builds a NO_SUCH_COMMAND error: the initial token matched no
// root literal.
func NoSuchCommand(input string) *CommandError {
	return &CommandError{
		Kind:    KindNoSuchCommand,
		Caption: "cmdcore.caption.no_such_command",
		Vars:    Vars{"input": input},
	}
}

// NoPermission builds a NO_PERMISSION error for a command or flag the sender
// lacks permission for.
func NoPermission(target, missing string) *CommandError {
	return &CommandError{
		Kind:    KindNoPermission,
		Caption: "cmdcore.caption.no_permission",
		Vars:    Vars{"target": target, "missing": missing},
	}
}

// InvalidSender builds an INVALID_SENDER error: the command's declared
// sender variant does not match the caller.
func InvalidSender(required, actual string) *CommandError {
	return &CommandError{
		Kind:    KindInvalidSender,
		Caption: "cmdcore.caption.invalid_sender",
		Vars:    Vars{"required": required, "actual": actual},
	}
}

// ArgumentParse builds an ARGUMENT_PARSE error wrapping a parser-specific
// cause (NumberParseError, DurationParseError, EnumParseError, ...).
func ArgumentParse(parserType string, cause error) *CommandError {
	return &CommandError{
		Kind:       KindArgumentParse,
		Caption:    "cmdcore.caption.argument_parse",
		ParserType: parserType,
		cause:      cause,
	}
}

// FlagParseReason enumerates §7's FLAG_PARSE.reason variants.
type FlagParseReason int

const (
	FlagUnknownFlag FlagParseReason = iota
	FlagDuplicateFlag
	FlagNoFlagStarted
	FlagMissingArgument
	FlagNoPermission
)

func (r FlagParseReason) String() string {
	switch r {
	case FlagUnknownFlag:
		return "UNKNOWN_FLAG"
	case FlagDuplicateFlag:
		return "DUPLICATE_FLAG"
	case FlagNoFlagStarted:
		return "NO_FLAG_STARTED"
	case FlagMissingArgument:
		return "MISSING_ARGUMENT"
	default:
		return "NO_PERMISSION"
	}
}

// FlagParse builds a FLAG_PARSE error.
func FlagParse(reason FlagParseReason, token string) *CommandError {
	return &CommandError{
		Kind:    KindFlagParse,
		Caption: "cmdcore.caption.flag_parse",
		Vars:    Vars{"reason": reason.String(), "token": token},
	}
}

// AggregateParse builds an AGGREGATE_PARSE error naming the failing inner
// component, wrapping its cause (or nil for a MISSING_INPUT).
func AggregateParse(component string, cause error) *CommandError {
	v := Vars{"component": component}
	if cause == nil {
		v["reason"] = "MISSING_INPUT"
	}
	return &CommandError{
		Kind:    KindAggregateParse,
		Caption: "cmdcore.caption.aggregate_parse",
		Vars:    v,
		cause:   cause,
	}
}

// CommandExecution wraps a handler's returned/panicked error exactly once.
func CommandExecution(cause error) *CommandError {
	if ce, ok := cause.(*CommandError); ok && ce.Kind == KindCommandExecution {
		return ce // already wrapped once; don't double-wrap
	}
	return &CommandError{
		Kind:    KindCommandExecution,
		Caption: "cmdcore.caption.command_execution",
		cause:   pkgerrors.WithStack(cause),
	}
}

// Internal wraps an unexpected, otherwise-unclassified failure with a stack
// trace for the log sink (§4.8).
func Internal(cause error) *CommandError {
	return &CommandError{
		Kind:    KindInternal,
		Caption: "cmdcore.caption.internal",
		cause:   pkgerrors.WithStack(cause),
	}
}

// NumberParseError is the structured cause of a numeric ArgumentParse
// failure (§4.2).
type NumberParseError struct {
	Input      string
	Min, Max   string
	HasMin     bool
	HasMax     bool
}

func (e *NumberParseError) Error() string {
	return fmt.Sprintf("could not parse number %q (min=%v max=%v)", e.Input, e.Min, e.Max)
}

// DurationParseError is the structured cause of a duration ArgumentParse
// failure (§4.2, §8 scenario 6).
type DurationParseError struct{ Input string }

func (e *DurationParseError) Error() string { return fmt.Sprintf("could not parse duration %q", e.Input) }

// EnumParseError is the structured cause of an enum ArgumentParse failure.
type EnumParseError struct {
	Input      string
	Acceptable []string
}

func (e *EnumParseError) Error() string {
	return fmt.Sprintf("%q is not one of %v", e.Input, e.Acceptable)
}

// BoolParseError is the structured cause of a boolean ArgumentParse failure.
type BoolParseError struct{ Input string }

func (e *BoolParseError) Error() string { return fmt.Sprintf("could not parse boolean %q", e.Input) }

// CharParseError is the structured cause of a character ArgumentParse failure.
type CharParseError struct{ Input string }

func (e *CharParseError) Error() string { return fmt.Sprintf("could not parse character %q", e.Input) }
