// Package errors defines the user-facing error taxonomy for the MiniScript
// lexer, parser, and virtual machine, plus the shared source-location and
// message-formatting logic used to report them.
package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Position is a 1-based source location. Column is optional; zero means
// "unknown" and is omitted from formatted output.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	if p.Column > 0 {
		return fmt.Sprintf("line %d col %d", p.Line, p.Column)
	}
	return fmt.Sprintf("line %d", p.Line)
}

// Kind distinguishes the RuntimeError sub-kinds named in spec §7. Lexer and
// compiler errors have no sub-kinds.
type Kind int

const (
	// KindGeneric covers LexerError, CompilerError, and the plain
	// RuntimeError base case.
	KindGeneric Kind = iota
	KindIndex
	KindKey
	KindType
	KindUndefinedIdentifier
	KindUndefinedLocal
	KindTooManyArguments
	KindLimitExceeded
)

// family identifies which of the three top-level error prefixes (spec §7
// "User-visible description") an error belongs to.
type family int

const (
	familyLexer family = iota
	familyCompiler
	familyRuntime
)

func (f family) prefix() string {
	switch f {
	case familyLexer:
		return "Lexer Error"
	case familyCompiler:
		return "Compiler Error"
	default:
		return "Runtime Error"
	}
}

// ScriptError is the common shape of every error the interpreter reports to
// a host: a message, a family prefix, an optional sub-kind, an optional
// source position, and the name of the context (function) it occurred in.
type ScriptError struct {
	family  family
	Kind    Kind
	Message string
	Pos     Position
	Context string // enclosing function/context name, e.g. "main" or "makeAdder"
	hasPos  bool
}

func (e *ScriptError) Error() string {
	return e.Format(false)
}

// Format renders the standardized "<Family> Error: <message> [<context>
// line N]" description from spec §7. When color is true, the prefix is
// rendered in bold red using the same palette the REPL uses for error
// output.
func (e *ScriptError) Format(useColor bool) string {
	var sb strings.Builder

	prefix := e.family.prefix() + ":"
	if useColor {
		prefix = color.New(color.FgRed, color.Bold).Sprint(prefix)
	}

	sb.WriteString(prefix)
	sb.WriteString(" ")
	sb.WriteString(e.Message)

	if e.hasPos {
		ctx := e.Context
		if ctx == "" {
			ctx = "main"
		}
		fmt.Fprintf(&sb, " [%s %s]", ctx, positionSuffix(e.Pos))
	}

	return sb.String()
}

func positionSuffix(p Position) string {
	return fmt.Sprintf("line %d", p.Line)
}

// HasPosition reports whether a source location has been attached.
func (e *ScriptError) HasPosition() bool { return e.hasPos }

// WithPosition returns a copy of the error with its location set, if it did
// not already have one. Used by the VM to attach the nearest known location
// to an error raised without one (spec §7 "Propagation").
func (e *ScriptError) WithPosition(pos Position, context string) *ScriptError {
	if e.hasPos {
		return e
	}
	cp := *e
	cp.Pos = pos
	cp.Context = context
	cp.hasPos = true
	return &cp
}

// NewLexerError constructs a LexerError (spec §7).
func NewLexerError(pos Position, message string) *ScriptError {
	return &ScriptError{family: familyLexer, Message: message, Pos: pos, hasPos: true}
}

// NewCompilerError constructs a CompilerError (spec §7).
func NewCompilerError(pos Position, message string) *ScriptError {
	return &ScriptError{family: familyCompiler, Message: message, Pos: pos, hasPos: true}
}

// NewRuntimeError constructs a plain RuntimeError with no sub-kind and no
// location yet attached; the VM attaches one via WithPosition.
func NewRuntimeError(kind Kind, message string) *ScriptError {
	return &ScriptError{family: familyRuntime, Kind: kind, Message: message}
}

// Convenience constructors for the RuntimeError sub-kinds in spec §7.

func NewIndexError(message string) *ScriptError {
	return NewRuntimeError(KindIndex, message)
}

func NewKeyError(message string) *ScriptError {
	return NewRuntimeError(KindKey, message)
}

func NewTypeError(message string) *ScriptError {
	return NewRuntimeError(KindType, message)
}

func NewUndefinedIdentifierError(name string) *ScriptError {
	return NewRuntimeError(KindUndefinedIdentifier, fmt.Sprintf("Undefined identifier %q", name))
}

func NewUndefinedLocalError(name string) *ScriptError {
	return NewRuntimeError(KindUndefinedLocal, fmt.Sprintf("%q is not a local variable", name))
}

func NewTooManyArgumentsError(message string) *ScriptError {
	return NewRuntimeError(KindTooManyArguments, message)
}

func NewLimitExceededError(message string) *ScriptError {
	return NewRuntimeError(KindLimitExceeded, message)
}

// IsRuntime reports whether err is a RuntimeError (of any sub-kind).
func IsRuntime(err error) bool {
	se, ok := err.(*ScriptError)
	return ok && se.family == familyRuntime
}

// IsCompiler reports whether err is a CompilerError.
func IsCompiler(err error) bool {
	se, ok := err.(*ScriptError)
	return ok && se.family == familyCompiler
}

// IsLexer reports whether err is a LexerError.
func IsLexer(err error) bool {
	se, ok := err.(*ScriptError)
	return ok && se.family == familyLexer
}
