// Package miniscript is the host-facing embedding API (spec §6): compile
// and run MiniScript source, step it cooperatively, and exchange values
// with the running program's global scope.
package miniscript

import (
	"fmt"
	"strings"
	"time"

	mserrors "github.com/miniscript-lang/miniscript/internal/errors"
	"github.com/miniscript-lang/miniscript/internal/intrinsics"
	"github.com/miniscript-lang/miniscript/internal/parser"
	"github.com/miniscript-lang/miniscript/internal/value"
	"github.com/miniscript-lang/miniscript/internal/vm"
)

// OutputSink receives one write from the interpreter: `standard_output`,
// `implicit_output`, or `error_output` (spec §6). text is the content;
// appendEOL reports whether it ends a line.
type OutputSink = vm.OutputSink

// HostInfo is returned by the `version` intrinsic (spec §4.4) as the
// embedding host's identity and version, since spec §1 names a
// HostInfo/version backing value as an external collaborator with no
// concrete shape of its own.
type HostInfo struct {
	Name    string
	Version string
}

func (h HostInfo) versionMap() *value.Map {
	m := value.NewMap()
	m.Set(value.Str("name"), value.Str(h.Name))
	m.Set(value.Str("version"), value.Str(h.Version))
	return m
}

// DefaultHostInfo is used when an Interpreter is constructed with New or
// FromLines; set Interpreter.Host before the first Compile to override it.
var DefaultHostInfo = HostInfo{Name: "miniscript", Version: "0.1.0"}

// Interpreter wraps a parser and a VM, adding the REPL line-buffering and
// global-variable bridging spec §6 describes. StandardOutput,
// ImplicitOutput, and ErrorOutput default to no-ops; a host sets whichever
// it cares about before calling Compile/RunUntilDone/Step/Repl.
type Interpreter struct {
	StandardOutput OutputSink
	ImplicitOutput OutputSink
	ErrorOutput    OutputSink
	Host           HostInfo

	source string
	p      *parser.Parser
	m      *vm.Machine
	code   []value.Instruction

	replBuffer   strings.Builder
	awaitingMore bool
}

// New creates an Interpreter with the given source (possibly empty; use
// SetSource or Reset to supply it later).
func New(source string) *Interpreter {
	it := &Interpreter{
		StandardOutput: noopSink,
		ImplicitOutput: noopSink,
		ErrorOutput:    noopSink,
		Host:           DefaultHostInfo,
		p:              parser.New(),
	}
	it.SetSource(source)
	return it
}

// FromLines joins lines with newlines and constructs an Interpreter from
// the result (spec §6 "from_lines(lines…)").
func FromLines(lines ...string) *Interpreter {
	return New(strings.Join(lines, "\n"))
}

func noopSink(string, bool) {}

// SetSource replaces the pending source without compiling it. Any
// in-progress REPL buffering is discarded.
func (it *Interpreter) SetSource(source string) {
	it.source = source
	it.replBuffer.Reset()
	it.awaitingMore = false
}

// Reset sets a new source and compiles it immediately (spec §6
// "reset(source)").
func (it *Interpreter) Reset(source string) error {
	it.SetSource(source)
	return it.Compile()
}

// Compile parses the current source to TAC and (re)builds the VM. An
// already-running program is replaced; its global variables are cleared,
// matching "compile" starting a program from scratch rather than
// continuing one (contrast Restart, which keeps the same compiled code).
func (it *Interpreter) Compile() error {
	code, err := it.p.Compile(it.source)
	if err != nil {
		return err
	}
	it.code = code
	if it.m == nil {
		it.m = vm.NewMachine(code, intrinsics.New())
		it.wireSinks()
	} else {
		it.m.Reset(code, true)
	}
	return nil
}

func (it *Interpreter) wireSinks() {
	it.m.StandardOutput = func(text string, eol bool) { it.StandardOutput(text, eol) }
	it.m.ImplicitOutput = func(text string, eol bool) { it.ImplicitOutput(text, eol) }
	it.m.ErrorOutputSink = func(text string, eol bool) { it.ErrorOutput(text, eol) }
	it.m.VersionMap = it.Host.versionMap()
	it.m.Host = it
}

// DeprecationWarning implements vm.HostCallback: the `localOnly` warn-mode
// notice is written to StandardOutput rather than ErrorOutput (see
// DESIGN.md "localOnly warn-mode sink").
func (it *Interpreter) DeprecationWarning(message string, line int) {
	it.StandardOutput(fmt.Sprintf("Warning: %s [line %d]", message, line), true)
}

// Code returns the most recently compiled TAC, for the `--dump-tac` CLI
// surface (spec §6). Nil until Compile/Reset has succeeded at least once.
func (it *Interpreter) Code() []value.Instruction { return it.code }

// Restart re-runs the last successfully compiled program from the top,
// clearing global variables, without re-parsing the source (spec §6
// "restart()"). If nothing has been compiled yet, it compiles first.
func (it *Interpreter) Restart() error {
	if it.m == nil {
		return it.Compile()
	}
	it.m.Reset(it.code, true)
	return nil
}

// Stop halts the running program, truncating its call stack (spec §5
// "Cancellation").
func (it *Interpreter) Stop() {
	if it.m != nil {
		it.m.Stop()
	}
}

// Running reports whether the program has work left to do.
func (it *Interpreter) Running() bool { return it.m != nil && it.m.Running() }

// Done is the complement of Running (spec §6 "done → bool").
func (it *Interpreter) Done() bool { return !it.Running() }

// NeedMoreInput reports whether the REPL is waiting on more source lines
// to complete an open construct (spec §6 "need_more_input() → bool"), for
// choosing between a `> ` and `>>> ` prompt.
func (it *Interpreter) NeedMoreInput() bool { return it.awaitingMore }

// RunUntilDone runs the compiled program until it finishes, yields, hits a
// not-done partial result with returnEarly set, or timeLimit elapses (spec
// §6 "run_until_done"). A RuntimeError is written to ErrorOutput and also
// returned.
func (it *Interpreter) RunUntilDone(timeLimit time.Duration, returnEarly bool) (bool, error) {
	if it.m == nil {
		if err := it.Compile(); err != nil {
			it.reportError(err)
			return true, err
		}
	}
	done, err := it.m.RunUntilDone(timeLimit, returnEarly)
	if err != nil {
		it.reportError(err)
	}
	return done, err
}

// Step executes exactly one TAC line (spec §6 "step()").
func (it *Interpreter) Step() error {
	if it.m == nil {
		if err := it.Compile(); err != nil {
			it.reportError(err)
			return err
		}
	}
	if err := it.m.Step(); err != nil {
		it.m.Stop()
		it.reportError(err)
		return err
	}
	return nil
}

// Repl feeds one more line of input to an ongoing REPL session (spec §6
// "repl(line?, time_limit=60)"): it buffers raw source text across calls
// and re-submits the whole growing buffer to Compile each time, rather
// than keeping reentrant parser state. A CompilerError clears the buffer
// and is reported; an IncompleteInputError (or a lexically-open
// continuation) leaves the buffer intact and sets NeedMoreInput.
func (it *Interpreter) Repl(line string, timeLimit time.Duration) error {
	if it.replBuffer.Len() > 0 {
		it.replBuffer.WriteString("\n")
	}
	it.replBuffer.WriteString(line)
	buffered := it.replBuffer.String()

	if parser.NeedsMoreInput(buffered) {
		it.awaitingMore = true
		return nil
	}

	code, err := it.p.Compile(buffered)
	if err != nil {
		if parser.IsIncomplete(err) {
			it.awaitingMore = true
			return nil
		}
		it.awaitingMore = false
		it.replBuffer.Reset()
		it.reportError(err)
		return err
	}

	it.awaitingMore = false
	it.replBuffer.Reset()
	it.code = code
	if it.m == nil {
		it.m = vm.NewMachine(code, intrinsics.New())
		it.wireSinks()
	} else {
		it.m.Reset(code, false) // preserve globals across REPL turns
	}
	_, err = it.m.RunUntilDone(timeLimit, true)
	if err != nil {
		it.reportError(err)
	}
	return err
}

func (it *Interpreter) reportError(err error) {
	if se, ok := err.(*mserrors.ScriptError); ok {
		it.ErrorOutput(se.Format(false), true)
		return
	}
	it.ErrorOutput(err.Error(), true)
}

// GetGlobalValue reads a variable from the program's global scope (spec §6
// "get_global_value"), converting it to a Go-native type (see convert.go).
func (it *Interpreter) GetGlobalValue(name string) (any, bool) {
	if it.m == nil {
		return nil, false
	}
	v, ok := it.m.Global().Locals.Get(value.Str(name))
	if !ok {
		return nil, false
	}
	return toNative(v), true
}

// SetGlobalValue writes a variable into the program's global scope (spec
// §6 "set_global_value"), useful both before a run (seeding inputs) and
// between steps of a paused one.
func (it *Interpreter) SetGlobalValue(name string, v any) {
	if it.m == nil {
		it.Compile() //nolint:errcheck // best-effort: a host setting globals before any valid source exists gets a no-op
	}
	if it.m == nil {
		return
	}
	it.m.Global().Locals.Set(value.Str(name), fromNative(v))
}
