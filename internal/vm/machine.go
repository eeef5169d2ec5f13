package vm

import (
	"time"

	"github.com/miniscript-lang/miniscript/internal/value"
)

// OutputSink is a host-provided effect channel (spec §6): standard_output,
// implicit_output, and error_output are each one of these.
type OutputSink func(text string, appendEOL bool)

// IntrinsicLookup decouples Machine from the intrinsics package (which
// itself depends on vm for Context), avoiding an import cycle (spec §9
// "Intrinsic table as data").
type IntrinsicLookup interface {
	ByName(name string) (id int, ok bool)
	// ByID returns the intrinsic's implementation, display name, and
	// declared arity (used to build the synthetic wrapper function that
	// lets an intrinsic be referenced as a first-class value, spec §9
	// "Intrinsic table as data").
	ByID(id int) (fn IntrinsicFunc, name string, arity int, ok bool)
	Prototype() *value.Map // read-only map of registered intrinsics, for the `intrinsics` builtin
}

// HostCallback lets the VM reach back to its owning Interpreter for the
// localOnly deprecation-warning path (spec §9 "Weak interpreter
// reference"), modeled as a non-owning interface rather than a pointer
// cycle.
type HostCallback interface {
	DeprecationWarning(message string, line int)
}

// Machine is the VM state described in spec §3: a stack of contexts with
// the global context at the bottom, prototype maps for each builtin type,
// a monotonic stopwatch, and the yielding/store-implicit flags.
type Machine struct {
	Stack []*Context // Stack[0] is the global context

	StandardOutput  OutputSink
	ImplicitOutput  OutputSink
	ErrorOutputSink OutputSink

	NumberProto   *value.Map
	StringProto   *value.Map
	ListProto     *value.Map
	MapProto      *value.Map
	FunctionProto *value.Map

	VersionMap *value.Map

	Intrinsics IntrinsicLookup
	Host       HostCallback

	Yielding      bool
	StoreImplicit bool

	startedAt time.Time
	started   bool
}

// NewMachine creates a Machine with empty global context and nil type
// prototype maps. The `number`/`string`/`list`/`map`/`funcRef` intrinsics
// create each one as an empty map on first use; the maps are not pre-filled
// with intrinsic methods, so a dotted name such as `x.push` on a list
// resolves only if a script has added that key to the prototype itself.
func NewMachine(code []value.Instruction, intrinsics IntrinsicLookup) *Machine {
	m := &Machine{
		StandardOutput:  func(string, bool) {},
		ImplicitOutput:  func(string, bool) {},
		ErrorOutputSink: func(string, bool) {},
		Intrinsics:      intrinsics,
		StoreImplicit:   true,
	}
	global := NewGlobalContext(code, m)
	m.Stack = []*Context{global}
	return m
}

// Global returns the bottom-of-stack context.
func (m *Machine) Global() *Context { return m.Stack[0] }

// Top returns the currently-executing context.
func (m *Machine) Top() *Context { return m.Stack[len(m.Stack)-1] }

// Running reports whether the machine has any work left to do.
func (m *Machine) Running() bool {
	if len(m.Stack) == 0 {
		return false
	}
	return !(len(m.Stack) == 1 && m.Top().Done())
}

// ElapsedTime returns the machine's monotonic run time (spec §9's
// recommended resolution of the `run_until_done` time-budget ambiguity: a
// monotonic stopwatch, not wall-clock seconds-of-minute).
func (m *Machine) ElapsedTime() time.Duration {
	if !m.started {
		return 0
	}
	return time.Since(m.startedAt)
}

func (m *Machine) ensureStarted() {
	if !m.started {
		m.started = true
		m.startedAt = time.Now()
	}
}

// Stop truncates the call stack to the global context and sets its PC past
// end-of-code (spec §5 "Cancellation").
func (m *Machine) Stop() {
	if len(m.Stack) == 0 {
		return
	}
	global := m.Stack[0]
	global.PC = len(global.Code)
	m.Stack = []*Context{global}
	m.Yielding = false
}

// Reset clears the call stack and resets the program counter. If
// clearVariables is false, the global context's locals are preserved (spec
// §5 "Cancellation").
func (m *Machine) Reset(code []value.Instruction, clearVariables bool) {
	global := m.Stack[0]
	global.Code = code
	global.PC = 0
	global.Temps = make(map[int]value.Value)
	if clearVariables {
		global.Locals = value.NewMap()
	}
	m.Stack = []*Context{global}
	m.Yielding = false
	m.started = false
}

// RunUntilDone loops Step until the program ends, the machine yields, a
// context has a non-done partial result with returnEarly set, or
// timeLimit elapses (spec §5 "Scheduling model"). It returns whether the
// program is now fully done.
func (m *Machine) RunUntilDone(timeLimit time.Duration, returnEarly bool) (bool, error) {
	m.ensureStarted()
	deadline := time.Now().Add(timeLimit)
	for m.Running() {
		if m.Yielding {
			m.Yielding = false
			return false, nil
		}
		if returnEarly && m.Top().PartialResult != nil {
			return false, nil
		}
		if timeLimit > 0 && time.Now().After(deadline) {
			return false, nil
		}
		if err := m.Step(); err != nil {
			m.Stop()
			return true, err
		}
	}
	return true, nil
}

// Step executes exactly one TAC line (spec §4.3 "Stepping"). If the current
// context has finished, contexts are popped until a non-done one remains or
// only the global context is left.
func (m *Machine) Step() error {
	m.ensureStarted()
	for len(m.Stack) > 1 && m.Top().Done() {
		m.popContext(value.Null{})
	}
	if len(m.Stack) == 0 || m.Top().Done() {
		return nil
	}
	return execInstruction(m, &m.Stack)
}
