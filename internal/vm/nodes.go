// Package vm implements the MiniScript virtual machine: the stack of
// Contexts (call frames), TAC opcode dispatch, the prototype-based __isa
// method lookup, the CallFunctionA call protocol, and cooperative
// yield/wait/partial-result stepping (spec §4.3, §5).
package vm

import "github.com/miniscript-lang/miniscript/internal/value"

// LocalOnlyMode controls how a Var read behaves when the name is not yet a
// local (spec §4.2 "local_only_identifier and local_only_strict").
type LocalOnlyMode int

const (
	LocalOnlyOff LocalOnlyMode = iota
	LocalOnlyWarn
	LocalOnlyStrict
)

// Var is a compile-time expression node naming a variable reference. It
// self-evaluates against a Context via Machine.EvalOperand (spec §3: "the
// last three ... self-evaluate in a context").
type Var struct {
	value.Node
	Name      string
	NoInvoke  bool // set by the addressOf (@) prefix; suppresses auto-invoke
	LocalOnly LocalOnlyMode
}

// Temp is a compile-time reference to a numbered temporary slot in the
// current Context.
type Temp struct {
	value.Node
	Index int
}

// SeqElem is a compile-time reference to base[index], used both as a
// plain indexing expression and, when it names a dotted call target, to
// supply `self` for CallFunctionA (spec §4.3 call protocol step 2).
type SeqElem struct {
	value.Node
	Base     value.Value
	Index    value.Value
	NoInvoke bool
}
