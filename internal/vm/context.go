package vm

import "github.com/miniscript-lang/miniscript/internal/value"

// IntrinsicResult is what an intrinsic function returns to the VM (spec
// §4.4, §5 "Partial intrinsic result"): either a terminal value, or a
// not-done opaque partial result that will be handed back to the same
// intrinsic on the next step.
type IntrinsicResult struct {
	Done    bool
	Result  value.Value
	Partial any // opaque state carried to the next invocation
}

// Done wraps a final value as a completed IntrinsicResult.
func Done(v value.Value) IntrinsicResult { return IntrinsicResult{Done: true, Result: v} }

// NotDone wraps an in-progress partial result.
func NotDone(partial any) IntrinsicResult { return IntrinsicResult{Done: false, Partial: partial} }

// IntrinsicFunc is the shape of a registered intrinsic (spec §4.4 and §9
// "Intrinsic table as data"): it receives the current Context and the
// prior partial result, if any, and returns a new IntrinsicResult.
type IntrinsicFunc func(ctx *Context, partial any) (IntrinsicResult, error)

// Context is one VM call frame (spec §3 "Context"). The global context sits
// at the bottom of the Machine's call stack and has Parent == nil.
type Context struct {
	Code           []value.Instruction
	PC             int
	Locals         *value.Map
	OuterVars      *value.Map
	Self           value.Value
	PendingArgs    []value.Value // pushed by PushParam, consumed by CallFunctionA
	Parent         *Context
	ResultStorage  value.Value // an lvalue operand (Var/Temp/SeqElem) in Parent, or nil
	VM             *Machine
	PartialResult  *partialState
	Temps          map[int]value.Value
	ImplicitResult int // count of AssignImplicit stores, for stackTrace / REPL echo
	FuncName       string
	ReturnValue    value.Value // set by ReturnA; stored into Parent's ResultStorage when the frame is popped
}

// partialState records an in-flight intrinsic call so the VM can re-present
// it on the next step (spec §5 "Partial intrinsic result").
type partialState struct {
	IntrinsicID int
	Data        any
}

// NewGlobalContext creates the bottom-of-stack context for a Machine.
func NewGlobalContext(code []value.Instruction, vm *Machine) *Context {
	return &Context{
		Code:   code,
		Locals: value.NewMap(),
		VM:     vm,
		Temps:  make(map[int]value.Value),
	}
}

// NewCallContext creates a frame for a MiniScript function invocation (spec
// §4.3 call protocol step 3).
func NewCallContext(fn *value.Function, parent *Context, resultStorage value.Value) *Context {
	return &Context{
		Code:          fn.Code,
		Locals:        value.NewMap(),
		OuterVars:     fn.OuterVars,
		Parent:        parent,
		ResultStorage: resultStorage,
		VM:            parent.VM,
		Temps:         make(map[int]value.Value),
		FuncName:      fn.Name,
	}
}

// Done reports whether the context has run off the end of its code.
func (c *Context) Done() bool { return c.PC >= len(c.Code) }

// GetTemp reads a temp slot, defaulting to Null.
func (c *Context) GetTemp(idx int) value.Value {
	if v, ok := c.Temps[idx]; ok {
		return v
	}
	return value.Null{}
}

// SetTemp writes a temp slot.
func (c *Context) SetTemp(idx int, v value.Value) { c.Temps[idx] = v }

// IsGlobal reports whether c is the bottom-of-stack global context.
func (c *Context) IsGlobal() bool { return c.Parent == nil }
