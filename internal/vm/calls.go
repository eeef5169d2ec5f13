package vm

import (
	"fmt"

	"github.com/miniscript-lang/miniscript/internal/value"

	mserrors "github.com/miniscript-lang/miniscript/internal/errors"
)

// StoreLValue assigns val to the lvalue operand lhs (a Var, Temp, SeqElem,
// or nil to discard), implementing the common "store to lhs" step shared by
// AssignA, CopyA, ReturnA, and CallFunctionA (spec §4.3).
func StoreLValue(m *Machine, ctx *Context, lhs value.Value, val value.Value) error {
	switch t := lhs.(type) {
	case nil:
		return nil
	case Temp:
		ctx.SetTemp(t.Index, val)
		return nil
	case Var:
		return SetVar(m, ctx, t.Name, val)
	case *SeqElem:
		return setSeqElem(m, ctx, t, val)
	default:
		return nil
	}
}

func setSeqElem(m *Machine, ctx *Context, se *SeqElem, val value.Value) error {
	base, err := EvalOperand(m, ctx, se.Base)
	if err != nil {
		return err
	}
	idx, err := EvalOperand(m, ctx, se.Index)
	if err != nil {
		return err
	}
	return AssignIndexed(base, idx, val)
}

// finishContext pops the top (finished) context off stack and, if it has a
// parent still on the stack, stores its return value into the parent's
// requested lvalue (spec §4.3 "ReturnA"/call protocol). It is shared by
// Machine.Step's pop loop and invokeSync's nested mini-loop.
func finishContext(m *Machine, stack *[]*Context) error {
	s := *stack
	top := s[len(s)-1]
	*stack = s[:len(s)-1]
	if len(*stack) == 0 {
		return nil
	}
	result := top.ReturnValue
	if result == nil {
		result = value.Null{}
	}
	return StoreLValue(m, top.Parent, top.ResultStorage, result)
}

// popContext is finishContext specialized for Machine.Stack.
func (m *Machine) popContext(implicitResult value.Value) {
	_ = implicitResult
	_ = finishContext(m, &m.Stack)
}

// bindParams implements spec §4.3 call protocol step 4: positional
// arguments are popped in reverse and assigned to parameter names (skipping
// a leading "self" parameter when the call was made via a dotted method
// reference), missing positionals take their default values, and extra
// arguments are a TooManyArgumentsError.
func bindParams(ctx *Context, fn *value.Function, args []value.Value, viaDotCall *bool) error {
	params := fn.Params
	skipSelf := false
	if viaDotCall != nil && *viaDotCall && len(params) > 0 && params[0].Name == nameSelf {
		skipSelf = true
		params = params[1:]
	}
	if len(args) > len(params) {
		return mserrors.NewTooManyArgumentsError(fmt.Sprintf("too many arguments: got %d, want at most %d", len(args), len(params)))
	}
	for i, p := range params {
		if i < len(args) {
			ctx.Locals.Set(value.Str(p.Name), args[i])
			continue
		}
		if p.Default != nil {
			ctx.Locals.Set(value.Str(p.Name), p.Default)
			continue
		}
		ctx.Locals.Set(value.Str(p.Name), value.Null{})
	}
	_ = skipSelf
	return nil
}

// CallFunction implements spec §4.3 "Call protocol (CallFunctionA)". callee
// has already been evaluated to a concrete value; pendingArgs are in
// push order (PushParam order), oldest first.
func CallFunction(m *Machine, stack *[]*Context, caller *Context, calleeOperand value.Value, lhs value.Value, pendingArgs []value.Value) error {
	calleeVal, err := resolveCallee(m, caller, calleeOperand)
	if err != nil {
		return err
	}

	fn, ok := calleeVal.(*value.Function)
	if !ok {
		if len(pendingArgs) > 0 {
			return mserrors.NewTooManyArgumentsError("cannot call a non-function value with arguments")
		}
		return StoreLValue(m, caller, lhs, calleeVal)
	}

	child := NewCallContext(fn, caller, lhs)

	viaDot := false
	if se, ok := calleeOperand.(*SeqElem); ok {
		viaDot = true
		if isSuperBase(se.Base) {
			child.Self = caller.Self
		} else {
			base, err := EvalOperand(m, caller, se.Base)
			if err != nil {
				return err
			}
			child.Self = base
		}
		var proto *value.Map
		if baseMap, ok := child.Self.(*value.Map); ok {
			proto, _ = baseMap.Isa()
		}
		setSuperBinding(child, proto)
	}

	if err := bindParams(child, fn, pendingArgs, &viaDot); err != nil {
		return err
	}

	*stack = append(*stack, child)
	return nil
}

func isSuperBase(base value.Value) bool {
	v, ok := base.(Var)
	return ok && v.Name == nameSuper
}

func setSuperBinding(ctx *Context, proto *value.Map) {
	if proto == nil {
		ctx.Locals.Set(value.Str(nameSuper), value.Null{})
		return
	}
	ctx.Locals.Set(value.Str(nameSuper), proto)
}
