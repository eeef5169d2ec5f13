package vm

import (
	"github.com/miniscript-lang/miniscript/internal/value"

	mserrors "github.com/miniscript-lang/miniscript/internal/errors"
)

// EvalOperand resolves a TAC operand to a concrete runtime value (spec §3:
// Var/Temp/SeqElem "self-evaluate in a context"). Literal Number/Str/Null
// pass through unchanged; a List/Map literal operand is rebuilt as a fresh
// value with each element evaluated (evalListLiteral/evalMapLiteral);
// Function values are returned by reference.
//
// Reading a Var whose value is a function auto-invokes it with zero
// arguments unless NoInvoke is set (spec §4.2 "Auto-invoke"). Auto-invoke
// runs as a bounded, non-yieldable nested call (see invokeSync): the
// primary CallFunctionA/ReturnA protocol never recurses the host call
// stack, but this secondary, implicit path intentionally does, to keep the
// common case (explicit calls, which must support yield/wait/partial
// results) free of that complexity.
func EvalOperand(m *Machine, ctx *Context, operand value.Value) (value.Value, error) {
	switch v := operand.(type) {
	case nil:
		return value.Null{}, nil
	case value.Null, value.Number, value.Str:
		return v, nil
	case Temp:
		return ctx.GetTemp(v.Index), nil
	case Var:
		return evalVar(m, ctx, v)
	case *SeqElem:
		return evalSeqElem(m, ctx, v)
	case *value.List:
		return evalListLiteral(m, ctx, v)
	case *value.Map:
		return evalMapLiteral(m, ctx, v)
	case *value.Function:
		return v, nil
	default:
		return v, nil
	}
}

func evalVar(m *Machine, ctx *Context, v Var) (value.Value, error) {
	if v.LocalOnly != LocalOnlyOff {
		if _, ok := ctx.Locals.Get(value.Str(v.Name)); !ok && v.Name != nameSelf {
			if v.LocalOnly == LocalOnlyStrict {
				return nil, mserrors.NewUndefinedLocalError(v.Name)
			}
		}
	}
	raw, err := GetVar(m, ctx, v.Name, v.LocalOnly)
	if err != nil {
		return nil, err
	}
	return autoInvoke(m, ctx, raw, v.Name, v.NoInvoke)
}

func autoInvoke(m *Machine, ctx *Context, raw value.Value, name string, noInvoke bool) (value.Value, error) {
	fn, ok := raw.(*value.Function)
	if !ok || noInvoke || name == nameSelf || name == nameSuper {
		return raw, nil
	}
	return invokeSync(m, ctx, fn, ctx.Self, nil)
}

func evalSeqElem(m *Machine, ctx *Context, se *SeqElem) (value.Value, error) {
	base, err := EvalOperand(m, ctx, se.Base)
	if err != nil {
		return nil, err
	}
	idx, err := EvalOperand(m, ctx, se.Index)
	if err != nil {
		return nil, err
	}
	raw, err := ElemBofA(m, base, idx)
	if err != nil {
		return nil, err
	}
	return autoInvoke(m, ctx, raw, "", se.NoInvoke)
}

// evalListLiteral produces a fresh list with every element evaluated in
// ctx (spec §4.3 AssignA/CopyA "deep-eval if list/map literal").
func evalListLiteral(m *Machine, ctx *Context, lit *value.List) (value.Value, error) {
	out := make([]value.Value, len(lit.Items))
	for i, item := range lit.Items {
		v, err := EvalOperand(m, ctx, item)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return value.NewList(out), nil
}

func evalMapLiteral(m *Machine, ctx *Context, lit *value.Map) (value.Value, error) {
	out := value.NewMap()
	for _, k := range lit.Keys() {
		kv, err := EvalOperand(m, ctx, k)
		if err != nil {
			return nil, err
		}
		raw, _ := lit.Get(k)
		vv, err := EvalOperand(m, ctx, raw)
		if err != nil {
			return nil, err
		}
		out.Set(kv, vv)
	}
	return out, nil
}

// resolveCallee resolves a call's own callee operand without auto-invoking
// a function value (spec §4.3 call protocol step 1). A bare read of a Var
// or SeqElem bound to a function auto-invokes it with zero arguments
// (EvalOperand's normal behavior), which would be wrong here: the callee of
// `abs(-5)` must resolve to the function itself so CallFunctionA's own
// pending arguments reach it, not zero.
func resolveCallee(m *Machine, ctx *Context, operand value.Value) (value.Value, error) {
	switch v := operand.(type) {
	case Var:
		return GetVar(m, ctx, v.Name, v.LocalOnly)
	case *SeqElem:
		base, err := EvalOperand(m, ctx, v.Base)
		if err != nil {
			return nil, err
		}
		idx, err := EvalOperand(m, ctx, v.Index)
		if err != nil {
			return nil, err
		}
		return ElemBofA(m, base, idx)
	default:
		return EvalOperand(m, ctx, operand)
	}
}

// invokeSync runs fn to completion as a nested, non-resumable call, used
// only for the implicit zero-argument auto-invoke path (see EvalOperand's
// doc comment).
func invokeSync(m *Machine, caller *Context, fn *value.Function, self value.Value, args []value.Value) (value.Value, error) {
	child := NewCallContext(fn, caller, nil)
	child.Self = self
	if err := bindParams(child, fn, args, nil); err != nil {
		return nil, err
	}
	stack := []*Context{child}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.Done() {
			result := top.ReturnValue
			if result == nil {
				result = value.Null{}
			}
			finishContext(m, &stack)
			if len(stack) == 0 {
				return result, nil
			}
			continue
		}
		if err := execInstruction(m, &stack); err != nil {
			return nil, err
		}
	}
	return value.Null{}, nil
}
