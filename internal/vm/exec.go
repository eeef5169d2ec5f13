package vm

import (
	"github.com/miniscript-lang/miniscript/internal/value"

	mserrors "github.com/miniscript-lang/miniscript/internal/errors"
)

// execInstruction runs the single TAC line at the top context's PC (spec
// §4.3 "Opcode set"). stack is passed by pointer because CallFunctionA and
// ReturnA/pop can grow or shrink it.
func execInstruction(m *Machine, stack *[]*Context) error {
	ctx := (*stack)[len(*stack)-1]
	if ctx.Done() {
		return nil
	}
	instr := ctx.Code[ctx.PC]

	switch instr.Op {
	case value.OpNoop:
		ctx.PC++

	case value.OpAssignA:
		v, err := EvalOperand(m, ctx, instr.A)
		if err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		if err := StoreLValue(m, ctx, instr.LHS, v); err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		ctx.PC++

	case value.OpAssignImplicit:
		v, err := EvalOperand(m, ctx, instr.A)
		if err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		ctx.ImplicitResult++
		if m.StoreImplicit {
			if err := StoreLValue(m, ctx, instr.LHS, v); err != nil {
				return attachLine(err, instr.Line, ctx)
			}
		}
		if m.ImplicitOutput != nil && !isNullValue(v) {
			m.ImplicitOutput(value.ToDisplayString(v), true)
		}
		ctx.PC++

	case value.OpCopyA:
		v, err := EvalOperand(m, ctx, instr.A)
		if err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		if err := StoreLValue(m, ctx, instr.LHS, copyValue(v)); err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		ctx.PC++

	case value.OpAPlusB, value.OpAMinusB, value.OpATimesB, value.OpADivideB, value.OpAModB, value.OpAPowB:
		a, b, err := evalPair(m, ctx, instr)
		if err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		result, err := arith(instr.Op, a, b)
		if err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		if err := StoreLValue(m, ctx, instr.LHS, result); err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		ctx.PC++

	case value.OpAEqualB, value.OpANotEqualB:
		a, b, err := evalPair(m, ctx, instr)
		if err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		score := value.Clamp01(value.Equal(a, b))
		if instr.Op == value.OpANotEqualB {
			score = value.Clamp01(1 - score)
		}
		if err := StoreLValue(m, ctx, instr.LHS, value.Number(score)); err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		ctx.PC++

	case value.OpAGreaterThanB, value.OpAGreatOrEqualB, value.OpALessThanB, value.OpALessOrEqualB:
		a, b, err := evalPair(m, ctx, instr)
		if err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		cmp, err := value.Compare(a, b)
		if err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		var result bool
		switch instr.Op {
		case value.OpAGreaterThanB:
			result = cmp > 0
		case value.OpAGreatOrEqualB:
			result = cmp >= 0
		case value.OpALessThanB:
			result = cmp < 0
		case value.OpALessOrEqualB:
			result = cmp <= 0
		}
		if err := StoreLValue(m, ctx, instr.LHS, boolNumber(result)); err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		ctx.PC++

	case value.OpAAndB, value.OpAOrB:
		a, b, err := evalPair(m, ctx, instr)
		if err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		fuzzy := func(v value.Value) float64 {
			if n, ok := v.(value.Number); ok {
				return value.Clamp01(max(float64(n), -float64(n)))
			}
			return float64(boolNumber(truthy(v)))
		}
		fa, fb := fuzzy(a), fuzzy(b)
		result := value.Clamp01(fa * fb)
		if instr.Op == value.OpAOrB {
			result = value.Clamp01(fa + fb - fa*fb)
		}
		if err := StoreLValue(m, ctx, instr.LHS, value.Number(result)); err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		ctx.PC++

	case value.OpNotA:
		a, err := EvalOperand(m, ctx, instr.A)
		if err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		if err := StoreLValue(m, ctx, instr.LHS, boolNumber(!truthy(a))); err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		ctx.PC++

	case value.OpAIsaB:
		a, b, err := evalPair(m, ctx, instr)
		if err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		ok, err := AIsaB(m, a, b)
		if err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		if err := StoreLValue(m, ctx, instr.LHS, boolNumber(ok)); err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		ctx.PC++

	case value.OpBindAssignA:
		raw, err := EvalOperand(m, ctx, instr.A)
		if err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		fn, ok := raw.(*value.Function)
		if !ok {
			return attachLine(mserrors.NewTypeError("BindAssignA operand must be a function"), instr.Line, ctx)
		}
		if err := StoreLValue(m, ctx, instr.LHS, fn.Bind(ctx.Locals)); err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		ctx.PC++

	case value.OpNewA:
		proto, err := EvalOperand(m, ctx, instr.A)
		if err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		obj := value.NewMap()
		obj.Set(value.Str(value.IsaKey), proto)
		if err := StoreLValue(m, ctx, instr.LHS, obj); err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		ctx.PC++

	case value.OpGotoA:
		target, err := evalTarget(m, ctx, instr.A)
		if err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		ctx.PC = target

	case value.OpGotoAifB:
		cond, err := EvalOperand(m, ctx, instr.B)
		if err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		if truthy(cond) {
			target, err := evalTarget(m, ctx, instr.A)
			if err != nil {
				return attachLine(err, instr.Line, ctx)
			}
			ctx.PC = target
		} else {
			ctx.PC++
		}

	case value.OpGotoAifNotB:
		cond, err := EvalOperand(m, ctx, instr.B)
		if err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		if !truthy(cond) {
			target, err := evalTarget(m, ctx, instr.A)
			if err != nil {
				return attachLine(err, instr.Line, ctx)
			}
			ctx.PC = target
		} else {
			ctx.PC++
		}

	case value.OpGotoAifTrulyB:
		cond, err := EvalOperand(m, ctx, instr.B)
		if err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		if trulyTruthy(cond) {
			target, err := evalTarget(m, ctx, instr.A)
			if err != nil {
				return attachLine(err, instr.Line, ctx)
			}
			ctx.PC = target
		} else {
			ctx.PC++
		}

	case value.OpPushParam:
		v, err := EvalOperand(m, ctx, instr.A)
		if err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		if len(ctx.PendingArgs) >= value.MaxPendingArgs {
			return attachLine(mserrors.NewTooManyArgumentsError("too many pending arguments"), instr.Line, ctx)
		}
		ctx.PendingArgs = append(ctx.PendingArgs, v)
		ctx.PC++

	case value.OpCallFunctionA:
		args := ctx.PendingArgs
		ctx.PendingArgs = nil
		if err := CallFunction(m, stack, ctx, instr.A, instr.LHS, args); err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		ctx.PC++

	case value.OpCallIntrinsicA:
		if err := execCallIntrinsic(m, ctx, instr); err != nil {
			return attachLine(err, instr.Line, ctx)
		}

	case value.OpReturnA:
		v, err := EvalOperand(m, ctx, instr.A)
		if err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		ctx.ReturnValue = v
		ctx.PC = len(ctx.Code)

	case value.OpElemBofA:
		base, idx, err := evalPair(m, ctx, instr)
		if err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		v, err := ElemBofA(m, base, idx)
		if err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		if err := StoreLValue(m, ctx, instr.LHS, v); err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		ctx.PC++

	case value.OpElemBofIterA:
		base, err := EvalOperand(m, ctx, instr.A)
		if err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		idxVal, err := EvalOperand(m, ctx, instr.B)
		if err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		idxNum, ok := idxVal.(value.Number)
		if !ok {
			return attachLine(mserrors.NewTypeError("iteration index must be a number"), instr.Line, ctx)
		}
		v, err := ElemBofIterA(m, base, int(idxNum))
		if err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		if err := StoreLValue(m, ctx, instr.LHS, v); err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		ctx.PC++

	case value.OpLengthOfA:
		a, err := EvalOperand(m, ctx, instr.A)
		if err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		v, err := LengthOfA(a)
		if err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		if err := StoreLValue(m, ctx, instr.LHS, v); err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		ctx.PC++

	case value.OpSetElem:
		base, err := EvalOperand(m, ctx, instr.LHS)
		if err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		idx, err := EvalOperand(m, ctx, instr.A)
		if err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		val, err := EvalOperand(m, ctx, instr.B)
		if err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		if err := AssignIndexed(base, idx, val); err != nil {
			return attachLine(err, instr.Line, ctx)
		}
		ctx.PC++

	default:
		return attachLine(mserrors.NewRuntimeError(mserrors.KindGeneric, "unimplemented opcode"), instr.Line, ctx)
	}

	return nil
}

func execCallIntrinsic(m *Machine, ctx *Context, instr value.Instruction) error {
	idVal, err := EvalOperand(m, ctx, instr.A)
	if err != nil {
		return err
	}
	idNum, ok := idVal.(value.Number)
	if !ok {
		return mserrors.NewTypeError("intrinsic id must be a number")
	}
	id := int(idNum)

	if m.Intrinsics == nil {
		return mserrors.NewRuntimeError(mserrors.KindGeneric, "no intrinsics registered")
	}
	fn, _, _, ok := m.Intrinsics.ByID(id)
	if !ok {
		return mserrors.NewRuntimeError(mserrors.KindGeneric, "unknown intrinsic")
	}

	var partial any
	if ctx.PartialResult != nil && ctx.PartialResult.IntrinsicID == id {
		partial = ctx.PartialResult.Data
	}

	res, err := fn(ctx, partial)
	if err != nil {
		ctx.PartialResult = nil
		ctx.PendingArgs = nil
		return err
	}
	if !res.Done {
		ctx.PartialResult = &partialState{IntrinsicID: id, Data: res.Partial}
		return nil
	}
	ctx.PartialResult = nil
	ctx.PendingArgs = nil
	if err := StoreLValue(m, ctx, instr.LHS, res.Result); err != nil {
		return err
	}
	ctx.PC++
	return nil
}

func evalPair(m *Machine, ctx *Context, instr value.Instruction) (value.Value, value.Value, error) {
	a, err := EvalOperand(m, ctx, instr.A)
	if err != nil {
		return nil, nil, err
	}
	b, err := EvalOperand(m, ctx, instr.B)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func evalTarget(m *Machine, ctx *Context, operand value.Value) (int, error) {
	v, err := EvalOperand(m, ctx, operand)
	if err != nil {
		return 0, err
	}
	n, ok := v.(value.Number)
	if !ok {
		return 0, mserrors.NewTypeError("jump target must be a number")
	}
	return int(n), nil
}

func arith(op value.OpCode, a, b value.Value) (value.Value, error) {
	switch op {
	case value.OpAPlusB:
		return value.Add(a, b)
	case value.OpAMinusB:
		return value.Sub(a, b)
	case value.OpATimesB:
		return value.Mul(a, b)
	case value.OpADivideB:
		return value.Div(a, b)
	case value.OpAModB:
		return value.Mod(a, b)
	case value.OpAPowB:
		return value.Pow(a, b)
	default:
		return nil, mserrors.NewRuntimeError(mserrors.KindGeneric, "not an arithmetic opcode")
	}
}

func boolNumber(b bool) value.Number {
	if b {
		return value.Number(1)
	}
	return value.Number(0)
}

// truthy is MiniScript's general truthiness rule (spec §3): zero numbers,
// empty strings, and null are false; lists, maps, and functions are always
// true regardless of contents.
func truthy(v value.Value) bool {
	switch t := v.(type) {
	case value.Null:
		return false
	case nil:
		return false
	case value.Number:
		return t.Truthy()
	case value.Str:
		return len(t) > 0
	default:
		return true
	}
}

// trulyTruthy is used by GotoAifTrulyB, which short-circuits "and"/"or"
// chains built on fuzzy AEqualB/ANotEqualB scores: a fuzzy match only
// counts as true once it rounds to true (>= 0.5), rather than on any
// nonzero score (spec §4.3 "Fuzzy equality in boolean context").
func trulyTruthy(v value.Value) bool {
	if n, ok := v.(value.Number); ok {
		return float64(n) >= 0.5
	}
	return truthy(v)
}

// copyValue implements CopyA's "copy on literal instantiation" semantics
// for container values; scalars are naturally immutable and pass through.
func copyValue(v value.Value) value.Value {
	switch t := v.(type) {
	case *value.List:
		items := make([]value.Value, len(t.Items))
		copy(items, t.Items)
		return value.NewList(items)
	case *value.Map:
		return t.Clone()
	default:
		return v
	}
}

// attachLine wraps an error with the current instruction's source line if
// it does not already carry a location (spec §7 "Propagation").
func attachLine(err error, line int, ctx *Context) error {
	se, ok := err.(*mserrors.ScriptError)
	if !ok || line <= 0 {
		return err
	}
	return se.WithPosition(mserrors.Position{Line: line}, ctx.FuncName)
}
