package vm

import (
	"fmt"

	"github.com/miniscript-lang/miniscript/internal/value"

	mserrors "github.com/miniscript-lang/miniscript/internal/errors"
)

const (
	nameSelf    = "self"
	nameSuper   = "super"
	nameOuter   = "outer"
	nameLocals  = "locals"
	nameGlobals = "globals"
)

// GetVar resolves a variable name against ctx, implementing the lookup
// order in spec §4.3 "Variable lookup (get_var)".
func GetVar(m *Machine, ctx *Context, name string, localOnly LocalOnlyMode) (value.Value, error) {
	switch name {
	case nameSelf:
		if ctx.Self != nil {
			return ctx.Self, nil
		}
		return value.Null{}, nil
	case nameOuter:
		if ctx.OuterVars != nil {
			return ctx.OuterVars, nil
		}
		return m.Global().Locals, nil
	case nameLocals:
		return ctx.Locals, nil
	case nameGlobals:
		return m.Global().Locals, nil
	}

	if v, ok := ctx.Locals.Get(value.Str(name)); ok {
		return v, nil
	}

	if localOnly != LocalOnlyOff {
		if localOnly == LocalOnlyStrict {
			return nil, mserrors.NewUndefinedLocalError(name)
		}
		if m.Host != nil {
			m.Host.DeprecationWarning("Warning: assignment inside \"if\" block is a local, not yet-defined variable \""+name+"\"", ctx.CurrentLine())
		} else {
			m.StandardOutput("Warning: \""+name+"\" is a local variable that has not yet been assigned", true)
		}
	}

	if ctx.OuterVars != nil {
		if v, ok := ctx.OuterVars.Get(value.Str(name)); ok {
			return v, nil
		}
	}

	if ctx != m.Global() {
		if v, ok := m.Global().Locals.Get(value.Str(name)); ok {
			return v, nil
		}
	}

	if m.Intrinsics != nil {
		if id, ok := m.Intrinsics.ByName(name); ok {
			if _, _, arity, ok := m.Intrinsics.ByID(id); ok {
				return intrinsicFunctionValue(id, name, arity), nil
			}
		}
	}

	return nil, mserrors.NewUndefinedIdentifierError(name)
}

// intrinsicFunctionValue wraps an intrinsic id in a value.Function with one
// optional (default null) parameter per declared arity, whose code
// re-pushes those parameters and calls CallIntrinsicA, so that intrinsics
// can be stored, passed, and called exactly like user functions.
func intrinsicFunctionValue(id int, name string, arity int) *value.Function {
	params := make([]value.Param, arity)
	code := make([]value.Instruction, 0, arity+2)
	for i := 0; i < arity; i++ {
		argName := fmt.Sprintf("arg%d", i)
		params[i] = value.Param{Name: argName, Default: value.Null{}}
		code = append(code, value.Instruction{Op: value.OpPushParam, A: Var{Name: argName}})
	}
	code = append(code,
		value.Instruction{Op: value.OpCallIntrinsicA, LHS: Temp{Index: 0}, A: value.Number(id)},
		value.Instruction{Op: value.OpReturnA, A: Temp{Index: 0}},
	)
	return &value.Function{Name: name, Params: params, Code: code}
}

// SetVar implements spec §4.3 "Assignment (set_var)".
func SetVar(m *Machine, ctx *Context, name string, val value.Value) error {
	switch name {
	case nameSelf:
		ctx.Self = val
		return nil
	case nameGlobals, nameLocals:
		return mserrors.NewRuntimeError(mserrors.KindGeneric, "cannot assign to \""+name+"\"")
	}

	target := ctx.Locals
	if override := target.AssignOverride; override != nil {
		if override(value.Str(name), val) {
			return nil
		}
	}
	target.Set(value.Str(name), val)
	return nil
}

// CurrentLine returns the source line of the instruction about to execute,
// or 0 if unknown.
func (c *Context) CurrentLine() int {
	if c.PC < 0 || c.PC >= len(c.Code) {
		return 0
	}
	return c.Code[c.PC].Line
}
