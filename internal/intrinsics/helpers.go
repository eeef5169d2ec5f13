package intrinsics

import (
	"github.com/miniscript-lang/miniscript/internal/value"
	"github.com/miniscript-lang/miniscript/internal/vm"
)

// selfAndRest splits an intrinsic call's arguments into (self, rest),
// regardless of whether it was invoked through dot-call binding (self
// lives on ctx.Self, PendingArgs holds only the explicit arguments) or as
// a plain function call (self is the first positional argument).
func selfAndRest(ctx *vm.Context) (value.Value, []value.Value) {
	if ctx.Self != nil {
		if _, isNull := ctx.Self.(value.Null); !isNull {
			return ctx.Self, ctx.PendingArgs
		}
	}
	args := ctx.PendingArgs
	if len(args) == 0 {
		return value.Null{}, nil
	}
	return args[0], args[1:]
}

func argAt(args []value.Value, i int) value.Value {
	if i < 0 || i >= len(args) {
		return nil
	}
	return args[i]
}

func asInt(v value.Value, def int) int {
	if n, ok := v.(value.Number); ok {
		return int(n)
	}
	return def
}

func boolNumber(b bool) value.Number {
	if b {
		return value.Number(1)
	}
	return value.Number(0)
}

// wrapIndex resolves a possibly-negative index against a length, per spec
// §4.4 "correct negative-index wrap and bounds checks".
func wrapIndex(idx, length int) (int, bool) {
	i := idx
	if i < 0 {
		i += length
	}
	if i < 0 || i >= length {
		return 0, false
	}
	return i, true
}

func sliceBounds(from, to value.Value, length int) (int, int) {
	f := 0
	if n, ok := from.(value.Number); ok {
		f = int(n)
	}
	if f < 0 {
		f += length
	}
	if f < 0 {
		f = 0
	}
	if f > length {
		f = length
	}
	tt := length
	if n, ok := to.(value.Number); ok {
		tt = int(n)
		if tt < 0 {
			tt += length
		}
	}
	if tt > length {
		tt = length
	}
	if tt < f {
		tt = f
	}
	return f, tt
}
