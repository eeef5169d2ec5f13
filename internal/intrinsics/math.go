package intrinsics

import (
	"math"

	"github.com/miniscript-lang/miniscript/internal/value"
	"github.com/miniscript-lang/miniscript/internal/vm"

	mserrors "github.com/miniscript-lang/miniscript/internal/errors"
)

func num(args []value.Value, i int, def float64) float64 {
	if i >= len(args) {
		return def
	}
	if n, ok := args[i].(value.Number); ok {
		return float64(n)
	}
	if _, ok := args[i].(value.Null); ok {
		return def
	}
	return def
}

func unaryMath(f func(float64) float64) vm.IntrinsicFunc {
	return func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		x := num(ctx.PendingArgs, 0, 0)
		return vm.Done(value.Number(f(x))), nil
	}
}

// registerMath wires the Math category (spec §4.4).
func registerMath(t *Table) {
	t.register("abs", 1, unaryMath(math.Abs))
	t.register("acos", 1, unaryMath(math.Acos))
	t.register("asin", 1, unaryMath(math.Asin))
	t.register("atan", 2, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		y := num(ctx.PendingArgs, 0, 0)
		x := num(ctx.PendingArgs, 1, 1)
		return vm.Done(value.Number(math.Atan2(y, x))), nil
	})
	t.register("ceil", 1, unaryMath(math.Ceil))
	t.register("floor", 1, unaryMath(math.Floor))
	t.register("cos", 1, unaryMath(math.Cos))
	t.register("sin", 1, unaryMath(math.Sin))
	t.register("tan", 1, unaryMath(math.Tan))
	t.register("log", 2, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		x := num(ctx.PendingArgs, 0, 0)
		base := num(ctx.PendingArgs, 1, math.E)
		if base == math.E {
			return vm.Done(value.Number(math.Log(x))), nil
		}
		return vm.Done(value.Number(math.Log(x) / math.Log(base))), nil
	})
	t.register("pi", 0, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		return vm.Done(value.Number(math.Pi)), nil
	})
	t.register("sign", 1, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		x := num(ctx.PendingArgs, 0, 0)
		switch {
		case x > 0:
			return vm.Done(value.Number(1)), nil
		case x < 0:
			return vm.Done(value.Number(-1)), nil
		default:
			return vm.Done(value.Number(0)), nil
		}
	})
	t.register("sqrt", 1, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		x := num(ctx.PendingArgs, 0, 0)
		if x < 0 {
			return vm.IntrinsicResult{}, mserrors.NewRuntimeError(mserrors.KindGeneric, "sqrt of a negative number")
		}
		return vm.Done(value.Number(math.Sqrt(x))), nil
	})
	t.register("round", 2, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		x := num(ctx.PendingArgs, 0, 0)
		places := int(num(ctx.PendingArgs, 1, 0))
		scale := math.Pow(10, float64(places))
		return vm.Done(value.Number(math.Round(x*scale) / scale)), nil
	})
}
