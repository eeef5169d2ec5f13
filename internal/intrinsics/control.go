package intrinsics

import (
	"time"

	"github.com/miniscript-lang/miniscript/internal/value"
	"github.com/miniscript-lang/miniscript/internal/vm"
)

// registerControl wires the Control/IO category (spec §4.4).
func registerControl(t *Table) {
	t.register("print", 2, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		args := ctx.PendingArgs
		text := value.ToDisplayString(argAt(args, 0))
		delim := "\n"
		if d, ok := argAt(args, 1).(value.Str); ok {
			delim = string(d)
		}
		if ctx.VM.StandardOutput != nil {
			if delim == "\n" {
				ctx.VM.StandardOutput(text, true)
			} else {
				ctx.VM.StandardOutput(text+delim, false)
			}
		}
		return vm.Done(value.Null{}), nil
	})

	t.register("yield", 0, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		ctx.VM.Yielding = true
		return vm.Done(value.Null{}), nil
	})

	// wait implements spec §5's canonical partial-result example: the first
	// invocation stashes a target elapsed-time, later invocations compare
	// against it until reached.
	t.register("wait", 1, func(ctx *vm.Context, partial any) (vm.IntrinsicResult, error) {
		var target time.Duration
		if partial == nil {
			secs := numArg(ctx.PendingArgs, 0, 0)
			target = ctx.VM.ElapsedTime() + time.Duration(secs*float64(time.Second))
		} else {
			target = partial.(time.Duration)
		}
		if ctx.VM.ElapsedTime() >= target {
			return vm.Done(value.Null{}), nil
		}
		return vm.NotDone(target), nil
	})

	t.register("time", 0, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		return vm.Done(value.Number(ctx.VM.ElapsedTime().Seconds())), nil
	})

	t.register("stackTrace", 0, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		if v, ok := ctx.VM.Global().Locals.Get(value.Str("_stackAtBreak")); ok {
			return vm.Done(v), nil
		}
		frames := value.NewList(nil)
		for i := len(ctx.VM.Stack) - 1; i >= 0; i-- {
			name := ctx.VM.Stack[i].FuncName
			if name == "" {
				name = "main"
			}
			frames.Items = append(frames.Items, value.Str(name))
		}
		return vm.Done(frames), nil
	})

	t.register("intrinsics", 0, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		if ctx.VM.Intrinsics == nil {
			return vm.Done(value.NewMap()), nil
		}
		return vm.Done(ctx.VM.Intrinsics.Prototype()), nil
	})

	t.register("version", 0, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		if ctx.VM.VersionMap == nil {
			return vm.Done(value.NewMap()), nil
		}
		return vm.Done(ctx.VM.VersionMap), nil
	})
}
