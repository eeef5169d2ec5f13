package intrinsics

import (
	"github.com/miniscript-lang/miniscript/internal/value"
	"github.com/miniscript-lang/miniscript/internal/vm"

	mserrors "github.com/miniscript-lang/miniscript/internal/errors"
)

// registerChar wires the Character category (spec §4.4).
func registerChar(t *Table) {
	t.register("char", 1, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		cp := num(ctx.PendingArgs, 0, 0)
		return vm.Done(value.Str(rune(int(cp)))), nil
	})
	t.register("code", 1, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		args := ctx.PendingArgs
		if len(args) == 0 {
			return vm.IntrinsicResult{}, mserrors.NewTypeError("code requires a string argument")
		}
		s, ok := args[0].(value.Str)
		if !ok {
			return vm.IntrinsicResult{}, mserrors.NewTypeError("code requires a string argument")
		}
		runes := []rune(s)
		if len(runes) == 0 {
			return vm.Done(value.Number(0)), nil
		}
		return vm.Done(value.Number(runes[0])), nil
	})
}
