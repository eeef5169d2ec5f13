package intrinsics

import (
	"github.com/miniscript-lang/miniscript/internal/value"
	"github.com/miniscript-lang/miniscript/internal/vm"
)

// registerTypeProtos wires the Type prototypes category (spec §4.4): each
// returns the per-Machine prototype map, lazily created on first use.
func registerTypeProtos(t *Table) {
	t.register("number", 0, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		if ctx.VM.NumberProto == nil {
			ctx.VM.NumberProto = value.NewMap()
		}
		return vm.Done(ctx.VM.NumberProto), nil
	})
	t.register("string", 0, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		if ctx.VM.StringProto == nil {
			ctx.VM.StringProto = value.NewMap()
		}
		return vm.Done(ctx.VM.StringProto), nil
	})
	t.register("list", 0, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		if ctx.VM.ListProto == nil {
			ctx.VM.ListProto = value.NewMap()
		}
		return vm.Done(ctx.VM.ListProto), nil
	})
	t.register("map", 0, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		if ctx.VM.MapProto == nil {
			ctx.VM.MapProto = value.NewMap()
		}
		return vm.Done(ctx.VM.MapProto), nil
	})
	t.register("funcRef", 0, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		if ctx.VM.FunctionProto == nil {
			ctx.VM.FunctionProto = value.NewMap()
		}
		return vm.Done(ctx.VM.FunctionProto), nil
	})
}
