package intrinsics

import (
	"github.com/miniscript-lang/miniscript/internal/value"
	"github.com/miniscript-lang/miniscript/internal/vm"
)

// signMagnitude32 splits a MiniScript number into a sign and a 32-bit
// magnitude, the representation spec §4.4 requires for bitAnd/bitOr/bitXor.
func signMagnitude32(n float64) (neg bool, mag uint32) {
	if n < 0 {
		return true, uint32(-n)
	}
	return false, uint32(n)
}

func recombine(neg bool, mag uint32) value.Number {
	if neg {
		return value.Number(-float64(mag))
	}
	return value.Number(float64(mag))
}

func bitwiseOp(op func(a, b uint32) uint32) vm.IntrinsicFunc {
	return func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		an := num(ctx.PendingArgs, 0, 0)
		bn := num(ctx.PendingArgs, 1, 0)
		_, am := signMagnitude32(an)
		_, bm := signMagnitude32(bn)
		neg := an < 0 || bn < 0
		return vm.Done(recombine(neg, op(am, bm))), nil
	}
}

// registerBitwise wires the Bitwise category (spec §4.4).
func registerBitwise(t *Table) {
	t.register("bitAnd", 2, bitwiseOp(func(a, b uint32) uint32 { return a & b }))
	t.register("bitOr", 2, bitwiseOp(func(a, b uint32) uint32 { return a | b }))
	t.register("bitXor", 2, bitwiseOp(func(a, b uint32) uint32 { return a ^ b }))
}
