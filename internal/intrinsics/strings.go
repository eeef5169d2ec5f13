package intrinsics

import (
	"hash/fnv"
	"strings"

	"github.com/miniscript-lang/miniscript/internal/value"
	"github.com/miniscript-lang/miniscript/internal/vm"
)

// registerStrings wires the Strings category (spec §4.4).
func registerStrings(t *Table) {
	t.register("lower", 1, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		self, _ := selfAndRest(ctx)
		s, _ := self.(value.Str)
		return vm.Done(value.Str(strings.ToLower(string(s)))), nil
	})
	t.register("upper", 1, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		self, _ := selfAndRest(ctx)
		s, _ := self.(value.Str)
		return vm.Done(value.Str(strings.ToUpper(string(s)))), nil
	})
	t.register("str", 1, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		self, _ := selfAndRest(ctx)
		return vm.Done(value.Str(value.ToDisplayString(self))), nil
	})
	t.register("val", 1, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		self, _ := selfAndRest(ctx)
		switch t := self.(type) {
		case value.Number:
			return vm.Done(t), nil
		case value.Str:
			n, err := value.ParseNumber(strings.TrimSpace(string(t)))
			if err != nil {
				return vm.Done(value.Number(0)), nil
			}
			return vm.Done(value.Number(n)), nil
		default:
			return vm.Done(value.Number(0)), nil
		}
	})
	t.register("hash", 2, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		self, _ := selfAndRest(ctx)
		h := fnv.New32a()
		h.Write([]byte(value.IdentityKey(self)))
		return vm.Done(value.Number(h.Sum32())), nil
	})
	t.register("refEquals", 2, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		self, rest := selfAndRest(ctx)
		var b value.Value = value.Null{}
		if v := argAt(rest, 0); v != nil {
			b = v
		}
		return vm.Done(boolNumber(value.RefEqual(self, b))), nil
	})
}
