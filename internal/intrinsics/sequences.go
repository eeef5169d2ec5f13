package intrinsics

import (
	"math/rand"
	"sort"
	"strings"

	"github.com/miniscript-lang/miniscript/internal/value"
	"github.com/miniscript-lang/miniscript/internal/vm"

	mserrors "github.com/miniscript-lang/miniscript/internal/errors"
)

// registerSequences wires the Sequences category (spec §4.4).
func registerSequences(t *Table) {
	t.register("len", 1, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		self, _ := selfAndRest(ctx)
		v, err := vm.LengthOfA(self)
		if err != nil {
			return vm.IntrinsicResult{}, err
		}
		return vm.Done(v), nil
	})

	t.register("hasIndex", 2, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		self, rest := selfAndRest(ctx)
		idx := argAt(rest, 0)
		switch s := self.(type) {
		case *value.List:
			n, ok := idx.(value.Number)
			if !ok {
				return vm.Done(boolNumber(false)), nil
			}
			_, inRange := wrapIndex(int(n), len(s.Items))
			return vm.Done(boolNumber(inRange)), nil
		case value.Str:
			n, ok := idx.(value.Number)
			if !ok {
				return vm.Done(boolNumber(false)), nil
			}
			_, inRange := wrapIndex(int(n), len([]rune(s)))
			return vm.Done(boolNumber(inRange)), nil
		case *value.Map:
			_, found := s.Get(idx)
			return vm.Done(boolNumber(found)), nil
		default:
			return vm.Done(boolNumber(false)), nil
		}
	})

	t.register("indexes", 1, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		self, _ := selfAndRest(ctx)
		out := value.NewList(nil)
		switch s := self.(type) {
		case *value.List:
			for i := range s.Items {
				out.Items = append(out.Items, value.Number(i))
			}
		case value.Str:
			for i := range []rune(s) {
				out.Items = append(out.Items, value.Number(i))
			}
		case *value.Map:
			out.Items = append(out.Items, s.Keys()...)
		}
		return vm.Done(out), nil
	})

	t.register("indexOf", 3, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		self, rest := selfAndRest(ctx)
		needle := argAt(rest, 0)
		after := argAt(rest, 1)
		switch s := self.(type) {
		case *value.List:
			start := 0
			if n, ok := after.(value.Number); ok {
				start = int(n) + 1
				if start < 0 {
					start = 0
				}
			}
			for i := start; i < len(s.Items); i++ {
				if value.Equal(s.Items[i], needle) >= 0.5 {
					return vm.Done(value.Number(i)), nil
				}
			}
			return vm.Done(value.Null{}), nil
		case value.Str:
			needleStr, _ := needle.(value.Str)
			runes := []rune(s)
			needleRunes := []rune(needleStr)
			start := 0
			if n, ok := after.(value.Number); ok {
				start = int(n) + 1
			}
			if start < 0 {
				start = 0
			}
			for i := start; i+len(needleRunes) <= len(runes); i++ {
				if string(runes[i:i+len(needleRunes)]) == string(needleRunes) {
					return vm.Done(value.Number(i)), nil
				}
			}
			return vm.Done(value.Null{}), nil
		case *value.Map:
			for _, k := range s.Keys() {
				v, _ := s.Get(k)
				if value.Equal(v, needle) >= 0.5 {
					return vm.Done(k), nil
				}
			}
			return vm.Done(value.Null{}), nil
		default:
			return vm.Done(value.Null{}), nil
		}
	})

	t.register("insert", 3, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		self, rest := selfAndRest(ctx)
		l, ok := self.(*value.List)
		if !ok {
			return vm.IntrinsicResult{}, mserrors.NewTypeError("insert requires a list")
		}
		idx := asInt(argAt(rest, 0), len(l.Items))
		val := argAt(rest, 1)
		if idx < 0 {
			idx += len(l.Items) + 1
		}
		if idx < 0 || idx > len(l.Items) {
			return vm.IntrinsicResult{}, mserrors.NewIndexError("insert index out of range")
		}
		l.Items = append(l.Items, nil)
		copy(l.Items[idx+1:], l.Items[idx:])
		l.Items[idx] = val
		return vm.Done(l), nil
	})

	t.register("remove", 2, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		self, rest := selfAndRest(ctx)
		key := argAt(rest, 0)
		switch s := self.(type) {
		case *value.Map:
			return vm.Done(boolNumber(s.Delete(key))), nil
		case *value.List:
			n, ok := key.(value.Number)
			if !ok {
				return vm.IntrinsicResult{}, mserrors.NewTypeError("remove index must be a number")
			}
			i, ok := wrapIndex(int(n), len(s.Items))
			if !ok {
				return vm.IntrinsicResult{}, mserrors.NewIndexError("remove index out of range")
			}
			removed := s.Items[i]
			s.Items = append(s.Items[:i], s.Items[i+1:]...)
			return vm.Done(removed), nil
		case value.Str:
			needle, _ := key.(value.Str)
			return vm.Done(value.Str(strings.ReplaceAll(string(s), string(needle), ""))), nil
		default:
			return vm.IntrinsicResult{}, mserrors.NewTypeError("cannot remove from a " + value.TypeName(self))
		}
	})

	t.register("replace", 4, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		self, rest := selfAndRest(ctx)
		oldV := argAt(rest, 0)
		newV := argAt(rest, 1)
		limit := -1
		if n, ok := argAt(rest, 2).(value.Number); ok {
			limit = int(n)
		}
		switch s := self.(type) {
		case value.Str:
			oldStr, _ := oldV.(value.Str)
			newStr, _ := newV.(value.Str)
			if limit < 0 {
				return vm.Done(value.Str(strings.ReplaceAll(string(s), string(oldStr), string(newStr)))), nil
			}
			return vm.Done(value.Str(strings.Replace(string(s), string(oldStr), string(newStr), limit))), nil
		case *value.Map:
			out := s.Clone()
			count := 0
			for _, k := range out.Keys() {
				if limit >= 0 && count >= limit {
					break
				}
				v, _ := out.Get(k)
				if value.Equal(v, oldV) >= 0.5 {
					out.Set(k, newV)
					count++
				}
			}
			return vm.Done(out), nil
		case *value.List:
			out := make([]value.Value, len(s.Items))
			copy(out, s.Items)
			count := 0
			for i, v := range out {
				if limit >= 0 && count >= limit {
					break
				}
				if value.Equal(v, oldV) >= 0.5 {
					out[i] = newV
					count++
				}
			}
			return vm.Done(value.NewList(out)), nil
		default:
			return vm.IntrinsicResult{}, mserrors.NewTypeError("cannot replace in a " + value.TypeName(self))
		}
	})

	t.register("slice", 3, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		self, rest := selfAndRest(ctx)
		from := argAt(rest, 0)
		to := argAt(rest, 1)
		switch s := self.(type) {
		case *value.List:
			f, tt := sliceBounds(from, to, len(s.Items))
			if f >= tt {
				return vm.Done(value.NewList(nil)), nil
			}
			out := make([]value.Value, tt-f)
			copy(out, s.Items[f:tt])
			return vm.Done(value.NewList(out)), nil
		case value.Str:
			runes := []rune(s)
			f, tt := sliceBounds(from, to, len(runes))
			if f >= tt {
				return vm.Done(value.Str("")), nil
			}
			return vm.Done(value.Str(string(runes[f:tt]))), nil
		default:
			return vm.IntrinsicResult{}, mserrors.NewTypeError("cannot slice a " + value.TypeName(self))
		}
	})

	t.register("values", 1, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		self, _ := selfAndRest(ctx)
		m, ok := self.(*value.Map)
		if !ok {
			return vm.Done(self), nil
		}
		out := make([]value.Value, 0, m.Len())
		for _, k := range m.Keys() {
			v, _ := m.Get(k)
			out = append(out, v)
		}
		return vm.Done(value.NewList(out)), nil
	})

	t.register("join", 2, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		self, rest := selfAndRest(ctx)
		delim := " "
		if s, ok := argAt(rest, 0).(value.Str); ok {
			delim = string(s)
		}
		l, ok := self.(*value.List)
		if !ok {
			return vm.IntrinsicResult{}, mserrors.NewTypeError("join requires a list")
		}
		parts := make([]string, len(l.Items))
		for i, it := range l.Items {
			parts[i] = value.ToDisplayString(it)
		}
		return vm.Done(value.Str(strings.Join(parts, delim))), nil
	})

	t.register("split", 3, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		self, rest := selfAndRest(ctx)
		s, ok := self.(value.Str)
		if !ok {
			return vm.IntrinsicResult{}, mserrors.NewTypeError("split requires a string")
		}
		delim := " "
		if ds, ok := argAt(rest, 0).(value.Str); ok {
			delim = string(ds)
		}
		maxCount := -1
		if n, ok := argAt(rest, 1).(value.Number); ok {
			maxCount = int(n)
		}
		var parts []string
		if maxCount > 0 {
			parts = strings.SplitN(string(s), delim, maxCount)
		} else {
			parts = strings.Split(string(s), delim)
		}
		out := make([]value.Value, len(parts))
		for i, p := range parts {
			out[i] = value.Str(p)
		}
		return vm.Done(value.NewList(out)), nil
	})

	t.register("push", 2, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		self, rest := selfAndRest(ctx)
		l, ok := self.(*value.List)
		if !ok {
			return vm.IntrinsicResult{}, mserrors.NewTypeError("push requires a list")
		}
		l.Items = append(l.Items, argAt(rest, 0))
		return vm.Done(l), nil
	})

	t.register("pop", 1, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		self, _ := selfAndRest(ctx)
		l, ok := self.(*value.List)
		if !ok || len(l.Items) == 0 {
			return vm.Done(value.Null{}), nil
		}
		last := l.Items[len(l.Items)-1]
		l.Items = l.Items[:len(l.Items)-1]
		return vm.Done(last), nil
	})

	t.register("pull", 1, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		self, _ := selfAndRest(ctx)
		l, ok := self.(*value.List)
		if !ok || len(l.Items) == 0 {
			return vm.Done(value.Null{}), nil
		}
		first := l.Items[0]
		l.Items = l.Items[1:]
		return vm.Done(first), nil
	})

	t.register("sort", 3, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		self, rest := selfAndRest(ctx)
		l, ok := self.(*value.List)
		if !ok {
			return vm.IntrinsicResult{}, mserrors.NewTypeError("sort requires a list")
		}
		byKey := argAt(rest, 0)
		ascending := true
		if n, ok := argAt(rest, 1).(value.Number); ok {
			ascending = n != 0
		}
		keyOf := func(v value.Value) value.Value {
			if byKey == nil {
				return v
			}
			switch b := v.(type) {
			case *value.Map:
				kv, _ := b.Get(byKey)
				return kv
			case *value.List:
				if n, ok := byKey.(value.Number); ok {
					i, ok := wrapIndex(int(n), len(b.Items))
					if !ok {
						return value.Null{}
					}
					return b.Items[i]
				}
			}
			return value.Null{}
		}
		sort.SliceStable(l.Items, func(i, j int) bool {
			ki, kj := keyOf(l.Items[i]), keyOf(l.Items[j])
			_, iNull := ki.(value.Null)
			_, jNull := kj.(value.Null)
			if iNull || jNull {
				if iNull == jNull {
					return false
				}
				// Direct mode sorts null to the end (ascending) / start
				// (descending); keyed mode (spec §4.4 "Sort key semantics")
				// inverts that: null sorts to the start (ascending) / end
				// (descending).
				nullFirst := !ascending
				if byKey != nil {
					nullFirst = ascending
				}
				if nullFirst {
					return iNull
				}
				return jNull
			}
			cmp, err := value.Compare(ki, kj)
			if err != nil {
				return false
			}
			if ascending {
				return cmp < 0
			}
			return cmp > 0
		})
		return vm.Done(l), nil
	})

	t.register("shuffle", 1, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		self, _ := selfAndRest(ctx)
		l, ok := self.(*value.List)
		if !ok {
			return vm.IntrinsicResult{}, mserrors.NewTypeError("shuffle requires a list")
		}
		rand.Shuffle(len(l.Items), func(i, j int) { l.Items[i], l.Items[j] = l.Items[j], l.Items[i] })
		return vm.Done(l), nil
	})

	t.register("sum", 1, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		self, _ := selfAndRest(ctx)
		var total float64
		switch s := self.(type) {
		case *value.List:
			for _, v := range s.Items {
				if n, ok := v.(value.Number); ok {
					total += float64(n)
				}
			}
		case *value.Map:
			for _, k := range s.Keys() {
				v, _ := s.Get(k)
				if n, ok := v.(value.Number); ok {
					total += float64(n)
				}
			}
		}
		return vm.Done(value.Number(total)), nil
	})

	t.register("range", 3, func(ctx *vm.Context, _ any) (vm.IntrinsicResult, error) {
		args := ctx.PendingArgs
		from := numArg(args, 0, 0)
		to := numArg(args, 1, 0)
		defaultStep := 1.0
		if to < from {
			defaultStep = -1
		}
		step := numArg(args, 2, defaultStep)
		if step == 0 {
			return vm.IntrinsicResult{}, mserrors.NewRuntimeError(mserrors.KindGeneric, "range step cannot be 0")
		}
		var out []value.Value
		if step > 0 {
			for v := from; v <= to; v += step {
				out = append(out, value.Number(v))
			}
		} else {
			for v := from; v >= to; v += step {
				out = append(out, value.Number(v))
			}
		}
		return vm.Done(value.NewList(out)), nil
	})
}

func numArg(args []value.Value, i int, def float64) float64 {
	if i >= len(args) {
		return def
	}
	if n, ok := args[i].(value.Number); ok {
		return float64(n)
	}
	return def
}
