package vm

import (
	"fmt"

	"github.com/miniscript-lang/miniscript/internal/value"

	mserrors "github.com/miniscript-lang/miniscript/internal/errors"
)

// ElemBofA implements the `a[b]` opcode (spec §4.3 "ElemBofA"): map lookup
// walking __isa, list/string indexing with negative-index wrap, and
// method-style dispatch to the per-type prototype map when the base is a
// list/string/number/function and the key is a string.
func ElemBofA(m *Machine, base, key value.Value) (value.Value, error) {
	switch b := base.(type) {
	case *value.Map:
		v, ok, err := b.Lookup(key)
		if err != nil {
			return nil, mserrors.NewLimitExceededError(err.Error())
		}
		if !ok {
			return nil, mserrors.NewKeyError(fmt.Sprintf("key not found: %s", value.CodeForm(key)))
		}
		return v, nil
	case *value.List:
		if n, ok := key.(value.Number); ok {
			i, err := listIndex(b, n)
			if err != nil {
				return nil, err
			}
			return b.Items[i], nil
		}
		return protoLookup(m.ListProto, key)
	case value.Str:
		if n, ok := key.(value.Number); ok {
			i, err := stringIndex(b, n)
			if err != nil {
				return nil, err
			}
			return value.Str([]rune(b)[i]), nil
		}
		return protoLookup(m.StringProto, key)
	case value.Number:
		return protoLookup(m.NumberProto, key)
	case *value.Function:
		return protoLookup(m.FunctionProto, key)
	case value.Null:
		return nil, mserrors.NewTypeError("cannot index null")
	default:
		return nil, mserrors.NewTypeError("cannot index a " + value.TypeName(base))
	}
}

func protoLookup(proto *value.Map, key value.Value) (value.Value, error) {
	if proto == nil {
		return nil, mserrors.NewKeyError(fmt.Sprintf("key not found: %s", value.CodeForm(key)))
	}
	v, ok, err := proto.Lookup(key)
	if err != nil {
		return nil, mserrors.NewLimitExceededError(err.Error())
	}
	if !ok {
		return nil, mserrors.NewKeyError(fmt.Sprintf("key not found: %s", value.CodeForm(key)))
	}
	return v, nil
}

// ElemBofIterA implements the `for` loop's element-access opcode (spec
// §4.3 "ElemBofIterA"): iterating a Map yields {key, value} pairs at
// position idx; iterating a List/Str behaves like ElemBofA.
func ElemBofIterA(m *Machine, base value.Value, idx int) (value.Value, error) {
	switch b := base.(type) {
	case *value.Map:
		if idx < 0 || idx >= b.Len() {
			return nil, mserrors.NewIndexError("map iteration index out of range")
		}
		k := b.Keys()[idx]
		v, _ := b.Get(k)
		pair := value.NewMap()
		pair.Set(value.Str("key"), k)
		pair.Set(value.Str("value"), v)
		return pair, nil
	case *value.List:
		return ElemBofA(m, base, value.Number(idx))
	case value.Str:
		return ElemBofA(m, base, value.Number(idx))
	default:
		return nil, mserrors.NewTypeError("cannot iterate a " + value.TypeName(base))
	}
}

// LengthOfA implements spec §4.3 "LengthOfA".
func LengthOfA(v value.Value) (value.Value, error) {
	switch t := v.(type) {
	case *value.List:
		return value.Number(len(t.Items)), nil
	case value.Str:
		return value.Number(len([]rune(t))), nil
	case *value.Map:
		return value.Number(t.Len()), nil
	default:
		return nil, mserrors.NewTypeError("cannot take the length of a " + value.TypeName(v))
	}
}

// AssignIndexed implements the `base[idx] = val` effect shared by the
// OpSetElem opcode and a SeqElem lvalue (spec §4.3 "SetElem").
func AssignIndexed(base, idx, val value.Value) error {
	switch b := base.(type) {
	case *value.Map:
		if override := b.AssignOverride; override != nil && override(idx, val) {
			return nil
		}
		b.Set(idx, val)
		return nil
	case *value.List:
		n, ok := idx.(value.Number)
		if !ok {
			return mserrors.NewTypeError("list index must be a number")
		}
		i, err := listIndex(b, n)
		if err != nil {
			return err
		}
		b.Items[i] = val
		return nil
	default:
		return mserrors.NewTypeError("cannot assign an index on a " + value.TypeName(base))
	}
}

// listIndex resolves a (possibly negative, possibly fractional) numeric
// index against a list, returning an IndexError out of range.
func listIndex(l *value.List, n value.Number) (int, error) {
	i := int(n)
	if i < 0 {
		i += len(l.Items)
	}
	if i < 0 || i >= len(l.Items) {
		return 0, mserrors.NewIndexError(fmt.Sprintf("list index %v out of range", float64(n)))
	}
	return i, nil
}

func stringIndex(s value.Str, n value.Number) (int, error) {
	runes := []rune(s)
	i := int(n)
	if i < 0 {
		i += len(runes)
	}
	if i < 0 || i >= len(runes) {
		return 0, mserrors.NewIndexError(fmt.Sprintf("string index %v out of range", float64(n)))
	}
	return i, nil
}
