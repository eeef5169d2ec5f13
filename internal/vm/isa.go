package vm

import "github.com/miniscript-lang/miniscript/internal/value"

// AIsaB implements the `isa` opcode (spec §4.3 "AIsaB"): true if a's chain
// (found by walking a's type root, then __isa from there) ever reaches b by
// reference, bounded by value.MaxISAChainDepth.
func AIsaB(m *Machine, a, b value.Value) (bool, error) {
	if isNullValue(a) && isNullValue(b) {
		return true, nil
	}
	target, ok := b.(*value.Map)
	if !ok {
		return false, nil
	}
	root, ok := isaRoot(m, a)
	if !ok {
		return false, nil
	}
	cur := root
	for depth := 0; depth < value.MaxISAChainDepth; depth++ {
		if cur == target {
			return true, nil
		}
		proto, ok := cur.Isa()
		if !ok {
			return false, nil
		}
		cur = proto
	}
	return false, nil
}

// isNullValue reports whether v is MiniScript's null (spec §4.3 "AIsaB":
// "null isa null = 1"), treating both a nil interface and an explicit
// value.Null{} as null.
func isNullValue(v value.Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(value.Null)
	return ok
}

// isaRoot returns the map an isa-chain walk starts from for a given value:
// the value itself if it is already a Map, otherwise the machine's
// per-type prototype (spec §4.3: "lists/strings/numbers/functions redirect
// method and isa resolution to their type's prototype map").
func isaRoot(m *Machine, v value.Value) (*value.Map, bool) {
	switch v.(type) {
	case *value.Map:
		return v.(*value.Map), true
	case value.Number:
		return m.NumberProto, m.NumberProto != nil
	case value.Str:
		return m.StringProto, m.StringProto != nil
	case *value.List:
		return m.ListProto, m.ListProto != nil
	case *value.Function:
		return m.FunctionProto, m.FunctionProto != nil
	default:
		return nil, false
	}
}
