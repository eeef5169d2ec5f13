package value

import (
	"fmt"
	"math"
)

// IsaKey is the reserved map entry name used for prototype chains (spec
// §3, §4.3).
const IsaKey = "__isa"

// Map is a mutable, insertion-ordered mapping Value -> Value. Keys are
// compared by value identity (spec §3): numbers by bit pattern, strings by
// text, lists recursively element-wise, maps and functions by object
// identity.
//
// AssignOverride, if set, is consulted by set_var (spec §4.3) before a
// plain assignment through this map; returning true suppresses the
// assignment (used by host-bound maps with computed properties).
type Map struct {
	order          []Value
	slots          map[string]int // identity key -> index into order/values
	values         []Value
	AssignOverride func(key, val Value) bool
}

// NewMap creates an empty Map.
func NewMap() *Map {
	return &Map{slots: make(map[string]int)}
}

func (*Map) isValue() {}

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.order) }

// Keys returns the keys in insertion order. Callers must not mutate the
// returned slice.
func (m *Map) Keys() []Value { return m.order }

// Get returns the value under key and whether it was present, without
// walking __isa.
func (m *Map) Get(key Value) (Value, bool) {
	idx, ok := m.slots[IdentityKey(key)]
	if !ok {
		return nil, false
	}
	return m.values[idx], true
}

// Set inserts or overwrites key -> val, preserving insertion order on
// update.
func (m *Map) Set(key, val Value) {
	k := IdentityKey(key)
	if idx, ok := m.slots[k]; ok {
		m.values[idx] = val
		return
	}
	m.slots[k] = len(m.order)
	m.order = append(m.order, key)
	m.values = append(m.values, val)
}

// Delete removes key if present.
func (m *Map) Delete(key Value) bool {
	k := IdentityKey(key)
	idx, ok := m.slots[k]
	if !ok {
		return false
	}
	m.order = append(m.order[:idx], m.order[idx+1:]...)
	m.values = append(m.values[:idx], m.values[idx+1:]...)
	delete(m.slots, k)
	for kk, i := range m.slots {
		if i > idx {
			m.slots[kk] = i - 1
		}
	}
	return true
}

// Isa returns the map's __isa entry, and whether it is itself a Map
// (terminating the chain otherwise).
func (m *Map) Isa() (*Map, bool) {
	v, ok := m.Get(Str(IsaKey))
	if !ok {
		return nil, false
	}
	proto, ok := v.(*Map)
	return proto, ok
}

// Lookup walks the __isa chain to find key, to a maximum depth of
// MaxISAChainDepth (spec §4.3, testable property 7). It returns the value,
// whether found, and an error if the chain exceeds the depth bound.
func (m *Map) Lookup(key Value) (Value, bool, error) {
	cur := m
	for depth := 0; depth < MaxISAChainDepth; depth++ {
		if v, ok := cur.Get(key); ok {
			return v, true, nil
		}
		proto, ok := cur.Isa()
		if !ok {
			return nil, false, nil
		}
		cur = proto
	}
	return nil, false, fmt.Errorf("__isa chain exceeds depth %d", MaxISAChainDepth)
}

// Clone returns a shallow copy: a fresh Map with the same key/value pairs
// in the same order, used by CopyA and by the `replace` intrinsic.
func (m *Map) Clone() *Map {
	cp := NewMap()
	for i, k := range m.order {
		cp.Set(k, m.values[i])
	}
	return cp
}

// IdentityKey computes the map-key identity string for v, per spec §3's
// "Value identity" rule. Lists hash recursively with a cycle guard; maps
// and functions hash by pointer identity.
func IdentityKey(v Value) string {
	return identityKey(v, make(map[*List]bool))
}

func identityKey(v Value, visiting map[*List]bool) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case Null:
		return "null"
	case Number:
		return fmt.Sprintf("num:%016x", math.Float64bits(float64(t)))
	case Str:
		return "str:" + string(t)
	case *List:
		if visiting[t] {
			return "list:<cycle>"
		}
		visiting[t] = true
		defer delete(visiting, t)
		s := "list:["
		for i, item := range t.Items {
			if i > 0 {
				s += ","
			}
			s += identityKey(item, visiting)
		}
		return s + "]"
	case *Map:
		return fmt.Sprintf("map:%p", t)
	case *Function:
		return fmt.Sprintf("func:%p", t)
	default:
		// Var, Temp, SeqElem (vm package) are compile-time nodes; they are
		// never legitimately used as runtime map keys, but every Value
		// still needs a deterministic identity for defensive correctness.
		return fmt.Sprintf("node:%p", t)
	}
}
