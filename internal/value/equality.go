package value

// pairKey identifies a (a, b) comparison in progress, used to terminate
// cyclic equality/hash traversal (spec §3 "Recursive equality/hash").
type pairKey struct {
	a, b any
}

// Equal computes the fuzzy equality of a and b in [0, 1] (spec §3). Equal
// types compare structurally; different types are always 0 except Null,
// which only equals Null. Cyclic lists/maps terminate via a visited-pair
// set and report 1 for a cycle already being compared (ensuring
// reflexivity on self-referential structures, testable property 8).
func Equal(a, b Value) float64 {
	return equal(a, b, make(map[pairKey]bool))
}

func equal(a, b Value, visiting map[pairKey]bool) float64 {
	switch av := a.(type) {
	case Null:
		if _, ok := b.(Null); ok {
			return 1
		}
		return 0
	case Number:
		if bv, ok := b.(Number); ok {
			if av == bv {
				return 1
			}
		}
		return 0
	case Str:
		if bv, ok := b.(Str); ok {
			if av == bv {
				return 1
			}
		}
		return 0
	case *List:
		bv, ok := b.(*List)
		if !ok {
			return 0
		}
		if av == bv {
			return 1
		}
		if len(av.Items) != len(bv.Items) {
			return 0
		}
		key := pairKey{av, bv}
		if visiting[key] {
			return 1
		}
		visiting[key] = true
		defer delete(visiting, key)
		if len(av.Items) == 0 {
			return 1
		}
		sum := 0.0
		for i := range av.Items {
			sum += equal(av.Items[i], bv.Items[i], visiting)
		}
		return sum / float64(len(av.Items))
	case *Map:
		bv, ok := b.(*Map)
		if !ok {
			return 0
		}
		if av == bv {
			return 1
		}
		if av.Len() != bv.Len() {
			return 0
		}
		key := pairKey{av, bv}
		if visiting[key] {
			return 1
		}
		visiting[key] = true
		defer delete(visiting, key)
		if av.Len() == 0 {
			return 1
		}
		sum := 0.0
		for _, k := range av.Keys() {
			aVal, _ := av.Get(k)
			bVal, ok := bv.Get(k)
			if !ok {
				continue
			}
			sum += equal(aVal, bVal, visiting)
		}
		return sum / float64(av.Len())
	case *Function:
		bv, ok := b.(*Function)
		if ok && av == bv {
			return 1
		}
		return 0
	default:
		// Var/Temp/SeqElem compile-time nodes: identity only.
		return 0
	}
}

// RefEqual reports reference/value identity, the semantics of the
// `refEquals` intrinsic (spec §4.4): numbers and strings by value, lists,
// maps, and functions by object identity.
func RefEqual(a, b Value) bool {
	switch av := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case Number:
		bv, ok := b.(Number)
		return ok && av == bv
	case Str:
		bv, ok := b.(Str)
		return ok && av == bv
	case *List:
		bv, ok := b.(*List)
		return ok && av == bv
	case *Map:
		bv, ok := b.(*Map)
		return ok && av == bv
	case *Function:
		bv, ok := b.(*Function)
		return ok && av == bv
	default:
		return a == b
	}
}

// Clamp01 clamps x to [0, 1], used by the fuzzy and/or/not opcodes (spec
// §4.3 "aAndB, aOrB, notA").
func Clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// TypeName returns the lowercase type name used by the `typeof`-style
// intrinsics and type-prototype dispatch (spec §4.3 "Method resolution").
func TypeName(v Value) string {
	switch v.(type) {
	case Null, nil:
		return "null"
	case Number:
		return "number"
	case Str:
		return "string"
	case *List:
		return "list"
	case *Map:
		return "map"
	case *Function:
		return "funcRef"
	default:
		return "unknown"
	}
}
