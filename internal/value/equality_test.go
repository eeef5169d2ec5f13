package value

import (
	"math"
	"testing"
)

func TestCyclicListEqualsItself(t *testing.T) {
	l := NewList(nil)
	l.Items = []Value{Number(1), l}
	if got := Equal(l, l); got != 1 {
		t.Fatalf("a==a = %v, want 1", got)
	}
}

func TestEqualitySymmetric(t *testing.T) {
	a := NewList([]Value{Number(1), Str("x")})
	b := NewList([]Value{Number(1), Str("x")})
	if Equal(a, b) != Equal(b, a) {
		t.Fatalf("equality not symmetric")
	}
}

func TestMapIsaChainDepthLimit(t *testing.T) {
	root := NewMap()
	cur := root
	for i := 0; i < MaxISAChainDepth+5; i++ {
		next := NewMap()
		next.Set(Str(IsaKey), cur)
		cur = next
	}
	_, _, err := cur.Lookup(Str("missing"))
	if err == nil {
		t.Fatalf("expected depth-exceeded error")
	}
}

func TestMapIdentityKeyByValue(t *testing.T) {
	m := NewMap()
	m.Set(Number(1), Str("one"))
	v, ok := m.Get(Number(1.0))
	if !ok || v != Str("one") {
		t.Fatalf("expected lookup by numeric identity to succeed")
	}
}

func TestNegativeZeroIsDistinctMapKeyFromZero(t *testing.T) {
	m := NewMap()
	m.Set(Number(0), Str("pos"))
	m.Set(Number(math.Copysign(0, -1)), Str("neg"))
	if m.Len() != 2 {
		t.Fatalf("expected +0 and -0 to be distinct keys, got len=%d", m.Len())
	}
}
