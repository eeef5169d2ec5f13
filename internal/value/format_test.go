package value

import "testing"

func TestFormatNumberIntegersHaveNoDecimal(t *testing.T) {
	if got := FormatNumber(42); got != "42" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatNumberNegativeZeroNormalized(t *testing.T) {
	neg := FormatNumber(-0.0)
	if neg != "0" {
		t.Fatalf("got %q, want 0", neg)
	}
}

func TestFormatNumberTrailingZerosStripped(t *testing.T) {
	if got := FormatNumber(1.5); got != "1.5" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatNumberExponentialForLargeMagnitude(t *testing.T) {
	got := FormatNumber(1.23e15)
	if got == "" {
		t.Fatal("empty result")
	}
	if got[len(got)-3] != 'E' && got[len(got)-4] != 'E' {
		t.Fatalf("expected exponential form, got %q", got)
	}
}

func TestNumberRoundTrip(t *testing.T) {
	for _, n := range []float64{0, 1, 42, -3.5, 100.25} {
		s := FormatNumber(n)
		got, err := ParseNumber(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		if got != n {
			t.Fatalf("round trip %v -> %q -> %v", n, s, got)
		}
	}
}

func TestCodeFormQuotesStringsWithDoubledQuotes(t *testing.T) {
	got := CodeForm(Str(`Hi"There`))
	if got != `"Hi""There"` {
		t.Fatalf("got %q", got)
	}
}

func TestCodeFormList(t *testing.T) {
	l := NewList([]Value{Number(1), Number(2), Number(3)})
	if got := CodeForm(l); got != "[1, 2, 3]" {
		t.Fatalf("got %q", got)
	}
}

func TestCodeFormMap(t *testing.T) {
	m := NewMap()
	m.Set(Str("a"), Number(1))
	if got := CodeForm(m); got != `{"a": 1}` {
		t.Fatalf("got %q", got)
	}
}
