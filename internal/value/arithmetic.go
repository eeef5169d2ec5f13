package value

import (
	"math"
	"strings"

	mserrors "github.com/miniscript-lang/miniscript/internal/errors"
)

// Add implements the `+` operator (spec §4.3 "Arithmetic and string
// semantics"): numeric addition, string concatenation, or fresh-list
// concatenation.
func Add(a, b Value) (Value, error) {
	switch av := a.(type) {
	case Number:
		if bv, ok := b.(Number); ok {
			return Number(float64(av) + float64(bv)), nil
		}
	case Str:
		bs := ToDisplayString(b)
		if _, ok := b.(Str); !ok {
			bs = CodeForm(b)
		}
		result := string(av) + bs
		if len(result) > MaxStringLength {
			return nil, mserrors.NewLimitExceededError("string exceeds maximum length")
		}
		return Str(result), nil
	case *List:
		if bv, ok := b.(*List); ok {
			out := make([]Value, 0, len(av.Items)+len(bv.Items))
			out = append(out, av.Items...)
			out = append(out, bv.Items...)
			if len(out) > MaxListLength {
				return nil, mserrors.NewLimitExceededError("list exceeds maximum length")
			}
			return NewList(out), nil
		}
	}
	return nil, mserrors.NewTypeError("cannot add " + TypeName(a) + " and " + TypeName(b))
}

// Sub implements the `-` operator: numeric subtraction, or for strings,
// removing a trailing suffix if present (spec §4.3). `list - list` is not
// defined.
func Sub(a, b Value) (Value, error) {
	switch av := a.(type) {
	case Number:
		if bv, ok := b.(Number); ok {
			return Number(float64(av) - float64(bv)), nil
		}
	case Str:
		if bv, ok := b.(Str); ok {
			if strings.HasSuffix(string(av), string(bv)) {
				return Str(strings.TrimSuffix(string(av), string(bv))), nil
			}
			return av, nil
		}
	}
	return nil, mserrors.NewTypeError("cannot subtract " + TypeName(b) + " from " + TypeName(a))
}

// Mul implements the `*` operator: numeric multiplication, string/list
// replication by a (possibly fractional) count (spec §4.3).
func Mul(a, b Value) (Value, error) {
	switch av := a.(type) {
	case Number:
		if bv, ok := b.(Number); ok {
			return Number(float64(av) * float64(bv)), nil
		}
	case Str:
		if n, ok := b.(Number); ok {
			return Str(repeatString(string(av), float64(n))), nil
		}
	case *List:
		if n, ok := b.(Number); ok {
			out, err := repeatList(av.Items, float64(n))
			if err != nil {
				return nil, err
			}
			return NewList(out), nil
		}
	}
	return nil, mserrors.NewTypeError("cannot multiply " + TypeName(a) + " by " + TypeName(b))
}

// Div implements the `/` operator. `string / n` is defined as `string *
// (1/n)` (spec §4.3).
func Div(a, b Value) (Value, error) {
	switch av := a.(type) {
	case Number:
		if bv, ok := b.(Number); ok {
			return Number(float64(av) / float64(bv)), nil
		}
	case Str:
		if n, ok := b.(Number); ok {
			return Mul(av, Number(1/float64(n)))
		}
	}
	return nil, mserrors.NewTypeError("cannot divide " + TypeName(a) + " by " + TypeName(b))
}

// Mod implements the `%` operator for numbers.
func Mod(a, b Value) (Value, error) {
	av, ok1 := a.(Number)
	bv, ok2 := b.(Number)
	if !ok1 || !ok2 {
		return nil, mserrors.NewTypeError("cannot compute modulo of " + TypeName(a) + " and " + TypeName(b))
	}
	return Number(math.Mod(float64(av), float64(bv))), nil
}

// Pow implements the `^` operator for numbers.
func Pow(a, b Value) (Value, error) {
	av, ok1 := a.(Number)
	bv, ok2 := b.(Number)
	if !ok1 || !ok2 {
		return nil, mserrors.NewTypeError("cannot raise " + TypeName(a) + " to the power of " + TypeName(b))
	}
	return Number(math.Pow(float64(av), float64(bv))), nil
}

func repeatString(s string, n float64) string {
	if n <= 0 || s == "" {
		return ""
	}
	whole := int(math.Floor(n))
	frac := n - float64(whole)
	var sb strings.Builder
	for i := 0; i < whole; i++ {
		sb.WriteString(s)
	}
	runes := []rune(s)
	partial := int(math.Floor(frac * float64(len(runes))))
	sb.WriteString(string(runes[:partial]))
	return sb.String()
}

func repeatList(items []Value, n float64) ([]Value, error) {
	if n <= 0 || len(items) == 0 {
		return nil, nil
	}
	whole := int(math.Floor(n))
	frac := n - float64(whole)
	out := make([]Value, 0, int(float64(len(items))*n)+1)
	for i := 0; i < whole; i++ {
		out = append(out, items...)
	}
	partial := int(math.Floor(frac * float64(len(items))))
	out = append(out, items[:partial]...)
	if len(out) > MaxListLength {
		return nil, mserrors.NewLimitExceededError("list exceeds maximum length")
	}
	return out, nil
}

// Compare orders a and b for the relational operators (spec §4.3). Numbers
// compare numerically; strings compare lexicographically by code point. It
// returns -1, 0, or 1, or an error for incomparable types.
func Compare(a, b Value) (int, error) {
	switch av := a.(type) {
	case Number:
		if bv, ok := b.(Number); ok {
			switch {
			case av < bv:
				return -1, nil
			case av > bv:
				return 1, nil
			default:
				return 0, nil
			}
		}
	case Str:
		if bv, ok := b.(Str); ok {
			return strings.Compare(string(av), string(bv)), nil
		}
	}
	return 0, mserrors.NewTypeError("cannot compare " + TypeName(a) + " and " + TypeName(b))
}
