package miniscript

import "github.com/miniscript-lang/miniscript/internal/value"

// fromNative converts a Go-native value into the interpreter's internal
// Value representation, for SetGlobalValue (spec §6 "set_global_value").
// A value.Value is passed through unchanged, letting advanced callers
// build list/map literals directly with the internal types if they import
// them; everything else maps through the obvious Go-native correspondence.
func fromNative(v any) value.Value {
	switch t := v.(type) {
	case nil:
		return value.Null{}
	case value.Value:
		return t
	case bool:
		if t {
			return value.Number(1)
		}
		return value.Number(0)
	case int:
		return value.Number(float64(t))
	case int64:
		return value.Number(float64(t))
	case float64:
		return value.Number(t)
	case string:
		return value.Str(t)
	case []any:
		items := make([]value.Value, len(t))
		for i, e := range t {
			items[i] = fromNative(e)
		}
		return value.NewList(items)
	case map[string]any:
		m := value.NewMap()
		for k, val := range t {
			m.Set(value.Str(k), fromNative(val))
		}
		return m
	default:
		return value.Null{}
	}
}

// toNative converts an internal Value to a Go-native value, for
// GetGlobalValue. Functions have no native Go equivalent and are returned
// as-is (callers that need function identity can type-assert against
// *value.Function).
func toNative(v value.Value) any {
	switch t := v.(type) {
	case nil, value.Null:
		return nil
	case value.Number:
		return float64(t)
	case value.Str:
		return string(t)
	case *value.List:
		out := make([]any, len(t.Items))
		for i, item := range t.Items {
			out[i] = toNative(item)
		}
		return out
	case *value.Map:
		out := make(map[string]any, t.Len())
		for _, k := range t.Keys() {
			ks, ok := k.(value.Str)
			if !ok {
				continue
			}
			val, _ := t.Get(k)
			out[string(ks)] = toNative(val)
		}
		return out
	default:
		return v
	}
}
