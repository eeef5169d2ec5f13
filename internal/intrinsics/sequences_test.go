package intrinsics_test

import (
	"testing"

	"github.com/miniscript-lang/miniscript/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numberList(t *testing.T, v value.Value) []float64 {
	t.Helper()
	l, ok := v.(*value.List)
	require.True(t, ok, "expected a list, got %T", v)
	out := make([]float64, len(l.Items))
	for i, item := range l.Items {
		n, ok := item.(value.Number)
		require.True(t, ok, "item %d is not a Number: %T", i, item)
		out[i] = float64(n)
	}
	return out
}

func TestRangeAscending(t *testing.T) {
	got := callIntrinsic(t, "range", value.Number(1), value.Number(3))
	assert.Equal(t, []float64{1, 2, 3}, numberList(t, got))
}

// range(3,1) with no explicit step must count down, not return an empty
// list (see DESIGN.md's note on this fix).
func TestRangeDescendingDefaultsStepToMinusOne(t *testing.T) {
	got := callIntrinsic(t, "range", value.Number(3), value.Number(1))
	assert.Equal(t, []float64{3, 2, 1}, numberList(t, got))
}

func TestRangeExplicitStep(t *testing.T) {
	got := callIntrinsic(t, "range", value.Number(0), value.Number(10), value.Number(5))
	assert.Equal(t, []float64{0, 5, 10}, numberList(t, got))
}

func TestRangeZeroStepIsAnError(t *testing.T) {
	table := intrinsicsTable(t)
	fn := intrinsicFunc(t, table, "range")
	ctx := contextWith(table, []value.Value{value.Number(0), value.Number(1), value.Number(0)})
	_, err := fn(ctx, nil)
	assert.Error(t, err)
}

func TestSliceListBounds(t *testing.T) {
	list := value.NewList([]value.Value{value.Number(1), value.Number(2), value.Number(3), value.Number(4), value.Number(5)})
	got := callIntrinsic(t, "slice", list, value.Number(1), value.Number(3))
	assert.Equal(t, []float64{2, 3}, numberList(t, got))
}

func TestSliceOmittedToRunsToEnd(t *testing.T) {
	list := value.NewList([]value.Value{value.Number(1), value.Number(2), value.Number(3)})
	got := callIntrinsic(t, "slice", list, value.Number(1))
	assert.Equal(t, []float64{2, 3}, numberList(t, got))
}

func TestJoinDefaultDelimiterIsSpace(t *testing.T) {
	list := value.NewList([]value.Value{value.Str("a"), value.Str("b"), value.Str("c")})
	got := callIntrinsic(t, "join", list)
	assert.Equal(t, value.Str("a b c"), got)
}

func TestJoinCustomDelimiter(t *testing.T) {
	list := value.NewList([]value.Value{value.Str("a"), value.Str("b")})
	got := callIntrinsic(t, "join", list, value.Str(","))
	assert.Equal(t, value.Str("a,b"), got)
}
