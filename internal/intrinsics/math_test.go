package intrinsics_test

import (
	"math"
	"testing"

	"github.com/miniscript-lang/miniscript/internal/intrinsics"
	"github.com/miniscript-lang/miniscript/internal/value"
	"github.com/miniscript-lang/miniscript/internal/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// intrinsicsTable returns a fresh, fully-registered intrinsic table.
func intrinsicsTable(t *testing.T) *intrinsics.Table {
	t.Helper()
	return intrinsics.New()
}

// intrinsicFunc looks up name in table, failing the test if it isn't
// registered.
func intrinsicFunc(t *testing.T, table *intrinsics.Table, name string) vm.IntrinsicFunc {
	t.Helper()
	id, ok := table.ByName(name)
	require.Truef(t, ok, "intrinsic %q not registered", name)
	fn, _, _, ok := table.ByID(id)
	require.True(t, ok)
	return fn
}

// contextWith builds a bare Context carrying args as PendingArgs, wired to
// a Machine backed by table (some intrinsics read ctx.VM for output or
// cross-intrinsic state).
func contextWith(table *intrinsics.Table, args []value.Value) *vm.Context {
	return &vm.Context{PendingArgs: args, VM: vm.NewMachine(nil, table)}
}

// callIntrinsic looks up name in a fresh table and invokes it with args as
// PendingArgs, asserting the call completes in one step (no partial
// result), and returns the terminal value.
func callIntrinsic(t *testing.T, name string, args ...value.Value) value.Value {
	t.Helper()
	table := intrinsicsTable(t)
	fn := intrinsicFunc(t, table, name)
	ctx := contextWith(table, args)
	result, err := fn(ctx, nil)
	require.NoError(t, err)
	require.True(t, result.Done, "expected %q to complete without yielding", name)
	return result.Result
}

func TestMathAbsFloorCeil(t *testing.T) {
	assert.Equal(t, value.Number(5), callIntrinsic(t, "abs", value.Number(-5)))
	assert.Equal(t, value.Number(2), callIntrinsic(t, "floor", value.Number(2.9)))
	assert.Equal(t, value.Number(3), callIntrinsic(t, "ceil", value.Number(2.1)))
}

func TestMathPi(t *testing.T) {
	got := callIntrinsic(t, "pi")
	assert.InDelta(t, math.Pi, float64(got.(value.Number)), 1e-12)
}

func TestMathAtanDefaultsXToOne(t *testing.T) {
	got := callIntrinsic(t, "atan", value.Number(1))
	assert.InDelta(t, math.Atan2(1, 1), float64(got.(value.Number)), 1e-12)
}

func TestMathSign(t *testing.T) {
	assert.Equal(t, value.Number(1), callIntrinsic(t, "sign", value.Number(4.2)))
	assert.Equal(t, value.Number(-1), callIntrinsic(t, "sign", value.Number(-4.2)))
	assert.Equal(t, value.Number(0), callIntrinsic(t, "sign", value.Number(0)))
}
