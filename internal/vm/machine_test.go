package vm_test

import (
	"strings"
	"testing"
	"time"

	"github.com/miniscript-lang/miniscript/internal/intrinsics"
	"github.com/miniscript-lang/miniscript/internal/value"
	"github.com/miniscript-lang/miniscript/internal/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These construct TAC programs by hand rather than through
// internal/parser, exercising Machine/Context/opcode dispatch in
// isolation from compilation.

func TestAssignAndArithmetic(t *testing.T) {
	x := vm.Var{Name: "x"}
	code := []value.Instruction{
		{Op: value.OpAPlusB, LHS: x, A: value.Number(2), B: value.Number(3)},
	}
	m := vm.NewMachine(code, intrinsics.New())
	done, err := m.RunUntilDone(time.Second, false)
	require.NoError(t, err)
	assert.True(t, done)

	got, ok := m.Global().Locals.Get(value.Str("x"))
	require.True(t, ok)
	assert.Equal(t, value.Number(5), got)
}

func TestGotoLoopCountsDown(t *testing.T) {
	i := vm.Var{Name: "i"}
	// i = 3
	// loop: print-free countdown via AMinusB, goto while i > 0
	code := []value.Instruction{
		{Op: value.OpAssignA, LHS: i, A: value.Number(3)},            // 0
		{Op: value.OpAMinusB, LHS: i, A: i, B: value.Number(1)},      // 1: i = i - 1
		{Op: value.OpAGreaterThanB, LHS: vm.Temp{Index: 0}, A: i, B: value.Number(0)}, // 2
		{Op: value.OpGotoAifB, A: value.Number(1), B: vm.Temp{Index: 0}},              // 3: loop while i > 0
	}
	m := vm.NewMachine(code, intrinsics.New())
	done, err := m.RunUntilDone(time.Second, false)
	require.NoError(t, err)
	assert.True(t, done)

	got, ok := m.Global().Locals.Get(value.Str("i"))
	require.True(t, ok)
	assert.Equal(t, value.Number(0), got)
}

func TestPrintCallsStandardOutput(t *testing.T) {
	table := intrinsics.New()
	id, ok := table.ByName("print")
	require.True(t, ok)

	code := []value.Instruction{
		{Op: value.OpPushParam, A: value.Str("hello")},
		{Op: value.OpCallIntrinsicA, LHS: vm.Var{Name: "_"}, A: value.Number(float64(id))},
	}
	m := vm.NewMachine(code, table)
	var out strings.Builder
	m.StandardOutput = func(text string, appendEOL bool) {
		out.WriteString(text)
		if appendEOL {
			out.WriteString("\n")
		}
	}
	done, err := m.RunUntilDone(time.Second, false)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, "hello\n", out.String())
}

func TestCallFunctionAndReturn(t *testing.T) {
	// square(n) = n * n
	fn := &value.Function{
		Params: []value.Param{{Name: "n"}},
		Code: []value.Instruction{
			{Op: value.OpATimesB, A: vm.Var{Name: "n"}, B: vm.Var{Name: "n"}, LHS: vm.Temp{Index: 0}},
			{Op: value.OpReturnA, A: vm.Temp{Index: 0}},
		},
	}
	result := vm.Var{Name: "result"}
	code := []value.Instruction{
		{Op: value.OpPushParam, A: value.Number(6)},
		{Op: value.OpCallFunctionA, LHS: result, A: fn},
	}
	m := vm.NewMachine(code, intrinsics.New())
	done, err := m.RunUntilDone(time.Second, false)
	require.NoError(t, err)
	assert.True(t, done)

	got, ok := m.Global().Locals.Get(value.Str("result"))
	require.True(t, ok)
	assert.Equal(t, value.Number(36), got)
}

func TestStopTruncatesStack(t *testing.T) {
	code := []value.Instruction{
		{Op: value.OpGotoA, A: value.Number(0)}, // infinite loop
	}
	m := vm.NewMachine(code, intrinsics.New())
	require.NoError(t, m.Step())
	assert.True(t, m.Running())
	m.Stop()
	assert.False(t, m.Running())
}

func TestResetPreservesVariablesWhenRequested(t *testing.T) {
	code := []value.Instruction{
		{Op: value.OpAssignA, LHS: vm.Var{Name: "x"}, A: value.Number(1)},
	}
	m := vm.NewMachine(code, intrinsics.New())
	_, err := m.RunUntilDone(time.Second, false)
	require.NoError(t, err)

	m.Reset(code, false)
	got, ok := m.Global().Locals.Get(value.Str("x"))
	require.True(t, ok)
	assert.Equal(t, value.Number(1), got)

	m.Reset(code, true)
	_, ok = m.Global().Locals.Get(value.Str("x"))
	assert.False(t, ok)
}
