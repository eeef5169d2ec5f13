package parser_test

import (
	"strings"
	"testing"
	"time"

	"github.com/miniscript-lang/miniscript/internal/intrinsics"
	"github.com/miniscript-lang/miniscript/internal/parser"
	"github.com/miniscript-lang/miniscript/internal/vm"
)

// run compiles source and executes it to completion, returning everything
// written to standard_output concatenated together. These exercise the
// whole compile-then-run pipeline rather than inspecting TAC directly,
// mirroring spec §8's end-to-end scenario table.
func run(t *testing.T, source string) string {
	t.Helper()
	code, err := parser.New().Compile(source)
	if err != nil {
		t.Fatalf("Compile(%q): %v", source, err)
	}
	var out strings.Builder
	m := vm.NewMachine(code, intrinsics.New())
	m.StandardOutput = func(text string, appendEOL bool) {
		out.WriteString(text)
		if appendEOL {
			out.WriteString("\n")
		}
	}
	done, err := m.RunUntilDone(2*time.Second, false)
	if err != nil {
		t.Fatalf("RunUntilDone(%q): %v", source, err)
	}
	if !done {
		t.Fatalf("RunUntilDone(%q) did not finish", source)
	}
	return out.String()
}

func TestArithmeticPrint(t *testing.T) {
	if got, want := run(t, `print 6*7`), "42\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestComparisonChaining(t *testing.T) {
	src := `if 1 < 2 < 3 then print "ok" else print "no"`
	if got, want := run(t, src), "ok\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	src2 := `if 1 < 2 < 0 then print "ok" else print "no"`
	if got, want := run(t, src2), "no\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestForOverDescendingRange(t *testing.T) {
	src := `for i in range(3,1)
print i
end for`
	if got, want := run(t, src), "3\n2\n1\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestWhileBreakContinue(t *testing.T) {
	src := `i = 0
while i < 10
  i = i + 1
  if i == 3 then continue
  if i == 6 then break
  print i
end while`
	if got, want := run(t, src), "1\n2\n4\n5\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestIfElseIfChain(t *testing.T) {
	src := `x = 2
if x == 1 then
  print "one"
else if x == 2 then
  print "two"
else
  print "other"
end if`
	if got, want := run(t, src), "two\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFunctionCallAndReturn(t *testing.T) {
	src := `square = function(n)
  return n * n
end function
print square(5)`
	if got, want := run(t, src), "25\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFunctionDefaultParam(t *testing.T) {
	src := `greet = function(name = "world")
  return "hi " + name
end function
print greet
print greet("bob")`
	if got, want := run(t, src), "hi world\nhi bob\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestListLiteralAndIndexing(t *testing.T) {
	src := `a = [10, 20, 30]
print a[1]`
	if got, want := run(t, src), "20\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSliceSyntaxDesugarsToSliceIntrinsic(t *testing.T) {
	src := `a = [1, 2, 3, 4, 5]
b = a[1:3]
print b`
	if got, want := run(t, src), "[2, 3]\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMapLiteralAndDotAccess(t *testing.T) {
	src := `m = {"a": 1, "b": 2}
print m.a + m["b"]`
	if got, want := run(t, src), "3\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestCompoundAssignment(t *testing.T) {
	src := `x = 10
x += 5
print x`
	if got, want := run(t, src), "15\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestShortCircuitAndSkipsRightOperand(t *testing.T) {
	// the right operand calls print as a side effect; if `and` evaluated it
	// despite the left operand already being false, "called" would print
	// before "0".
	src := `result = 0 and (print("called") == null)
print result`
	if got, want := run(t, src), "0\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestAndComputesFuzzyResultWhenNotShortCircuited(t *testing.T) {
	if got, want := run(t, `print 1 and 0.5`), "0.5\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestCommandCallForm(t *testing.T) {
	// print's signature is (value, delimiter); the second comma-separated
	// positional argument becomes its delimiter, not a second value.
	src := `print "a", "b"`
	if got, want := run(t, src), "ab"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestAddressOfSuppressesAutoInvoke(t *testing.T) {
	// `@f` keeps g bound to the function itself rather than its call
	// result; calling g() explicitly still invokes it, and a bare read of
	// f (no `@`) auto-invokes.
	src := `f = function()
  return 42
end function
g = @f
print g()
print f`
	if got, want := run(t, src), "42\n42\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
