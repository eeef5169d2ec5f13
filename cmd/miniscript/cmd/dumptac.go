package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/miniscript-lang/miniscript/internal/value"
	"github.com/miniscript-lang/miniscript/internal/vm"
	"github.com/miniscript-lang/miniscript/pkg/miniscript"
	"github.com/spf13/cobra"
)

var dumpTACCmd = &cobra.Command{
	Use:   "dump-tac <file>",
	Short: "Dump compiled three-address code before and after running a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return dumpTAC(args[0])
	},
}

func init() {
	rootCmd.AddCommand(dumpTACCmd)
}

func dumpTAC(path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	it := miniscript.New(string(source))
	it.Host = miniscript.HostInfo{Name: "miniscript", Version: Version}
	it.StandardOutput = func(text string, appendEOL bool) { writeSink(os.Stdout, text, appendEOL) }
	it.ImplicitOutput = func(text string, appendEOL bool) { writeSink(os.Stdout, text, appendEOL) }
	it.ErrorOutput = func(text string, appendEOL bool) { writeSink(os.Stderr, text, appendEOL) }

	if err := it.Compile(); err != nil {
		return fmt.Errorf("%s", err.Error())
	}
	code := it.Code()

	fmt.Println("TAC (before execution):")
	printCode(code)

	for !it.Done() {
		done, err := it.RunUntilDone(time.Minute, false)
		if err != nil {
			return fmt.Errorf("%s", err.Error())
		}
		if done {
			break
		}
	}

	fmt.Println("\nTAC (after execution):")
	printCode(code)
	return nil
}

func printCode(code []value.Instruction) {
	for i, line := range code {
		fmt.Printf("% 4d: %-16s %-24s %-24s %s\n",
			i, line.Op, formatOperand(line.LHS), formatOperand(line.A), formatOperand(line.B))
	}
}

func formatOperand(v value.Value) string {
	if v == nil {
		return "-"
	}
	switch t := v.(type) {
	case vm.Var:
		if t.NoInvoke {
			return "@" + t.Name
		}
		return t.Name
	case vm.Temp:
		return fmt.Sprintf("t%d", t.Index)
	case *vm.SeqElem:
		return fmt.Sprintf("%s[%s]", formatOperand(t.Base), formatOperand(t.Index))
	case value.Number:
		return value.FormatNumber(float64(t))
	case value.Str:
		return value.CodeForm(t)
	case *value.List, *value.Map:
		return value.CodeForm(t)
	case *value.Function:
		return t.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
