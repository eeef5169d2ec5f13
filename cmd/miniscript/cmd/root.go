package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the interpreter's own version, reported by the `version`
// intrinsic (via pkg/miniscript.HostInfo) and by `--version`/`-v`.
var Version = "0.1.0-dev"

var rootCmd = &cobra.Command{
	Use:   "miniscript [file]",
	Short: "MiniScript interpreter",
	Long: `miniscript is an embeddable MiniScript interpreter: lexer, single-pass
parser/compiler emitting three-address code, and a cooperative-yield
virtual machine.

With no arguments it starts an interactive REPL; given a file, it compiles
and runs it.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runRoot,
}

var (
	showVersion bool
	dumpTACFlag bool
	testFlag    bool
)

func init() {
	rootCmd.Flags().BoolVarP(&showVersion, "version", "v", false, "print version and exit")
	rootCmd.Flags().BoolVar(&dumpTACFlag, "dump-tac", false, "dump compiled TAC before and after running the given file")
	rootCmd.Flags().BoolVar(&testFlag, "test", false, "run the built-in test suite (or --integration <file>)")
	rootCmd.Flags().StringVar(&integrationFile, "integration", "", "path to a ====/---- test-suite file, used with --test")
}

// Execute runs the root command, dispatching to the REPL, a single-file
// run, or one of the subcommands.
func Execute() error {
	return rootCmd.Execute()
}

func runRoot(cmd *cobra.Command, args []string) error {
	if showVersion {
		printVersion()
		return nil
	}
	if testFlag {
		return runTests(integrationFile)
	}
	if dumpTACFlag {
		if len(args) != 1 {
			return fmt.Errorf("--dump-tac requires a file argument")
		}
		return dumpTAC(args[0])
	}
	if len(args) == 1 {
		return runFile(args[0])
	}
	return startRepl()
}
