package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/miniscript-lang/miniscript/pkg/miniscript"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Compile and run a MiniScript file",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runFile(args[0])
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runFile(path string) error {
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

	// run_until_done returns early on a yield (spec §5 "Scheduling
	// model"); a one-shot CLI run keeps calling it until the program is
	// actually finished, rather than exposing step-by-step control.
	for !it.Done() {
		done, err := it.RunUntilDone(time.Minute, false)
		if err != nil {
			return fmt.Errorf("%s", err.Error())
		}
		if done {
			break
		}
	}
	return nil
}

func writeSink(w *os.File, text string, appendEOL bool) {
	fmt.Fprint(w, text)
	if appendEOL {
		fmt.Fprintln(w)
	}
}
