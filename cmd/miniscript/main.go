// Command miniscript is the CLI surface for the MiniScript interpreter
// (spec §6 "CLI surface"): a bare invocation starts a REPL, a file
// argument runs it, and --dump-tac/--test expose debugging and
// test-suite-reproduction modes.
package main

import (
	"os"

	"github.com/miniscript-lang/miniscript/cmd/miniscript/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
