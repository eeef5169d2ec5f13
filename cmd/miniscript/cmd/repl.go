package cmd

import (
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/miniscript-lang/miniscript/pkg/miniscript"
	"github.com/spf13/cobra"
)

var (
	promptColor  = color.New(color.FgCyan)
	resultColor  = color.New(color.FgYellow)
	errColor     = color.New(color.FgRed)
	bannerColor  = color.New(color.FgGreen)
	replPrompt   = "> "
	replContinue = ">>> "
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive MiniScript session",
	RunE: func(_ *cobra.Command, _ []string) error {
		return startRepl()
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func startRepl() error {
	bannerColor.Println("MiniScript " + Version)
	promptColor.Println("Type MiniScript statements and press enter. Ctrl+D to exit.")

	rl, err := readline.New(replPrompt)
	if err != nil {
		return err
	}
	defer rl.Close()

	it := miniscript.New("")
	it.Host = miniscript.HostInfo{Name: "miniscript", Version: Version}
	it.StandardOutput = func(text string, appendEOL bool) { writeSinkColor(resultColor, text, appendEOL) }
	it.ImplicitOutput = func(text string, appendEOL bool) { writeSinkColor(resultColor, text, appendEOL) }
	it.ErrorOutput = func(text string, appendEOL bool) { writeSinkColor(errColor, text, appendEOL) }

	for {
		line, err := rl.Readline()
		if err != nil { // EOF (Ctrl+D) or interrupt
			return nil
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		rl.SaveHistory(line)

		_ = it.Repl(line, 5*time.Second) // errors are already written to ErrorOutput
		if it.NeedMoreInput() {
			rl.SetPrompt(replContinue)
		} else {
			rl.SetPrompt(replPrompt)
		}
	}
}

func writeSinkColor(c *color.Color, text string, appendEOL bool) {
	if appendEOL {
		c.Println(text)
	} else {
		c.Print(text)
	}
}
