package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/miniscript-lang/miniscript/pkg/miniscript"
	"github.com/spf13/cobra"
)

var integrationFile string

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Run the built-in test suite, or an integration test-suite file",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runTests(integrationFile)
	},
}

func init() {
	testCmd.Flags().StringVar(&integrationFile, "integration", "", "path to a ====/---- test-suite file")
	rootCmd.AddCommand(testCmd)
}

// testCase is one block of an integration test-suite file: source code and
// the exact output it must produce.
type testCase struct {
	name     string
	source   string
	expected string
}

// parseTestSuite splits a test-suite file into blocks separated by a line
// of `====`; within each block, a line of `----` separates the source from
// its expected output (spec §6 CLI surface: "format: blocks separated by
// ====, expected output after ----").
func parseTestSuite(content string) []testCase {
	var cases []testCase
	blocks := strings.Split(content, "\n====\n")
	for i, block := range blocks {
		parts := strings.SplitN(block, "\n----\n", 2)
		if len(parts) != 2 {
			continue
		}
		cases = append(cases, testCase{
			name:     fmt.Sprintf("block %d", i+1),
			source:   strings.Trim(parts[0], "\n"),
			expected: strings.Trim(parts[1], "\n"),
		})
	}
	return cases
}

// defaultSuite is a small smoke-test set grounded in spec §8's end-to-end
// scenario table, used when --integration is not given.
func defaultSuite() []testCase {
	return []testCase{
		{name: "arithmetic", source: `print 6*7`, expected: "42"},
		{name: "descending range", source: "for i in range(3,1)\nprint i\nend for", expected: "3\n2\n1"},
		{name: "comparison chaining", source: `if 1 < 2 < 3 then print "ok" else print "no"`, expected: "ok"},
	}
}

func runTests(integrationPath string) error {
	var cases []testCase
	if integrationPath != "" {
		content, err := os.ReadFile(integrationPath)
		if err != nil {
			return fmt.Errorf("reading %s: %w", integrationPath, err)
		}
		cases = parseTestSuite(string(content))
	} else {
		cases = defaultSuite()
	}

	failures := 0
	for _, tc := range cases {
		var out strings.Builder
		it := miniscript.New(tc.source)
		it.StandardOutput = func(text string, appendEOL bool) {
			out.WriteString(text)
			if appendEOL {
				out.WriteString("\n")
			}
		}
		it.ImplicitOutput = it.StandardOutput
		var runErr error
		if err := it.Compile(); err != nil {
			runErr = err
		} else {
			for !it.Done() {
				done, err := it.RunUntilDone(time.Minute, false)
				if err != nil {
					runErr = err
					break
				}
				if done {
					break
				}
			}
		}

		got := strings.TrimRight(out.String(), "\n")
		want := tc.expected
		if runErr != nil {
			fmt.Printf("FAIL %s: %v\n", tc.name, runErr)
			failures++
			continue
		}
		if got != want {
			fmt.Printf("FAIL %s: got %q, want %q\n", tc.name, got, want)
			failures++
			continue
		}
		fmt.Printf("ok   %s\n", tc.name)
	}

	fmt.Printf("%d/%d passed\n", len(cases)-failures, len(cases))
	if failures > 0 {
		return fmt.Errorf("%d test(s) failed", failures)
	}
	return nil
}
