package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ropes/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "ropectl",
	Short:         "Inspect, benchmark and stress the rope engine",
	Long:          `ropectl builds ropes from the command line and reports their shape, attributes and performance`,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(internCmd)
	rootCmd.AddCommand(encodingsCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(stressCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("config", "", "directory to search for ropes.toml and .env (default: working directory)")
	rootCmd.PersistentFlags().String("trace", "", "trace output file (\"-\" for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "", "trace level (off|error|phase|detail|debug); overrides ropes.toml")
	rootCmd.PersistentFlags().String("trace-mode", "", "trace storage mode (stream|ring|both); overrides ropes.toml")
	rootCmd.PersistentFlags().Int("trace-ring-size", 0, "ring buffer size for ring mode; overrides ropes.toml")
}

// main executes the root command. A failed command exits with status 1.
func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// termWidth reports the stdout width, or 100 when it is not a terminal.
func termWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 100
}
