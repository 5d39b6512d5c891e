// Package cli implements previewctl's command tree, grounded on the
// teacher's internal/cli package (root.go + one file per subcommand,
// each registering itself on rootCmd from an init func).
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// ExecuteServe runs the serve subcommand directly, for single-purpose
// binaries (cmd/previewd) that want "serve"'s flags at top level instead
// of behind a previewctl subcommand.
func ExecuteServe() {
	rootCmd.SetArgs(append([]string{"serve"}, os.Args[1:]...))
	Execute()
}

var rootCmd = &cobra.Command{
	Use:   "previewctl",
	Short: "Operate the baggage-advisor preview pipeline",
	Long:  "previewctl serves, validates, and scenario-tests the preview decision core that turns an item description into a carry-on/checked verdict.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
