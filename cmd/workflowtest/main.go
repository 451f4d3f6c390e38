// Command workflowtest supports Temporal workflow test suites: serve runs a
// standalone dev server for fixtures configured with an external service,
// and dump prints the workflow execution histories of a running service.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "workflowtest",
	Short:        "Tooling for Temporal workflow test suites",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newDumpCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
