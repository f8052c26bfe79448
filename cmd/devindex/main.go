// Package main provides the entry point for the devindex CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/devindex/cmd/devindex/commands"
	"github.com/Sumatoshi-tech/devindex/pkg/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "devindex",
		Short: "Devindex - red-black device index toolkit",
		Long: `Devindex maintains balanced indexes of device descriptors.

Commands:
  load      Index a device inventory and verify the red-black invariants
  stats     Report per-site fleet statistics`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add commands.
	rootCmd.AddCommand(commands.NewLoadCommand())
	rootCmd.AddCommand(commands.NewStatsCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "devindex %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
