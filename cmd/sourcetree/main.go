// Package main provides the entry point for the sourcetree CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/maikgreubel/sourcetree/cmd/sourcetree/commands"
	"github.com/maikgreubel/sourcetree/pkg/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sourcetree",
		Short: "Source tree metrics and commit history analysis",
		Long: `Sourcetree analyzes a source tree and its revision history.

Commands:
  metrics   Line and complexity metrics for a source tree
  history   Commit log, diffs and diff pattern search
  info      Repository summary
  mcp       MCP server exposing the tools over stdio`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "path to config file (default: .sourcetree.yaml in CWD or $HOME)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(commands.NewMetricsCommand())
	rootCmd.AddCommand(commands.NewHistoryCommand())
	rootCmd.AddCommand(commands.NewInfoCommand())
	rootCmd.AddCommand(commands.NewMCPCommand())
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
			fmt.Fprintf(os.Stdout, "sourcetree %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
