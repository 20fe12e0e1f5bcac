// Package main provides the entry point for the bundle-analyzer CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/d3viant0ne/webpack-bundle-analyzer/cmd/bundle-analyzer/commands"
	"github.com/d3viant0ne/webpack-bundle-analyzer/pkg/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bundle-analyzer",
		Short: "Bundle Analyzer - composition reports for build output",
		Long: `Bundle Analyzer turns build stats snapshots into per-asset
composition reports.

Commands:
  analyze   One-shot report from a stats file
  serve     Live report server with websocket updates`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewAnalyzeCommand())
	rootCmd.AddCommand(commands.NewServeCommand())
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
			fmt.Fprintf(os.Stdout, "bundle-analyzer %s (commit: %s, built: %s)\n",
				version.Version, version.Commit, version.Date)
		},
	}
}
