// Package main provides the CLI entry point for the sapiens agent runtime.
//
// sapiens drives a single OODA-loop run against a configured model and tool
// registry.
//
// # Basic Usage
//
// Run a task:
//
//	sapiens run "summarize the README in this repo"
//
// Seed a starting configuration file:
//
//	sapiens config init
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build information, populated by ldflags during build.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "sapiens",
		Short:         "Run an autonomous OODA-loop agent",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
	}

	cmd.AddCommand(buildRunCmd())
	cmd.AddCommand(buildConfigCmd())
	return cmd
}
