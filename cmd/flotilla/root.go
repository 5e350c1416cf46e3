package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "flotilla",
	Short: "Hierarchical multi-agent task orchestrator",
	Long: `Flotilla fans a single task out across a fleet of LLM agents and folds
the results back together.

A run decomposes the root task into independent subtasks, executes them
on a bounded worker pool, and synthesizes the outputs through an
auto-scaled hierarchy: one synthesizer per five workers, topped by an
executive pass when more than one synthesizer ran.

Completed runs are recorded locally; use 'flotilla history' to review them.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}
