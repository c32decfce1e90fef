// Package cmd provides the command-line interface for the changelog tool.
package cmd

import (
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "changelog",
		Short: "Changelog generates release notes from GitHub milestones",
		Long: `Changelog generates release notes for a GitHub milestone.

It searches the issues and pull requests of the milestone, groups them into
categories using their labels, and credits the unique authors of the commits
between two revisions. The result can be printed, written to a file, or
published as a GitHub release. Milestones can be closed and created as part
of the same run.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add the generate command
	rootCmd.AddCommand(newGenerateCmd())

	// Add the milestone commands
	rootCmd.AddCommand(newMilestoneCmd())

	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return NewRootCmd().Execute()
}
