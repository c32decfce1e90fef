package cmd

import (
	"context"
	"fmt"

	"github.com/danielolaszy/changelog/internal/changelog"
	"github.com/danielolaszy/changelog/internal/config"
	"github.com/danielolaszy/changelog/internal/github"
	"github.com/spf13/cobra"
)

// newMilestoneCmd groups the milestone subcommands.
func newMilestoneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "milestone",
		Short: "Close or create GitHub milestones",
		Long: `Close or create GitHub milestones without generating a changelog.

Only open milestones are considered when looking up a milestone by title.`,
	}

	config.AddRepoFlags(cmd.PersistentFlags())
	_ = cmd.MarkPersistentFlagRequired(config.FlagRepository)

	cmd.AddCommand(newMilestoneCloseCmd())
	cmd.AddCommand(newMilestoneCreateCmd())
	return cmd
}

func newMilestoneCloseCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "close <title>",
		Short:   "Close the open milestone with the given title",
		Example: "  changelog milestone close -r owner/repo 1.4.2",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			milestones, err := milestoneManager(cmd)
			if err != nil {
				return err
			}

			closed, err := milestones.CloseMilestoneByTitle(commandContext(cmd), args[0])
			if err != nil {
				return fmt.Errorf("failed to close milestone %s: %w", args[0], err)
			}
			printSuccess(cmd.OutOrStdout(), "Closed milestone %s. See it at %s", closed.Title, closed.HTMLURL)
			return nil
		},
	}
}

func newMilestoneCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "create <title>",
		Short:   "Create a milestone unless an open one with the title exists",
		Example: "  changelog milestone create -r owner/repo v1.4.3",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			strip, err := cmd.Flags().GetBool(config.FlagStripVPrefix)
			if err != nil {
				return err
			}

			milestones, err := milestoneManager(cmd)
			if err != nil {
				return err
			}

			title := changelog.ResolveNextMilestone(args[0], strip)
			return createMilestone(commandContext(cmd), milestones, title, cmd.OutOrStdout())
		},
	}

	cmd.Flags().Bool(config.FlagStripVPrefix, true, "Strip a leading 'v' from the milestone title")
	return cmd
}

func milestoneManager(cmd *cobra.Command) (*github.MilestoneManager, error) {
	repoConfig, err := config.LoadRepoConfig(cmd.Flags())
	if err != nil {
		return nil, err
	}

	gateway := github.NewGateway(commandContext(cmd), repoConfig.Token)
	repo := github.RepoRef{APIURL: repoConfig.APIURL, Repository: repoConfig.Repository}
	return github.NewMilestoneManager(gateway, repo), nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
