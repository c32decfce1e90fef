package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/danielolaszy/changelog/internal/changelog"
	"github.com/danielolaszy/changelog/internal/config"
	"github.com/danielolaszy/changelog/internal/github"
	"github.com/danielolaszy/changelog/internal/logging"
	"github.com/danielolaszy/changelog/internal/metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// newGenerateCmd creates the command that generates a changelog for a milestone.
func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a changelog for a GitHub milestone",
		Long: `Generate a changelog for a specific GitHub milestone.

Issues and pull requests of the milestone are searched and grouped into
categories using their labels. The commits between the previous revision and
the revision are used to find the unique commit authors.

Labels are mapped to categories with -m label:category, categories to emoji
with -e category:emoji, and the display order is set with -O. The same
settings can be stored in a .changelog.yml file, which is looked up in the
current directory, its parent and the home directory unless
--ignore-config-files is set. Command line values take precedence.

The milestone defaults to the revision without its leading 'v', so revision
v1.4.2 uses milestone 1.4.2.

By default, a leading 'v' is stripped when creating the next milestone.
Disable this with --strip-v-prefix-from-next-milestone=false or by setting
stripVPrefixFromNextMilestone to false in the configuration file.`,
		Example: `  changelog generate -r owner/repo -p v1.4.1 -R v1.4.2 -m bug:Bugs -m enhancement:Improvements
  changelog generate -r owner/repo -p v1.4.1 -R v1.4.2 -o github -C -N v1.4.3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(commandContext(cmd), cmd.Flags(), cmd.OutOrStdout())
		},
	}

	config.AddGenerateFlags(cmd.Flags())
	_ = cmd.MarkFlagRequired(config.FlagRepository)
	_ = cmd.MarkFlagRequired(config.FlagPreviousRevision)
	_ = cmd.MarkFlagRequired(config.FlagRevision)
	cmd.MarkFlagsMutuallyExclusive(config.FlagSummary, config.FlagSummaryFile)

	return cmd
}

func runGenerate(ctx context.Context, flags *pflag.FlagSet, out io.Writer) error {
	if debug, _ := flags.GetBool(config.FlagDebugArgs); debug {
		printArgs(out, flags)
		return nil
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}

	err = generate(ctx, cfg, out)

	if cfg.MetricsFile != "" {
		if werr := metrics.WriteTextfile(cfg.MetricsFile); werr != nil {
			logging.Warn("failed to write metrics file", "path", cfg.MetricsFile, "error", werr)
		} else {
			logging.Debug("wrote metrics file", "path", cfg.MetricsFile)
		}
	}

	return err
}

func generate(ctx context.Context, cfg *config.Config, out io.Writer) error {
	milestoneTitle, err := cfg.Repo.MilestoneTitle()
	if err != nil {
		return err
	}

	printHeader(out, fmt.Sprintf("⚙️  Generating change log for version %s", cfg.Repo.Revision))

	currentDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		logging.Debug("no home directory, skipping it for configuration lookup", "error", err)
		homeDir = ""
	}

	external, err := config.LoadExternalConfig(currentDir, homeDir, cfg.ConfigFile, cfg.IgnoreConfigFiles)
	if err != nil {
		return err
	}

	categories, err := config.BuildCategoryConfig(cfg.Categories, external)
	if err != nil {
		return err
	}

	summary, err := changelog.ResolveSummary(cfg.Summary, cfg.SummaryFile)
	if err != nil {
		return err
	}

	logging.Info("starting changelog generation",
		"repository", cfg.Repo.Repository,
		"milestone", milestoneTitle,
		"output", cfg.Output.Type,
		"token", logging.MaskSensitive(cfg.Repo.Token))

	gateway := github.NewGateway(ctx, cfg.Repo.Token)
	repo := github.RepoRef{APIURL: cfg.Repo.APIURL, Repository: cfg.Repo.Repository}

	generator := changelog.NewGenerator(
		github.NewSearchManager(gateway, repo),
		github.NewReleaseManager(gateway, repo),
		changelog.Options{
			Repo:       cfg.Repo,
			Categories: categories,
			Output:     cfg.Output,
			Summary:    summary,
		},
		out,
	)

	result, err := generator.Generate(ctx)
	if err != nil {
		return fmt.Errorf("failed to generate changelog: %w", err)
	}

	switch {
	case result.Release != nil:
		printSuccess(out, "Created GitHub release. See it at %s", result.Release.HTMLURL)
	case cfg.Output.Type == config.OutputFile:
		printSuccess(out, "Wrote changelog to %s", cfg.Output.File)
	}
	printSuccess(out, "Generated change log for release %s", milestoneTitle)
	for _, diagnostic := range result.Diagnostics {
		printWarning(out, "%s", diagnostic.Message)
	}

	printHeader(out, "📈 Release stats:")
	printKeyValue(out, "Number of changes (issues/PRs)", result.ChangeCount)
	printKeyValue(out, "Unique authors", result.UniqueAuthorCount)
	printKeyValue(out, "Number of commits", result.CommitCount)

	milestones := github.NewMilestoneManager(gateway, repo)

	if cfg.Milestones.Close {
		closed, err := milestones.CloseMilestoneByTitle(ctx, milestoneTitle)
		if err != nil {
			return fmt.Errorf("failed to close milestone %s: %w", milestoneTitle, err)
		}
		printSuccess(out, "Closed milestone %s. See it at %s", closed.Title, closed.HTMLURL)
	}

	if cfg.Milestones.CreateNext != "" {
		strip := external.StripVPrefix()
		if cfg.Milestones.StripVPrefix != nil {
			strip = *cfg.Milestones.StripVPrefix
		}
		if err := createMilestone(ctx, milestones, changelog.ResolveNextMilestone(cfg.Milestones.CreateNext, strip), out); err != nil {
			return err
		}
	}

	fmt.Fprintln(out, "🍻 Cheers!")
	return nil
}

func createMilestone(ctx context.Context, milestones changelog.MilestoneService, title string, out io.Writer) error {
	milestone, created, err := changelog.CreateMilestoneIfAbsent(ctx, milestones, title)
	if err != nil {
		return fmt.Errorf("failed to create milestone %s: %w", title, err)
	}
	if !created {
		printWarning(out, "Milestone %s already exists. See it at %s", milestone.Title, milestone.HTMLURL)
		return nil
	}
	printSuccess(out, "Created new milestone %s. See it at %s", milestone.Title, milestone.HTMLURL)
	return nil
}

// printArgs prints the value of every flag, masking the token.
func printArgs(out io.Writer, flags *pflag.FlagSet) {
	printHeader(out, "ℹ️  Arguments:")
	flags.VisitAll(func(f *pflag.Flag) {
		value := f.Value.String()
		if f.Name == config.FlagToken {
			value = logging.MaskSensitive(value)
		}
		printKeyValue(out, f.Name, value)
	})
	fmt.Fprintln(out, "----------")
}
