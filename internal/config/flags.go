package config

import (
	"github.com/spf13/pflag"
)

// AddRepoFlags registers the flags needed to reach a repository.
func AddRepoFlags(flags *pflag.FlagSet) {
	flags.StringP(FlagRepoHostURL, "u", DefaultRepoHostURL, "GitHub URL (env CHANGELOG_REPO_HOST_URL)")
	flags.StringP(FlagRepoHostAPIURL, "a", DefaultRepoHostAPIURL, "URL for the GitHub API (env CHANGELOG_REPO_HOST_API_URL)")
	flags.StringP(FlagToken, "t", "", "GitHub access token (env CHANGELOG_TOKEN or GITHUB_TOKEN)")
	flags.StringP(FlagRepository, "r", "", "GitHub repository name including the organization (e.g., 'owner/repo')")
}

// AddGenerateFlags registers the flags of changelog generation.
func AddGenerateFlags(flags *pflag.FlagSet) {
	AddRepoFlags(flags)

	flags.StringP(FlagPreviousRevision, "p", "", "Starting revision (tag) to search for commit authors")
	flags.StringP(FlagRevision, "R", "", "Ending revision (tag) to search for commit authors")
	flags.StringP(FlagMilestone, "M", "", "Milestone title, defaults to the revision without a leading 'v'")

	flags.StringP(FlagOutputType, "o", string(OutputConsole), "How the changelog should be output: console, file or github")
	flags.StringP(FlagOutputFile, "f", "", "File to write the changelog to, required for output type file")

	flags.StringP(FlagDefaultCategory, "c", "", "Category for issues without a mapped label")
	flags.StringSliceP(FlagMapping, "m", nil, "Map a label to a category (format label:category), can be repeated")
	flags.StringSliceP(FlagCategoryOrder, "O", nil, "Order in which categories are displayed, can be repeated")
	flags.StringSliceP(FlagEmojiMapping, "e", nil, "Map a category to an emoji (format category:emoji), can be repeated")

	flags.StringP(FlagConfigFile, "n", "", "Configuration file to use")
	flags.BoolP(FlagIgnoreConfigFiles, "g", false, "Ignore the standard configuration file locations")

	flags.BoolP(FlagCloseMilestone, "C", false, "Close the milestone of the revision")
	flags.StringP(FlagCreateNextMilestone, "N", "", "Title of the next milestone to create, e.g. 4.2.0")
	flags.Bool(FlagStripVPrefix, true, "Strip a leading 'v' from the next milestone title")

	flags.StringP(FlagSummary, "s", "", "Summary text placed at the top of the changelog")
	flags.StringP(FlagSummaryFile, "y", "", "File containing summary text placed at the top of the changelog")

	flags.String(FlagMetricsFile, "", "Write API request metrics in Prometheus text format to this file")
	flags.BoolP(FlagDebugArgs, "d", false, "Print the value of all arguments, then exit")
}
