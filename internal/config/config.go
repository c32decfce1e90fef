// Package config provides centralized configuration management for the application.
package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Flag names shared by the commands and the configuration keys they bind to.
const (
	FlagRepoHostURL         = "repo-host-url"
	FlagRepoHostAPIURL      = "repo-host-api-url"
	FlagToken               = "repo-host-token"
	FlagRepository          = "repository"
	FlagPreviousRevision    = "previous-rev"
	FlagRevision            = "revision"
	FlagMilestone           = "milestone"
	FlagOutputType          = "output-type"
	FlagOutputFile          = "output-file"
	FlagDefaultCategory     = "default-category"
	FlagMapping             = "mapping"
	FlagCategoryOrder       = "category-order"
	FlagEmojiMapping        = "emoji-mapping"
	FlagConfigFile          = "config-file"
	FlagIgnoreConfigFiles   = "ignore-config-files"
	FlagCloseMilestone      = "close-milestone"
	FlagCreateNextMilestone = "create-next-milestone"
	FlagStripVPrefix        = "strip-v-prefix-from-next-milestone"
	FlagSummary             = "summary"
	FlagSummaryFile         = "summary-file"
	FlagMetricsFile         = "metrics-file"
	FlagDebugArgs           = "debug-args"
)

// Defaults for the public GitHub host.
const (
	DefaultRepoHostURL    = "https://github.com"
	DefaultRepoHostAPIURL = "https://api.github.com"
)

// Accepts v<major>.<minor>.<patch> followed by anything, e.g. v1.4.2-beta.
var revisionPattern = regexp.MustCompile(`^v\d+\.\d+\.\d+.*$`)

// Config holds all configuration parameters for generating a changelog.
type Config struct {
	Repo       RepoConfig
	Output     OutputConfig
	Categories CategoryOptions
	Milestones MilestoneOptions

	ConfigFile        string
	IgnoreConfigFiles bool

	Summary     string
	SummaryFile string
	MetricsFile string
}

// RepoConfig identifies the repository and the revisions a changelog covers.
type RepoConfig struct {
	URL              string
	APIURL           string
	Token            string
	Repository       string
	PreviousRevision string
	Revision         string
	// Milestone overrides the milestone derived from Revision.
	Milestone string
}

// MilestoneTitle returns the explicit milestone, or the revision without its
// leading "v".
func (r RepoConfig) MilestoneTitle() (string, error) {
	if r.Milestone != "" {
		return r.Milestone, nil
	}
	if !revisionPattern.MatchString(r.Revision) {
		return "", fmt.Errorf("revision %q should be in the format v<major>.<minor>.<patch>", r.Revision)
	}
	return r.Revision[1:], nil
}

// RepoURL returns the web URL of the repository.
func (r RepoConfig) RepoURL() string {
	return strings.TrimRight(r.URL, "/") + "/" + r.Repository
}

// OutputConfig selects where the changelog is written.
type OutputConfig struct {
	Type OutputType
	File string
}

// CategoryOptions holds the raw category flags before they are merged with
// the external configuration.
type CategoryOptions struct {
	Default       string
	Mappings      []string
	EmojiMappings []string
	Order         []string
}

// MilestoneOptions holds the optional milestone operations run after generation.
type MilestoneOptions struct {
	Close      bool
	CreateNext string
	// StripVPrefix is nil unless set on the command line.
	StripVPrefix *bool
}

// newViper binds flags and the environment into a fresh viper instance.
func newViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	// Map specific environment variables, first one set wins
	if err := v.BindEnv(FlagToken, "CHANGELOG_TOKEN", "GITHUB_TOKEN"); err != nil {
		return nil, err
	}
	if err := v.BindEnv(FlagRepoHostURL, "CHANGELOG_REPO_HOST_URL"); err != nil {
		return nil, err
	}
	if err := v.BindEnv(FlagRepoHostAPIURL, "CHANGELOG_REPO_HOST_API_URL"); err != nil {
		return nil, err
	}

	v.SetDefault(FlagRepoHostURL, DefaultRepoHostURL)
	v.SetDefault(FlagRepoHostAPIURL, DefaultRepoHostAPIURL)
	return v, nil
}

// LoadRepoConfig loads the repository host settings from flags and the environment.
func LoadRepoConfig(flags *pflag.FlagSet) (*RepoConfig, error) {
	v, err := newViper(flags)
	if err != nil {
		return nil, err
	}

	repo := repoConfigFrom(v)
	if err := validateRepoConfig(repo); err != nil {
		return nil, err
	}
	return repo, nil
}

func repoConfigFrom(v *viper.Viper) *RepoConfig {
	url := v.GetString(FlagRepoHostURL)
	if url == "" {
		url = DefaultRepoHostURL
	}
	apiURL := v.GetString(FlagRepoHostAPIURL)
	if apiURL == "" {
		apiURL = DefaultRepoHostAPIURL
	}

	return &RepoConfig{
		URL:              url,
		APIURL:           apiURL,
		Token:            v.GetString(FlagToken),
		Repository:       v.GetString(FlagRepository),
		PreviousRevision: v.GetString(FlagPreviousRevision),
		Revision:         v.GetString(FlagRevision),
		Milestone:        v.GetString(FlagMilestone),
	}
}

// Load initializes and loads the generate configuration from flags and
// environment variables.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v, err := newViper(flags)
	if err != nil {
		return nil, err
	}

	outputType, err := ParseOutputType(v.GetString(FlagOutputType))
	if err != nil {
		return nil, err
	}

	config := &Config{
		Repo: *repoConfigFrom(v),
		Output: OutputConfig{
			Type: outputType,
			File: v.GetString(FlagOutputFile),
		},
		Categories: CategoryOptions{
			Default:       v.GetString(FlagDefaultCategory),
			Mappings:      v.GetStringSlice(FlagMapping),
			EmojiMappings: v.GetStringSlice(FlagEmojiMapping),
			Order:         v.GetStringSlice(FlagCategoryOrder),
		},
		Milestones: MilestoneOptions{
			Close:      v.GetBool(FlagCloseMilestone),
			CreateNext: v.GetString(FlagCreateNextMilestone),
		},
		ConfigFile:        v.GetString(FlagConfigFile),
		IgnoreConfigFiles: v.GetBool(FlagIgnoreConfigFiles),
		Summary:           v.GetString(FlagSummary),
		SummaryFile:       v.GetString(FlagSummaryFile),
		MetricsFile:       v.GetString(FlagMetricsFile),
	}

	if f := flags.Lookup(FlagStripVPrefix); f != nil && f.Changed {
		strip := v.GetBool(FlagStripVPrefix)
		config.Milestones.StripVPrefix = &strip
	}

	// Validate configuration
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// validateRepoConfig ensures that the values needed to reach the repository are provided.
func validateRepoConfig(repo *RepoConfig) error {
	var missingVars []string

	if repo.Token == "" {
		missingVars = append(missingVars, "CHANGELOG_TOKEN")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	if repo.Repository == "" {
		return fmt.Errorf("repository flag is required")
	}

	return nil
}

// validateConfig ensures that all required configuration values are provided.
func validateConfig(config *Config) error {
	if err := validateRepoConfig(&config.Repo); err != nil {
		return err
	}

	if config.Repo.PreviousRevision == "" || config.Repo.Revision == "" {
		return fmt.Errorf("both %s and %s are required", FlagPreviousRevision, FlagRevision)
	}

	if _, err := config.Repo.MilestoneTitle(); err != nil {
		return err
	}

	if config.Output.Type == OutputFile && config.Output.File == "" {
		return fmt.Errorf("--%s is required when output type is %s", FlagOutputFile, OutputFile)
	}

	if config.Summary != "" && config.SummaryFile != "" {
		return fmt.Errorf("only one of --%s or --%s may be specified", FlagSummary, FlagSummaryFile)
	}

	return nil
}
