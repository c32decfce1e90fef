package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/danielolaszy/changelog/internal/category"
	"github.com/danielolaszy/changelog/internal/logging"
	"gopkg.in/yaml.v3"
)

// ExternalConfigFileName is looked up in the standard configuration locations.
const ExternalConfigFileName = ".changelog.yml"

// ExternalCategory is one category of the external configuration file.
type ExternalCategory struct {
	Name    string   `yaml:"name"`
	Emoji   string   `yaml:"emoji"`
	Labels  []string `yaml:"labels"`
	Default bool     `yaml:"default"`
}

// ExternalConfig is the YAML configuration file shared by a team, e.g.
//
//	categories:
//	  - name: Improvements
//	    emoji: "🚀"
//	    labels: [enhancement, new feature]
//	  - name: Assorted
//	    default: true
//	stripVPrefixFromNextMilestone: false
type ExternalConfig struct {
	Categories                    []ExternalCategory `yaml:"categories"`
	StripVPrefixFromNextMilestone *bool              `yaml:"stripVPrefixFromNextMilestone"`
}

// StripVPrefix reports whether a leading "v" is stripped from new milestone
// titles. Defaults to true.
func (c *ExternalConfig) StripVPrefix() bool {
	if c.StripVPrefixFromNextMilestone == nil {
		return true
	}
	return *c.StripVPrefixFromNextMilestone
}

// LabelMappings returns the label mappings in file order.
func (c *ExternalConfig) LabelMappings() []category.Mapping {
	var mappings []category.Mapping
	for _, cat := range c.Categories {
		for _, label := range cat.Labels {
			mappings = append(mappings, category.Mapping{Label: label, Category: cat.Name})
		}
	}
	return mappings
}

// CategoryEmoji maps category names to their emoji.
func (c *ExternalConfig) CategoryEmoji() map[string]string {
	emoji := make(map[string]string, len(c.Categories))
	for _, cat := range c.Categories {
		if cat.Emoji != "" {
			emoji[cat.Name] = cat.Emoji
		}
	}
	return emoji
}

// CategoryOrder returns the category names in file order.
func (c *ExternalConfig) CategoryOrder() []string {
	order := make([]string, 0, len(c.Categories))
	for _, cat := range c.Categories {
		order = append(order, cat.Name)
	}
	return order
}

// DefaultCategory returns the first category flagged as default, or "".
func (c *ExternalConfig) DefaultCategory() string {
	for _, cat := range c.Categories {
		if cat.Default {
			return cat.Name
		}
	}
	return ""
}

// ParseExternalConfig parses the YAML configuration file contents.
func ParseExternalConfig(data []byte) (*ExternalConfig, error) {
	config := &ExternalConfig{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse external configuration: %w", err)
	}
	return config, nil
}

// LoadExternalConfig reads configFile when given. Otherwise, unless
// ignoreStandardLocations is set, it reads the first configuration file found
// in currentDir, its parent and homeDir. With nothing to read it returns an
// empty configuration.
func LoadExternalConfig(currentDir, homeDir, configFile string, ignoreStandardLocations bool) (*ExternalConfig, error) {
	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		logging.Debug("using external configuration", "path", configFile)
		return ParseExternalConfig(data)
	}

	if ignoreStandardLocations {
		logging.Debug("no explicit config file and standard config file locations are ignored")
		return &ExternalConfig{}, nil
	}

	candidates := []string{
		filepath.Join(currentDir, ExternalConfigFileName),
		filepath.Join(filepath.Dir(currentDir), ExternalConfigFileName),
	}
	if homeDir != "" {
		candidates = append(candidates, filepath.Join(homeDir, ExternalConfigFileName))
	}
	logging.Debug("checking for external configuration", "locations", candidates)

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		logging.Debug("using external configuration", "path", path)
		return ParseExternalConfig(data)
	}

	return &ExternalConfig{}, nil
}
