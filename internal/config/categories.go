package config

import (
	"fmt"
	"strings"

	"github.com/danielolaszy/changelog/internal/category"
)

// CategoryConfig is the merged category configuration.
type CategoryConfig struct {
	DefaultCategory string
	// Mappings are ordered; for a given label the first mapping wins.
	Mappings []category.Mapping
	Order    []string
	Emoji    map[string]string
}

// ParseMappings splits "key:value" entries. The key may not be empty.
func ParseMappings(entries []string) ([][2]string, error) {
	pairs := make([][2]string, 0, len(entries))
	for _, entry := range entries {
		key, value, ok := strings.Cut(entry, ":")
		if !ok || key == "" || value == "" {
			return nil, fmt.Errorf("invalid mapping %q, expected format key:value", entry)
		}
		pairs = append(pairs, [2]string{key, value})
	}
	return pairs, nil
}

// BuildCategoryConfig merges the command line category options with the
// external configuration. Command line values take precedence.
func BuildCategoryConfig(options CategoryOptions, external *ExternalConfig) (*CategoryConfig, error) {
	if external == nil {
		external = &ExternalConfig{}
	}

	labelPairs, err := ParseMappings(options.Mappings)
	if err != nil {
		return nil, err
	}
	emojiPairs, err := ParseMappings(options.EmojiMappings)
	if err != nil {
		return nil, err
	}

	mappings := make([]category.Mapping, 0, len(labelPairs))
	for _, pair := range labelPairs {
		mappings = append(mappings, category.Mapping{Label: pair[0], Category: pair[1]})
	}
	mappings = append(mappings, external.LabelMappings()...)

	emoji := external.CategoryEmoji()
	for _, pair := range emojiPairs {
		emoji[pair[0]] = pair[1]
	}

	seen := make(map[string]struct{})
	var order []string
	for _, name := range append(append([]string(nil), options.Order...), external.CategoryOrder()...) {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		order = append(order, name)
	}

	defaultCategory := options.Default
	if defaultCategory == "" {
		defaultCategory = external.DefaultCategory()
	}
	if defaultCategory == "" {
		defaultCategory = category.DefaultCategory
	}

	return &CategoryConfig{
		DefaultCategory: defaultCategory,
		Mappings:        mappings,
		Order:           order,
		Emoji:           emoji,
	}, nil
}

// Finder creates the category finder for this configuration.
func (c *CategoryConfig) Finder() *category.Finder {
	return category.NewFinder(c.DefaultCategory, c.Mappings)
}
