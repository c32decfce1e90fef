// Package category assigns changes to release-note categories and decides the
// order in which categories are rendered.
package category

import (
	"fmt"
	"sort"
	"strings"

	"github.com/danielolaszy/changelog/pkg/models"
)

// DefaultCategory is used when no default is configured.
const DefaultCategory = "Assorted"

// Mapping maps one label to a category.
type Mapping struct {
	Label    string
	Category string
}

// Finder finds the category of an issue from its labels.
//
// When several labels of an issue map to different categories, the mapping
// declared first wins.
type Finder struct {
	defaultCategory string
	mappings        []Mapping
}

// NewFinder creates a Finder. Later mappings for an already mapped label are
// ignored. An empty defaultCategory falls back to DefaultCategory.
func NewFinder(defaultCategory string, mappings []Mapping) *Finder {
	if defaultCategory == "" {
		defaultCategory = DefaultCategory
	}

	seen := make(map[string]struct{}, len(mappings))
	deduped := make([]Mapping, 0, len(mappings))
	for _, m := range mappings {
		if _, dup := seen[m.Label]; dup {
			continue
		}
		seen[m.Label] = struct{}{}
		deduped = append(deduped, m)
	}

	return &Finder{defaultCategory: defaultCategory, mappings: deduped}
}

// DefaultCategory returns the category used for unlabeled or unmapped issues.
func (f *Finder) DefaultCategory() string {
	return f.defaultCategory
}

// FindCategory returns the category for an issue with labels. The diagnostic
// is non-nil when the issue has labels but none of them is mapped.
func (f *Finder) FindCategory(labels []string) (string, *models.Diagnostic) {
	if len(labels) == 0 {
		return f.defaultCategory, nil
	}

	present := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		present[label] = struct{}{}
	}

	for _, m := range f.mappings {
		if _, ok := present[m.Label]; ok {
			return m.Category, nil
		}
	}

	return f.defaultCategory, &models.Diagnostic{
		Kind: models.DiagnosticUnmappedLabels,
		Message: fmt.Sprintf("using default category (%s) because no mapping was found for label(s): %s",
			f.defaultCategory, strings.Join(labels, ", ")),
		Subjects: append([]string(nil), labels...),
	}
}

// EmptyCategorySetError is returned when there are no categories to order.
type EmptyCategorySetError struct{}

func (e *EmptyCategorySetError) Error() string {
	return "categories present in the changes must not be empty"
}

// EnsureAllCategories returns the order in which categories are rendered.
//
// With no configured order the present categories are returned as given.
// Otherwise the configured order comes first, including categories without
// changes, followed by present categories missing from it in lexical order.
// Appending yields a diagnostic naming the appended categories.
func EnsureAllCategories(configuredOrder, present []string) ([]string, *models.Diagnostic, error) {
	if len(present) == 0 {
		return nil, nil, &EmptyCategorySetError{}
	}

	if len(configuredOrder) == 0 {
		return unique(present), nil, nil
	}

	configured := make(map[string]struct{}, len(configuredOrder))
	for _, name := range configuredOrder {
		configured[name] = struct{}{}
	}

	var missing []string
	for _, name := range unique(present) {
		if _, ok := configured[name]; !ok {
			missing = append(missing, name)
		}
	}

	order := append([]string(nil), configuredOrder...)
	if len(missing) == 0 {
		return order, nil, nil
	}

	sort.Strings(missing)
	diagnostic := &models.Diagnostic{
		Kind: models.DiagnosticAppendedCategories,
		Message: fmt.Sprintf("categories %s are not in the category order and were appended to the end",
			strings.Join(missing, ", ")),
		Subjects: missing,
	}
	return append(order, missing...), diagnostic, nil
}

func unique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}
