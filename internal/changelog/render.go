package changelog

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/danielolaszy/changelog/pkg/models"
)

// DateLayout formats the release date on the summary line.
const DateLayout = "2006-01-02"

const changelogTemplate = `{{ if .Summary }}{{ .Summary }}

{{ end }}## Summary
- {{ .Date }} - [{{ .CommitCount }} commit(s)]({{ .CompareURL }}) by {{ .Authors }}
{{- if not .Sections }}
- No notable changes were found for this milestone
{{- end }}
{{- range .Sections }}

## {{ .Heading }}
{{- range .Changes }}
* {{ .Title }} [(#{{ .Number }})]({{ .HTMLURL }})
{{- end }}
{{- end }}
`

var changelogTmpl = template.Must(template.New("changelog").Parse(changelogTemplate))

// RenderInput is everything that goes into the markdown of a changelog.
type RenderInput struct {
	Summary          string
	Date             time.Time
	RepoURL          string
	PreviousRevision string
	Revision         string
	Authors          models.CommitAuthorsResult
	Changes          []models.Change
	// CategoryOrder is the render order; categories without changes are skipped.
	CategoryOrder []string
	Emoji         map[string]string
}

type section struct {
	Heading string
	Changes []models.Change
}

type renderData struct {
	Summary     string
	Date        string
	CommitCount int
	CompareURL  string
	Authors     string
	Sections    []section
}

// Render produces the markdown changelog.
func Render(input RenderInput) (string, error) {
	byCategory := make(map[string][]models.Change)
	for _, change := range input.Changes {
		byCategory[change.Category] = append(byCategory[change.Category], change)
	}

	var sections []section
	for _, name := range input.CategoryOrder {
		changes := byCategory[name]
		if len(changes) == 0 {
			continue
		}
		sections = append(sections, section{Heading: heading(name, input.Emoji), Changes: changes})
	}

	data := renderData{
		Summary:     strings.TrimSpace(input.Summary),
		Date:        input.Date.Format(DateLayout),
		CommitCount: input.Authors.TotalCommits,
		CompareURL:  fmt.Sprintf("%s/compare/%s...%s", input.RepoURL, input.PreviousRevision, input.Revision),
		Authors:     formatAuthors(input.Authors.Authors),
		Sections:    sections,
	}

	var sb strings.Builder
	if err := changelogTmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render changelog: %w", err)
	}
	return sb.String(), nil
}

func heading(category string, emoji map[string]string) string {
	if glyph := emoji[category]; glyph != "" {
		return glyph + " " + category
	}
	return category
}

func formatAuthors(authors []models.User) string {
	formatted := make([]string, 0, len(authors))
	for _, author := range authors {
		if author.HTMLURL != nil {
			formatted = append(formatted, fmt.Sprintf("[%s](%s)", author.Name, *author.HTMLURL))
			continue
		}
		formatted = append(formatted, author.Name)
	}
	return strings.Join(formatted, ", ")
}
