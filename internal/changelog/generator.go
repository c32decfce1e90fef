// Package changelog composes release notes from a milestone's issues and the
// commits between two revisions.
package changelog

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/danielolaszy/changelog/internal/category"
	"github.com/danielolaszy/changelog/internal/config"
	"github.com/danielolaszy/changelog/internal/logging"
	"github.com/danielolaszy/changelog/pkg/models"
)

// Searcher finds the inputs of a changelog.
type Searcher interface {
	FindIssuesByMilestone(ctx context.Context, milestoneTitle string) ([]models.Issue, error)
	FindUniqueAuthorsInCommitsBetween(ctx context.Context, base, head string) (models.CommitAuthorsResult, error)
}

// ReleaseCreator publishes a changelog as a release.
type ReleaseCreator interface {
	CreateRelease(ctx context.Context, tagName, content string) (*models.Release, error)
}

// Options configures a Generator.
type Options struct {
	Repo       config.RepoConfig
	Categories *config.CategoryConfig
	Output     config.OutputConfig
	Summary    string
	// Date is the release date, defaults to today.
	Date time.Time
}

// Result summarizes a generated changelog.
type Result struct {
	UniqueAuthorCount int
	CommitCount       int
	ChangeCount       int
	Text              string
	// Release is set when the changelog was published to GitHub.
	Release     *models.Release
	Diagnostics []models.Diagnostic
}

// Generator builds a changelog and writes it to the configured output.
type Generator struct {
	search   Searcher
	releases ReleaseCreator
	opts     Options
	console  io.Writer
}

// NewGenerator creates a Generator. Console output is written to console.
func NewGenerator(search Searcher, releases ReleaseCreator, opts Options, console io.Writer) *Generator {
	if opts.Categories == nil {
		opts.Categories = &config.CategoryConfig{DefaultCategory: category.DefaultCategory}
	}
	if opts.Date.IsZero() {
		opts.Date = time.Now()
	}
	return &Generator{search: search, releases: releases, opts: opts, console: console}
}

// Generate gathers commit authors and milestone issues, renders the
// changelog and writes it out. Nothing is written when any step fails.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	repo := g.opts.Repo
	milestoneTitle, err := repo.MilestoneTitle()
	if err != nil {
		return nil, err
	}

	logging.Info("finding commits", "base", repo.PreviousRevision, "head", repo.Revision)
	authors, err := g.search.FindUniqueAuthorsInCommitsBetween(ctx, repo.PreviousRevision, repo.Revision)
	if err != nil {
		return nil, err
	}
	diagnostics := append([]models.Diagnostic(nil), authors.Diagnostics...)

	logging.Info("finding issues", "milestone", milestoneTitle)
	issues, err := g.search.FindIssuesByMilestone(ctx, milestoneTitle)
	if err != nil {
		return nil, err
	}

	changes, categoryDiagnostics := Categorize(issues, g.opts.Categories.Finder())
	diagnostics = append(diagnostics, categoryDiagnostics...)

	var order []string
	if len(changes) > 0 {
		var appended *models.Diagnostic
		order, appended, err = category.EnsureAllCategories(g.opts.Categories.Order, presentCategories(changes))
		if err != nil {
			return nil, err
		}
		if appended != nil {
			diagnostics = append(diagnostics, *appended)
		}
	}

	logging.Info("generating changelog", "milestone", milestoneTitle, "changes", len(changes))
	text, err := Render(RenderInput{
		Summary:          g.opts.Summary,
		Date:             g.opts.Date,
		RepoURL:          repo.RepoURL(),
		PreviousRevision: repo.PreviousRevision,
		Revision:         repo.Revision,
		Authors:          authors,
		Changes:          changes,
		CategoryOrder:    order,
		Emoji:            g.opts.Categories.Emoji,
	})
	if err != nil {
		return nil, err
	}

	for _, diagnostic := range diagnostics {
		logging.Warn(diagnostic.Message, "kind", diagnostic.Kind)
	}

	release, err := g.write(ctx, text)
	if err != nil {
		return nil, err
	}

	return &Result{
		UniqueAuthorCount: len(authors.Authors),
		CommitCount:       authors.TotalCommits,
		ChangeCount:       len(changes),
		Text:              text,
		Release:           release,
		Diagnostics:       diagnostics,
	}, nil
}

// Categorize assigns a category to every issue, keeping the issue order.
func Categorize(issues []models.Issue, finder *category.Finder) ([]models.Change, []models.Diagnostic) {
	changes := make([]models.Change, 0, len(issues))
	var diagnostics []models.Diagnostic
	for _, issue := range issues {
		name, diagnostic := finder.FindCategory(issue.Labels)
		if diagnostic != nil {
			diagnostic.Message = fmt.Sprintf("#%d: %s", issue.Number, diagnostic.Message)
			diagnostics = append(diagnostics, *diagnostic)
		}
		changes = append(changes, models.Change{Issue: issue, Category: name})
	}
	return changes, diagnostics
}

// presentCategories returns the categories of changes in order of first appearance.
func presentCategories(changes []models.Change) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, change := range changes {
		if _, ok := seen[change.Category]; ok {
			continue
		}
		seen[change.Category] = struct{}{}
		names = append(names, change.Category)
	}
	return names
}
