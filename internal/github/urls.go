package github

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-github/v41/github"
	"github.com/google/go-querystring/query"
)

const (
	searchPageSize        = 100
	comparePageSize       = 100
	milestoneListPageSize = 50
	releaseListPageSize   = 100
)

// Search type filters. The search API cannot select both in one query.
const (
	TypeIssue       = "issue"
	TypePullRequest = "pull-request"
)

// RepoRef identifies a repository on a GitHub API host.
type RepoRef struct {
	// APIURL is the API base URL, e.g. https://api.github.com.
	APIURL string
	// Repository is owner/name.
	Repository string
}

type searchOptions struct {
	Query string `url:"q"`
	github.ListOptions
}

func (r RepoRef) base() string {
	return strings.TrimRight(r.APIURL, "/")
}

func (r RepoRef) repoPath(format string, args ...any) string {
	return r.base() + "/repos/" + r.Repository + fmt.Sprintf(format, args...)
}

// SearchURL returns the first page of the issue search for one milestone and type.
func (r RepoRef) SearchURL(milestoneTitle, issueType string) (string, error) {
	opts := searchOptions{
		Query:       fmt.Sprintf(`repo:%s milestone:"%s" is:%s`, r.Repository, milestoneTitle, issueType),
		ListOptions: github.ListOptions{Page: 1, PerPage: searchPageSize},
	}
	return withQuery(r.base()+"/search/issues", opts)
}

// CompareURL returns the first page of the comparison between two revisions.
func (r RepoRef) CompareURL(base, head string) (string, error) {
	opts := github.ListOptions{Page: 1, PerPage: comparePageSize}
	return withQuery(r.repoPath("/compare/%s...%s", url.PathEscape(base), url.PathEscape(head)), opts)
}

// OpenMilestonesURL lists open milestones on a single page.
func (r RepoRef) OpenMilestonesURL() (string, error) {
	opts := github.MilestoneListOptions{
		State:       "open",
		ListOptions: github.ListOptions{PerPage: milestoneListPageSize},
	}
	return withQuery(r.repoPath("/milestones"), opts)
}

// MilestonesURL is the collection URL used to create milestones.
func (r RepoRef) MilestonesURL() string {
	return r.repoPath("/milestones")
}

// MilestoneURL addresses a single milestone.
func (r RepoRef) MilestoneURL(number int) string {
	return r.repoPath("/milestones/%d", number)
}

// TagRefURL resolves a tag through the git refs API.
func (r RepoRef) TagRefURL(tag string) string {
	return r.repoPath("/git/ref/tags/%s", url.PathEscape(tag))
}

// ReleasesURL is the collection URL used to create releases.
func (r RepoRef) ReleasesURL() string {
	return r.repoPath("/releases")
}

// RecentReleasesURL lists the most recent releases on one page.
func (r RepoRef) RecentReleasesURL() (string, error) {
	return withQuery(r.ReleasesURL(), github.ListOptions{PerPage: releaseListPageSize})
}

func withQuery(base string, opts any) (string, error) {
	values, err := query.Values(opts)
	if err != nil {
		return "", fmt.Errorf("failed to encode query for %s: %w", base, err)
	}
	return base + "?" + values.Encode(), nil
}
