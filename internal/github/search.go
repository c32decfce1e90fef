package github

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/danielolaszy/changelog/internal/logging"
	"github.com/danielolaszy/changelog/pkg/models"
	"github.com/google/go-github/v41/github"
)

// SearchManager runs the release-note queries and checks that their merged
// results are consistent.
type SearchManager struct {
	api  Getter
	repo RepoRef
}

// NewSearchManager creates a search manager for repo.
func NewSearchManager(api Getter, repo RepoRef) *SearchManager {
	return &SearchManager{api: api, repo: repo}
}

// searchPage is one page of /search/issues.
type searchPage struct {
	TotalCount *int            `json:"total_count"`
	Items      []*github.Issue `json:"items"`
}

// comparePage is one page of /repos/{repo}/compare/{base}...{head}.
type comparePage struct {
	TotalCommits *int                       `json:"total_commits"`
	Commits      []*github.RepositoryCommit `json:"commits"`
}

// issueAccumulator collects the pages of both issue searches.
type issueAccumulator struct {
	issues        []models.Issue
	expectedTotal int
}

func (a *issueAccumulator) onPage(page int, response *Response) error {
	var result searchPage
	if err := json.Unmarshal([]byte(response.Body), &result); err != nil {
		return &ParseError{URI: response.RequestURI, Reason: "invalid search result", Err: err}
	}

	if page == 1 {
		if result.TotalCount == nil {
			return &ParseError{URI: response.RequestURI, Reason: "missing total_count"}
		}
		a.expectedTotal += *result.TotalCount
	}

	for i, item := range result.Items {
		issue, err := issueFromSearchItem(item)
		if err != nil {
			return &ParseError{URI: response.RequestURI, Reason: fmt.Sprintf("item %d", i), Err: err}
		}
		a.issues = append(a.issues, issue)
	}
	return nil
}

// FindIssuesByMilestone returns the issues and pull requests of a milestone,
// newest first. It runs one search per type and fails when the merged item
// count differs from the sum of the reported totals.
func (m *SearchManager) FindIssuesByMilestone(ctx context.Context, milestoneTitle string) ([]models.Issue, error) {
	acc := &issueAccumulator{}

	for _, issueType := range []string{TypeIssue, TypePullRequest} {
		firstPageURL, err := m.repo.SearchURL(milestoneTitle, issueType)
		if err != nil {
			return nil, err
		}
		if err := Paginate(ctx, m.api, firstPageURL, acc.onPage); err != nil {
			return nil, fmt.Errorf("failed to search %ss in milestone %s: %w", issueType, milestoneTitle, err)
		}
	}

	if err := checkExpectedNumberOfIssues(len(acc.issues), acc.expectedTotal); err != nil {
		return nil, err
	}

	sort.SliceStable(acc.issues, func(i, j int) bool {
		return acc.issues[i].CreatedAt.After(acc.issues[j].CreatedAt)
	})

	logging.Debug("found issues by milestone",
		"milestone", milestoneTitle,
		"count", len(acc.issues))
	return acc.issues, nil
}

func checkExpectedNumberOfIssues(numIssues, totalCount int) error {
	if numIssues != totalCount {
		return &UnexpectedResultCountError{Expected: totalCount, Actual: numIssues}
	}
	return nil
}

func issueFromSearchItem(item *github.Issue) (models.Issue, error) {
	if item == nil {
		return models.Issue{}, fmt.Errorf("null item")
	}
	if item.Title == nil {
		return models.Issue{}, fmt.Errorf("missing title")
	}
	if item.Number == nil {
		return models.Issue{}, fmt.Errorf("missing number")
	}
	if item.HTMLURL == nil {
		return models.Issue{}, fmt.Errorf("missing html_url")
	}
	if item.CreatedAt == nil {
		return models.Issue{}, fmt.Errorf("missing created_at")
	}

	labels := make([]string, 0, len(item.Labels))
	seen := make(map[string]struct{}, len(item.Labels))
	for _, label := range item.Labels {
		name := label.GetName()
		if name == "" {
			return models.Issue{}, fmt.Errorf("issue #%d has a label without a name", item.GetNumber())
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		labels = append(labels, name)
	}

	var author *models.User
	if item.User != nil {
		if item.User.Login == nil || item.User.HTMLURL == nil {
			return models.Issue{}, fmt.Errorf("issue #%d has an incomplete user", item.GetNumber())
		}
		author = &models.User{
			Name:    item.User.GetLogin(),
			Login:   item.User.Login,
			HTMLURL: item.User.HTMLURL,
		}
	}

	return models.Issue{
		Number:    item.GetNumber(),
		Title:     item.GetTitle(),
		HTMLURL:   item.GetHTMLURL(),
		Labels:    labels,
		Author:    author,
		CreatedAt: item.CreatedAt.UTC(),
	}, nil
}

// authorAccumulator collects unique commit authors across compare pages.
type authorAccumulator struct {
	seen   map[models.UserKey]struct{}
	result models.CommitAuthorsResult
}

func (a *authorAccumulator) onPage(_ int, response *Response) error {
	var result comparePage
	if err := json.Unmarshal([]byte(response.Body), &result); err != nil {
		return &ParseError{URI: response.RequestURI, Reason: "invalid comparison", Err: err}
	}
	if result.TotalCommits == nil {
		return &ParseError{URI: response.RequestURI, Reason: "missing total_commits"}
	}
	a.result.TotalCommits += *result.TotalCommits

	for i, commit := range result.Commits {
		user, diagnostic, err := userFromCommit(commit)
		if err != nil {
			return &ParseError{URI: response.RequestURI, Reason: fmt.Sprintf("commit %d", i), Err: err}
		}
		if diagnostic != nil {
			a.result.Diagnostics = append(a.result.Diagnostics, *diagnostic)
		}
		key := user.Key()
		if _, dup := a.seen[key]; dup {
			continue
		}
		a.seen[key] = struct{}{}
		a.result.Authors = append(a.result.Authors, user)
	}
	return nil
}

// FindUniqueAuthorsInCommitsBetween returns the distinct authors of the
// commits between base and head along with the total commit count.
func (m *SearchManager) FindUniqueAuthorsInCommitsBetween(ctx context.Context, base, head string) (models.CommitAuthorsResult, error) {
	firstPageURL, err := m.repo.CompareURL(base, head)
	if err != nil {
		return models.CommitAuthorsResult{}, err
	}

	acc := &authorAccumulator{seen: make(map[models.UserKey]struct{})}
	if err := Paginate(ctx, m.api, firstPageURL, acc.onPage); err != nil {
		return models.CommitAuthorsResult{}, fmt.Errorf("failed to compare %s...%s: %w", base, head, err)
	}

	logging.Debug("found unique commit authors",
		"base", base,
		"head", head,
		"authors", len(acc.result.Authors),
		"commits", acc.result.TotalCommits)
	return acc.result, nil
}

// userFromCommit takes the display name from the commit's own author record and
// the login and profile URL from the linked account, which may be absent.
func userFromCommit(commit *github.RepositoryCommit) (models.User, *models.Diagnostic, error) {
	if commit == nil {
		return models.User{}, nil, fmt.Errorf("null commit")
	}
	commitAuthor := commit.GetCommit().GetAuthor()
	if commitAuthor == nil || commitAuthor.Name == nil {
		return models.User{}, nil, fmt.Errorf("commit %s has no author name", commit.GetSHA())
	}
	name := commitAuthor.GetName()

	if commit.Author == nil {
		diagnostic := &models.Diagnostic{
			Kind:     models.DiagnosticUnlinkedCommitAuthor,
			Message:  fmt.Sprintf("commit has null author: API: %s , HTML: %s", commit.GetURL(), commit.GetHTMLURL()),
			Subjects: []string{commit.GetURL(), commit.GetHTMLURL()},
		}
		return models.User{Name: name}, diagnostic, nil
	}

	if commit.Author.Login == nil || commit.Author.HTMLURL == nil {
		return models.User{}, nil, fmt.Errorf("commit %s has an incomplete author", commit.GetSHA())
	}
	return models.User{
		Name:    name,
		Login:   commit.Author.Login,
		HTMLURL: commit.Author.HTMLURL,
	}, nil, nil
}
