package github

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/danielolaszy/changelog/internal/logging"
	"github.com/danielolaszy/changelog/pkg/models"
	"github.com/google/go-github/v41/github"
)

// ReleaseManager creates releases.
type ReleaseManager struct {
	api  API
	repo RepoRef
}

// NewReleaseManager creates a release manager for repo.
func NewReleaseManager(api API, repo RepoRef) *ReleaseManager {
	return &ReleaseManager{api: api, repo: repo}
}

// CreateRelease creates a release named tagName for the existing tag tagName
// with content as its body.
//
// The tag must resolve, and none of the 100 most recent releases may use
// tagName as name or tag. Older releases are not checked; creating a release
// for a tag that old is not a supported use.
func (m *ReleaseManager) CreateRelease(ctx context.Context, tagName, content string) (*models.Release, error) {
	if err := m.checkTagExists(ctx, tagName); err != nil {
		return nil, err
	}
	if err := m.checkReleaseDoesNotExist(ctx, tagName); err != nil {
		return nil, err
	}

	body := &github.RepositoryRelease{
		TagName: github.String(tagName),
		Name:    github.String(tagName),
		Body:    github.String(content),
	}
	response, err := m.api.Post(ctx, m.repo.ReleasesURL(), body)
	if err != nil {
		return nil, err
	}
	if err := expectStatus(response, http.MethodPost, http.StatusCreated, "create release"); err != nil {
		return nil, err
	}

	var created github.RepositoryRelease
	if err := json.Unmarshal([]byte(response.Body), &created); err != nil {
		return nil, &ParseError{URI: response.RequestURI, Reason: "invalid release", Err: err}
	}
	if created.HTMLURL == nil {
		return nil, &ParseError{URI: response.RequestURI, Reason: "release requires html_url"}
	}

	logging.Info("created release", "tag", tagName, "url", created.GetHTMLURL())
	return &models.Release{
		TagName: created.GetTagName(),
		Name:    created.GetName(),
		HTMLURL: created.GetHTMLURL(),
	}, nil
}

func (m *ReleaseManager) checkTagExists(ctx context.Context, tagName string) error {
	response, err := m.api.Get(ctx, m.repo.TagRefURL(tagName))
	if err != nil {
		return err
	}
	if response.StatusCode != http.StatusOK {
		return &TagNotFoundError{Tag: tagName, StatusCode: response.StatusCode}
	}

	var ref github.Reference
	if err := json.Unmarshal([]byte(response.Body), &ref); err != nil {
		return &ParseError{URI: response.RequestURI, Reason: "invalid tag reference", Err: err}
	}
	logging.Debug("resolved tag", "tag", tagName, "ref", ref.GetRef(), "sha", ref.GetObject().GetSHA())
	return nil
}

func (m *ReleaseManager) checkReleaseDoesNotExist(ctx context.Context, tagName string) error {
	listURL, err := m.repo.RecentReleasesURL()
	if err != nil {
		return err
	}

	response, err := m.api.Get(ctx, listURL)
	if err != nil {
		return err
	}
	if err := expectStatus(response, http.MethodGet, http.StatusOK, "list releases"); err != nil {
		return err
	}

	var releases []*github.RepositoryRelease
	if err := json.Unmarshal([]byte(response.Body), &releases); err != nil {
		return &ParseError{URI: response.RequestURI, Reason: "invalid release list", Err: err}
	}

	for _, release := range releases {
		if release.GetName() == tagName {
			return &ReleaseExistsError{Tag: tagName, Field: "name"}
		}
	}
	for _, release := range releases {
		if release.GetTagName() == tagName {
			return &ReleaseExistsError{Tag: tagName, Field: "tag_name"}
		}
	}
	return nil
}
