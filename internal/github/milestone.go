package github

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/danielolaszy/changelog/internal/logging"
	"github.com/danielolaszy/changelog/pkg/models"
	"github.com/google/go-github/v41/github"
)

// MilestoneManager finds, closes and creates milestones.
type MilestoneManager struct {
	api  API
	repo RepoRef
}

// NewMilestoneManager creates a milestone manager for repo.
func NewMilestoneManager(api API, repo RepoRef) *MilestoneManager {
	return &MilestoneManager{api: api, repo: repo}
}

// GetOpenMilestoneByTitle returns the open milestone with exactly title, or a
// *MilestoneNotFoundError.
func (m *MilestoneManager) GetOpenMilestoneByTitle(ctx context.Context, title string) (*models.Milestone, error) {
	milestone, err := m.FindOpenMilestoneByTitle(ctx, title)
	if err != nil {
		return nil, err
	}
	if milestone == nil {
		return nil, &MilestoneNotFoundError{Title: title}
	}
	return milestone, nil
}

// FindOpenMilestoneByTitle returns the open milestone with exactly title, or nil
// when there is none.
//
// Open milestones are listed on a single page of 50. A next-page link means
// that assumption no longer holds and is reported as an error.
func (m *MilestoneManager) FindOpenMilestoneByTitle(ctx context.Context, title string) (*models.Milestone, error) {
	listURL, err := m.repo.OpenMilestonesURL()
	if err != nil {
		return nil, err
	}

	response, err := m.api.Get(ctx, listURL)
	if err != nil {
		return nil, err
	}
	if err := expectStatus(response, http.MethodGet, http.StatusOK, "list milestones"); err != nil {
		return nil, err
	}
	if response.Link != "" {
		return nil, &UnexpectedPaginationError{URI: response.RequestURI, Link: response.Link}
	}

	var milestones []*github.Milestone
	if err := json.Unmarshal([]byte(response.Body), &milestones); err != nil {
		return nil, &ParseError{URI: response.RequestURI, Reason: "invalid milestone list", Err: err}
	}

	for _, milestone := range milestones {
		if milestone.GetTitle() == title {
			return milestoneFrom(milestone, response.RequestURI)
		}
	}
	return nil, nil
}

// CloseMilestone sets the state of milestone number to closed.
func (m *MilestoneManager) CloseMilestone(ctx context.Context, number int) (*models.Milestone, error) {
	body := &github.Milestone{State: github.String("closed")}

	response, err := m.api.Patch(ctx, m.repo.MilestoneURL(number), body)
	if err != nil {
		return nil, err
	}
	if err := expectStatus(response, http.MethodPatch, http.StatusOK, "close milestone"); err != nil {
		return nil, err
	}

	logging.Info("closed milestone", "number", number)
	return decodeMilestone(response)
}

// CloseMilestoneByTitle looks up the open milestone with title and closes it.
func (m *MilestoneManager) CloseMilestoneByTitle(ctx context.Context, title string) (*models.Milestone, error) {
	milestone, err := m.GetOpenMilestoneByTitle(ctx, title)
	if err != nil {
		return nil, err
	}
	return m.CloseMilestone(ctx, milestone.Number)
}

// CreateMilestone creates a milestone. It does not check for an existing one
// with the same title.
func (m *MilestoneManager) CreateMilestone(ctx context.Context, title string) (*models.Milestone, error) {
	body := &github.Milestone{Title: github.String(title)}

	response, err := m.api.Post(ctx, m.repo.MilestonesURL(), body)
	if err != nil {
		return nil, err
	}
	if err := expectStatus(response, http.MethodPost, http.StatusCreated, "create milestone "+title); err != nil {
		return nil, err
	}

	logging.Info("created milestone", "title", title)
	return decodeMilestone(response)
}

func decodeMilestone(response *Response) (*models.Milestone, error) {
	var milestone github.Milestone
	if err := json.Unmarshal([]byte(response.Body), &milestone); err != nil {
		return nil, &ParseError{URI: response.RequestURI, Reason: "invalid milestone", Err: err}
	}
	return milestoneFrom(&milestone, response.RequestURI)
}

func milestoneFrom(milestone *github.Milestone, uri string) (*models.Milestone, error) {
	if milestone.Number == nil || milestone.Title == nil || milestone.HTMLURL == nil {
		return nil, &ParseError{URI: uri, Reason: "milestone requires number, title and html_url"}
	}
	return &models.Milestone{
		Number:  milestone.GetNumber(),
		Title:   milestone.GetTitle(),
		HTMLURL: milestone.GetHTMLURL(),
		State:   milestone.GetState(),
	}, nil
}

func expectStatus(response *Response, method string, want int, operation string) error {
	if response.StatusCode == want {
		return nil
	}
	return &StatusError{
		Operation:  operation,
		Method:     method,
		URL:        response.RequestURI,
		StatusCode: response.StatusCode,
		Body:       abbreviate(response.Body, maxBodyExcerpt),
	}
}
