package changelog

import (
	"context"
	"strings"

	"github.com/danielolaszy/changelog/internal/logging"
	"github.com/danielolaszy/changelog/pkg/models"
)

// MilestoneService looks up, closes and creates milestones.
type MilestoneService interface {
	FindOpenMilestoneByTitle(ctx context.Context, title string) (*models.Milestone, error)
	CloseMilestoneByTitle(ctx context.Context, title string) (*models.Milestone, error)
	CreateMilestone(ctx context.Context, title string) (*models.Milestone, error)
}

// ResolveNextMilestone strips a leading "v" from title when stripVPrefix is set.
func ResolveNextMilestone(title string, stripVPrefix bool) string {
	if stripVPrefix {
		return strings.TrimPrefix(title, "v")
	}
	return title
}

// CreateMilestoneIfAbsent returns the open milestone with title, creating it
// when there is none. created reports whether a milestone was created.
func CreateMilestoneIfAbsent(ctx context.Context, milestones MilestoneService, title string) (milestone *models.Milestone, created bool, err error) {
	existing, err := milestones.FindOpenMilestoneByTitle(ctx, title)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		logging.Warn("milestone already exists, returning it", "title", title)
		return existing, false, nil
	}

	milestone, err = milestones.CreateMilestone(ctx, title)
	if err != nil {
		return nil, false, err
	}
	return milestone, true, nil
}
