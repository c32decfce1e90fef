package changelog

import (
	"context"
	"testing"

	"github.com/danielolaszy/changelog/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMilestones struct {
	open    map[string]*models.Milestone
	created []string
}

func (f *fakeMilestones) FindOpenMilestoneByTitle(_ context.Context, title string) (*models.Milestone, error) {
	return f.open[title], nil
}

func (f *fakeMilestones) CloseMilestoneByTitle(_ context.Context, title string) (*models.Milestone, error) {
	m := *f.open[title]
	m.State = "closed"
	return &m, nil
}

func (f *fakeMilestones) CreateMilestone(_ context.Context, title string) (*models.Milestone, error) {
	f.created = append(f.created, title)
	return &models.Milestone{Number: 99, Title: title, State: "open"}, nil
}

func TestResolveNextMilestone(t *testing.T) {
	tests := []struct {
		title string
		strip bool
		want  string
	}{
		{title: "v1.4.3", strip: true, want: "1.4.3"},
		{title: "1.4.3", strip: true, want: "1.4.3"},
		{title: "v1.4.3", strip: false, want: "v1.4.3"},
		{title: "vv1", strip: true, want: "v1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveNextMilestone(tt.title, tt.strip))
	}
}

func TestCreateMilestoneIfAbsent(t *testing.T) {
	existing := &models.Milestone{Number: 8, Title: "1.4.3", State: "open"}
	milestones := &fakeMilestones{open: map[string]*models.Milestone{"1.4.3": existing}}

	milestone, created, err := CreateMilestoneIfAbsent(context.Background(), milestones, "1.4.3")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, existing, milestone)
	assert.Empty(t, milestones.created)

	milestone, created, err = CreateMilestoneIfAbsent(context.Background(), milestones, "1.5.0")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 99, milestone.Number)
	assert.Equal(t, []string{"1.5.0"}, milestones.created)
}
