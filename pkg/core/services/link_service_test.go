package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/favlinks/pkg/core/domain"
	"github.com/wadjakorntonsri/favlinks/pkg/core/services"
)

// brokenLedger is an activity store whose writes always fail.
type brokenLedger struct {
	mock.Mock
}

func (m *brokenLedger) RecordActivity(ctx context.Context, a *domain.Activity) error {
	return m.Called(ctx, a).Error(0)
}

func (m *brokenLedger) ListActivities(ctx context.Context, filter domain.ActivityFilter, limit int) ([]domain.Activity, error) {
	args := m.Called(ctx, filter, limit)
	return args.Get(0).([]domain.Activity), args.Error(1)
}

func (m *brokenLedger) CountActivities(ctx context.Context, filter domain.ActivityFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *brokenLedger) DeleteActivities(ctx context.Context, filter domain.ActivityFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func TestLinkService_CreateListDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bob := env.user(t, "bob", false)
	carol := env.user(t, "carol", false)

	link, err := env.links.CreateLink(ctx, bob, "  Go  ", " https://go.dev ", true)
	require.NoError(t, err)
	assert.Equal(t, "Go", link.Name)
	assert.Equal(t, "https://go.dev", link.URL)
	assert.Equal(t, bob.ID, link.UserID)

	_, err = env.links.CreateLink(ctx, bob, "private", "https://example.com", false)
	require.NoError(t, err)

	mine, err := env.links.ListLinks(ctx, bob)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	public, err := env.links.ListPublicLinks(ctx)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "bob", public[0].SharedBy)

	// Other users can neither read nor delete it.
	_, err = env.links.GetLink(ctx, carol, link.ID)
	assert.ErrorIs(t, err, services.ErrLinkNotFound)
	_, err = env.links.DeleteLink(ctx, carol, link.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	got, err := env.links.GetLink(ctx, bob, link.ID)
	require.NoError(t, err)
	assert.Equal(t, link.Name, got.Name)

	deleted, err := env.links.DeleteLink(ctx, bob, link.ID)
	require.NoError(t, err)
	assert.Equal(t, link.ID, deleted.ID)

	rows, err := env.activity.List(ctx, bob)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, domain.ActionDeleteLink, rows[0].Action)
	assert.JSONEq(t, `{"id":1,"name":"Go","url":"https://go.dev"}`, rows[0].Details)
	assert.Equal(t, domain.ActionCreateLink, rows[2].Action)
}

func TestLinkService_CreateRejectsBlankFields(t *testing.T) {
	env := newTestEnv(t)
	bob := env.user(t, "bob", false)

	for _, tc := range [][2]string{{"", "https://go.dev"}, {"Go", "   "}} {
		_, err := env.links.CreateLink(context.Background(), bob, tc[0], tc[1], false)
		assert.ErrorIs(t, err, services.ErrInvalidArgument)
	}
	assert.Zero(t, env.activityCount(t, domain.AllActivities()))
}

func TestLinkService_LedgerFailureDoesNotFailMutation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bob := env.user(t, "bob", false)

	ledger := new(brokenLedger)
	ledger.On("RecordActivity", mock.Anything, mock.MatchedBy(func(a *domain.Activity) bool {
		return a.UserID == bob.ID
	})).Return(errors.New("disk I/O error"))

	links := services.NewLinkService(env.repo, services.NewActivityService(ledger))

	link, err := links.CreateLink(ctx, bob, "Go", "https://go.dev", false)
	require.NoError(t, err)
	_, err = links.DeleteLink(ctx, bob, link.ID)
	require.NoError(t, err)

	ledger.AssertNumberOfCalls(t, "RecordActivity", 2)
	ledger.AssertExpectations(t)
}
