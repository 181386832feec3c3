package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"portfolio-api/internal/models"
	"portfolio-api/internal/repository"
)

type MockRepoLister struct {
	mock.Mock
}

func (m *MockRepoLister) ListUserRepos(ctx context.Context, username string) ([]models.RepoSummary, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RepoSummary), args.Error(1)
}

func TestRefreshReposReplacesCache(t *testing.T) {
	lister := new(MockRepoLister)
	cache := repository.NewRepoCache()
	cache.Replace([]models.RepoSummary{{Name: "stale"}})

	fresh := []models.RepoSummary{{Name: "fresh", UpdatedAt: strPtrSvc("2024-06-01T00:00:00Z")}}
	lister.On("ListUserRepos", mock.Anything, "halimcho").Return(fresh, nil)

	svc := NewRepoService(lister, cache)
	got, err := svc.RefreshRepos(context.Background(), "halimcho")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "fresh", got[0].Name)
	assert.NotEmpty(t, got[0].ID)

	cached := svc.Cached()
	require.Len(t, cached, 1)
	assert.Equal(t, "fresh", cached[0].Name)
	lister.AssertExpectations(t)
}

func TestRefreshReposFailureKeepsCache(t *testing.T) {
	lister := new(MockRepoLister)
	cache := repository.NewRepoCache()
	cache.Replace([]models.RepoSummary{{Name: "previous"}})

	lister.On("ListUserRepos", mock.Anything, "halimcho").Return(nil, errors.New("upstream down"))

	svc := NewRepoService(lister, cache)
	_, err := svc.RefreshRepos(context.Background(), "halimcho")
	require.Error(t, err)

	cached := svc.Cached()
	require.Len(t, cached, 1)
	assert.Equal(t, "previous", cached[0].Name)
}

func strPtrSvc(s string) *string { return &s }
