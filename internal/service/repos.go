package service

import (
	"context"

	"portfolio-api/internal/models"
	"portfolio-api/internal/repository"
)

// RepoLister is the slice of the GitHub client the service needs.
type RepoLister interface {
	ListUserRepos(ctx context.Context, username string) ([]models.RepoSummary, error)
}

// RepoService fetches the repository listing and caches it wholesale.
type RepoService struct {
	client RepoLister
	cache  *repository.RepoCache
}

// NewRepoService wires the listing client to the cache.
func NewRepoService(client RepoLister, cache *repository.RepoCache) *RepoService {
	return &RepoService{client: client, cache: cache}
}

// RefreshRepos fetches the listing, replaces the cache, and returns the
// stored rows. Upstream failure leaves the previous cache untouched.
func (s *RepoService) RefreshRepos(ctx context.Context, username string) ([]models.RepoSummary, error) {
	repos, err := s.client.ListUserRepos(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.cache.Replace(repos), nil
}

// Cached returns the last fetched listing, most recently updated first.
func (s *RepoService) Cached() []models.RepoSummary {
	return s.cache.List()
}
