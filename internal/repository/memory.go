// Package repository holds the service's in-memory state: contact-form
// submissions, the cached repository listing, and the recent-query history.
// Nothing here survives a process restart.
package repository

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"portfolio-api/internal/models"
)

// maxRecentQueries caps the recent-query history.
const maxRecentQueries = 10

// ContactStore keeps contact submissions keyed by generated id.
type ContactStore struct {
	mu       sync.RWMutex
	contacts map[string]models.ContactSubmission
}

// NewContactStore creates an empty contact store.
func NewContactStore() *ContactStore {
	return &ContactStore{contacts: make(map[string]models.ContactSubmission)}
}

// Create persists a submission and returns it with its generated id.
func (s *ContactStore) Create(name, email string, subject *string, message string) models.ContactSubmission {
	contact := models.ContactSubmission{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Subject:   subject,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.contacts[contact.ID] = contact
	s.mu.Unlock()
	return contact
}

// Get returns a submission by id.
func (s *ContactStore) Get(id string) (models.ContactSubmission, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contacts[id]
	return c, ok
}

// List returns all submissions, newest first.
func (s *ContactStore) List() []models.ContactSubmission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ContactSubmission, 0, len(s.contacts))
	for _, c := range s.contacts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// RepoCache holds the last fetched repository listing. Each fetch replaces
// the whole set (clear-then-insert).
type RepoCache struct {
	mu    sync.RWMutex
	repos []models.RepoSummary
}

// NewRepoCache creates an empty cache.
func NewRepoCache() *RepoCache {
	return &RepoCache{}
}

// Replace discards the previous listing and stores the new one, assigning
// a generated id to rows that lack one.
func (c *RepoCache) Replace(repos []models.RepoSummary) []models.RepoSummary {
	stored := make([]models.RepoSummary, len(repos))
	copy(stored, repos)
	for i := range stored {
		if stored[i].ID == "" {
			stored[i].ID = uuid.NewString()
		}
	}

	c.mu.Lock()
	c.repos = stored
	c.mu.Unlock()
	return stored
}

// List returns the cached listing sorted by most recently updated; rows
// without a timestamp sort last.
func (c *RepoCache) List() []models.RepoSummary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.RepoSummary, len(c.repos))
	copy(out, c.repos)
	sort.SliceStable(out, func(i, j int) bool {
		return repoUpdatedUnix(out[i]) > repoUpdatedUnix(out[j])
	})
	return out
}

func repoUpdatedUnix(r models.RepoSummary) int64 {
	if r.UpdatedAt == nil {
		return -1 << 62
	}
	t, err := time.Parse(time.RFC3339, *r.UpdatedAt)
	if err != nil {
		return -1 << 62
	}
	return t.Unix()
}

// RecentQueries is the search history: up to ten unique query strings,
// most recent first, de-duplicated by exact text.
type RecentQueries struct {
	mu      sync.RWMutex
	queries []string
}

// NewRecentQueries creates an empty history.
func NewRecentQueries() *RecentQueries {
	return &RecentQueries{}
}

// Add front-inserts the trimmed query, removing any existing entry with the
// same text first. Inserting an eleventh distinct query evicts the oldest.
// Empty queries are ignored.
func (r *RecentQueries) Add(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]string, 0, len(r.queries)+1)
	next = append(next, text)
	for _, q := range r.queries {
		if q != text {
			next = append(next, q)
		}
	}
	if len(next) > maxRecentQueries {
		next = next[:maxRecentQueries]
	}
	r.queries = next
}

// Remove deletes a query from the history.
func (r *RecentQueries) Remove(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, q := range r.queries {
		if q == text {
			r.queries = append(r.queries[:i], r.queries[i+1:]...)
			return
		}
	}
}

// List returns the history, most recent first.
func (r *RecentQueries) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.queries))
	copy(out, r.queries)
	return out
}
