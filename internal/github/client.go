// Package github lists a user's repositories via the GitHub REST API.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"portfolio-api/internal/models"
)

const defaultBaseURL = "https://api.github.com"

// maxRepos is how many repositories the portfolio shows.
const maxRepos = 6

// UpstreamError relays a non-success GitHub response verbatim.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("github: upstream status %d: %s", e.Status, e.Body)
}

// Client fetches repository listings, optionally authenticated.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient creates a client. An empty token limits it to public listings.
func NewClient(token string, log zerolog.Logger) *Client {
	return &Client{
		token:   token,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
}

// repo is the subset of the GitHub repository payload the portfolio uses.
type repo struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Language    *string `json:"language"`
	Stars       int     `json:"stargazers_count"`
	Forks       int     `json:"forks_count"`
	UpdatedAt   *string `json:"updated_at"`
	HTMLURL     string  `json:"html_url"`
	Owner       struct {
		Login string `json:"login"`
	} `json:"owner"`
}

func (c *Client) do(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", "Portfolio-Website")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("github: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}

func toSummaries(repos []repo) []models.RepoSummary {
	out := make([]models.RepoSummary, 0, len(repos))
	for _, r := range repos {
		stars, forks := r.Stars, r.Forks
		out = append(out, models.RepoSummary{
			ID:          strconv.FormatInt(r.ID, 10),
			Name:        r.Name,
			Description: r.Description,
			Language:    r.Language,
			Stars:       &stars,
			Forks:       &forks,
			UpdatedAt:   r.UpdatedAt,
			HTMLURL:     r.HTMLURL,
		})
	}
	return out
}

// ListUserRepos returns up to six of the user's most recently updated
// repositories. With a token it lists the authenticated user's repositories
// (private included) filtered to ones owned by username; without a token, or
// when that path fails or comes back empty, it falls back to the public
// per-user listing.
func (c *Client) ListUserRepos(ctx context.Context, username string) ([]models.RepoSummary, error) {
	if c.token != "" {
		repos, err := c.listAuthenticated(ctx, username)
		if err != nil {
			c.log.Warn().Err(err).Msg("authenticated repo listing failed, falling back to public")
		} else if len(repos) > 0 {
			return repos, nil
		}
	}
	return c.listPublic(ctx, username)
}

func (c *Client) listAuthenticated(ctx context.Context, username string) ([]models.RepoSummary, error) {
	u := c.baseURL + "/user/repos?affiliation=owner&visibility=all&sort=updated&per_page=100"
	body, status, err := c.do(ctx, u)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &UpstreamError{Status: status, Body: string(body)}
	}

	var all []repo
	if err := json.Unmarshal(body, &all); err != nil {
		return nil, err
	}

	owned := all[:0]
	for _, r := range all {
		if strings.EqualFold(r.Owner.Login, username) {
			owned = append(owned, r)
		}
	}
	sort.SliceStable(owned, func(i, j int) bool {
		return updatedAtUnix(owned[i]) > updatedAtUnix(owned[j])
	})
	if len(owned) > maxRepos {
		owned = owned[:maxRepos]
	}
	return toSummaries(owned), nil
}

func (c *Client) listPublic(ctx context.Context, username string) ([]models.RepoSummary, error) {
	u := fmt.Sprintf("%s/users/%s/repos?sort=updated&type=owner&per_page=%d",
		c.baseURL, url.PathEscape(username), maxRepos)
	body, status, err := c.do(ctx, u)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &UpstreamError{Status: status, Body: string(body)}
	}

	var repos []repo
	if err := json.Unmarshal(body, &repos); err != nil {
		return nil, err
	}
	return toSummaries(repos), nil
}

// PublicReposRaw fetches the public per-user listing and returns the raw
// body and status for verbatim relaying.
func (c *Client) PublicReposRaw(ctx context.Context, username string) ([]byte, int, error) {
	u := fmt.Sprintf("%s/users/%s/repos?per_page=100&sort=updated", c.baseURL, url.PathEscape(username))
	return c.do(ctx, u)
}

func updatedAtUnix(r repo) int64 {
	if r.UpdatedAt == nil {
		return -1
	}
	t, err := time.Parse(time.RFC3339, *r.UpdatedAt)
	if err != nil {
		return -1
	}
	return t.Unix()
}
