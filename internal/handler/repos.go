package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio-api/internal/github"
	"portfolio-api/internal/models"
)

// RepoService is the slice of the repository service the handler needs.
type RepoService interface {
	RefreshRepos(ctx context.Context, username string) ([]models.RepoSummary, error)
}

// RawRepoLister fetches a public repository listing for verbatim relaying.
type RawRepoLister interface {
	PublicReposRaw(ctx context.Context, username string) ([]byte, int, error)
}

// RepoHandler serves the curated repository listing and the thin public
// listing proxy.
type RepoHandler struct {
	service     RepoService
	raw         RawRepoLister
	defaultUser string
}

// NewRepoHandler creates the handler. defaultUser is used when the listing
// request names no username.
func NewRepoHandler(svc RepoService, raw RawRepoLister, defaultUser string) *RepoHandler {
	return &RepoHandler{service: svc, raw: raw, defaultUser: defaultUser}
}

// List handles GET /api/github/repos requests.
func (h *RepoHandler) List(c *gin.Context) {
	username := c.DefaultQuery("username", h.defaultUser)

	repos, err := h.service.RefreshRepos(c.Request.Context(), username)
	if err != nil {
		var ue *github.UpstreamError
		if errors.As(err, &ue) {
			c.Data(ue.Status, "application/json", []byte(ue.Body))
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, repos)
}

// PublicProxy handles GET /repos requests: the upstream public listing is
// relayed untouched, status included.
func (h *RepoHandler) PublicProxy(c *gin.Context) {
	user := c.Query("user")
	if user == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user"})
		return
	}

	body, status, err := h.raw.PublicReposRaw(c.Request.Context(), user)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "github request failed"})
		return
	}
	c.Data(status, "application/json", body)
}
