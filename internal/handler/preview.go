package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio-api/internal/service"
)

// PreviewService is the slice of the preview scraper the handler needs.
type PreviewService interface {
	Fetch(ctx context.Context, url string) (*service.Preview, error)
}

// PreviewHandler serves Open Graph previews of external pages.
type PreviewHandler struct {
	service PreviewService
}

// NewPreviewHandler creates the handler.
func NewPreviewHandler(svc PreviewService) *PreviewHandler {
	return &PreviewHandler{service: svc}
}

// Preview handles GET /api/place-preview requests.
func (h *PreviewHandler) Preview(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameter 'url'"})
		return
	}

	preview, err := h.service.Fetch(c.Request.Context(), url)
	if err != nil {
		var fe *service.FetchError
		if errors.As(err, &fe) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch preview"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, preview)
}
