package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio-api/internal/kakao"
)

// LocationHandler proxies coordinate-to-address lookups to the place
// provider, relaying the upstream JSON verbatim.
type LocationHandler struct {
	lookup AddressLookup
}

// NewLocationHandler creates the handler over the lazy provider.
func NewLocationHandler(lookup AddressLookup) *LocationHandler {
	return &LocationHandler{lookup: lookup}
}

// Location handles GET /api/kakao/location requests.
func (h *LocationHandler) Location(c *gin.Context) {
	pt, err := parseCoords(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	raw, err := h.lookup.Coord2Address(c.Request.Context(), pt.Lat, pt.Lng)
	if err != nil {
		if errors.Is(err, kakao.ErrNoAPIKey) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "KAKAO_API_KEY is not configured"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "kakao local api request failed"})
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}
