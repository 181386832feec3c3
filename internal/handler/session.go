package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio-api/internal/mapsession"
	"portfolio-api/internal/models"
)

// SessionHandler exposes the server-held map session: viewport, overlay
// lifecycle, result markers and their clusters, and the click sequence.
type SessionHandler struct {
	session *mapsession.Session
	themes  *mapsession.ThemeStore
}

// NewSessionHandler creates the handler over one live session.
func NewSessionHandler(session *mapsession.Session, themes *mapsession.ThemeStore) *SessionHandler {
	return &SessionHandler{session: session, themes: themes}
}

// View handles GET /api/map/view requests.
func (h *SessionHandler) View(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"view":          h.session.View(),
		"overlay":       h.session.Overlay(),
		"panel_visible": h.session.PanelVisible(),
	})
}

// Click handles POST /api/map/click requests. A click superseded by a newer
// one returns a null overlay.
func (h *SessionHandler) Click(c *gin.Context) {
	pt, err := parseCoords(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	overlay, err := h.session.HandleClick(c.Request.Context(), pt)
	if err != nil {
		if errors.Is(err, mapsession.ErrNotReady) {
			c.JSON(http.StatusConflict, gin.H{"error": "map is not ready"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"overlay": overlay, "view": h.session.View()})
}

// SetMarkers handles POST /api/map/markers requests, replacing the result
// marker batch wholesale and reframing the viewport.
func (h *SessionHandler) SetMarkers(c *gin.Context) {
	var places []models.Place
	if err := c.ShouldBindJSON(&places); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed JSON body"})
		return
	}
	h.session.SetResultMarkers(places)
	c.JSON(http.StatusOK, gin.H{"count": len(places), "view": h.session.View()})
}

// Clusters handles GET /api/map/clusters requests for the current zoom level.
func (h *SessionHandler) Clusters(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"clusters": h.session.Clusters()})
}

// Select handles POST /api/map/select requests: focus one search result.
func (h *SessionHandler) Select(c *gin.Context) {
	var place models.Place
	if err := c.ShouldBindJSON(&place); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed JSON body"})
		return
	}
	overlay := h.session.SelectResult(place)
	c.JSON(http.StatusOK, gin.H{"overlay": overlay, "view": h.session.View()})
}

// Zoom handles POST /api/map/zoom requests.
func (h *SessionHandler) Zoom(c *gin.Context) {
	var level int
	switch c.Query("dir") {
	case "in":
		level = h.session.ZoomIn()
	case "out":
		level = h.session.ZoomOut()
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "dir must be in or out"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"level": level})
}

// SetMapType handles POST /api/map/type requests.
func (h *SessionHandler) SetMapType(c *gin.Context) {
	if err := h.session.SetMapType(models.MapType(c.Query("value"))); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value must be road or hybrid"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"view": h.session.View()})
}

// SetTheme handles POST /api/map/theme requests; an open overlay is
// re-painted through the store subscription.
func (h *SessionHandler) SetTheme(c *gin.Context) {
	theme := mapsession.Theme(c.Query("value"))
	if theme != mapsession.ThemeLight && theme != mapsession.ThemeDark {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value must be light or dark"})
		return
	}
	h.themes.Set(theme)
	c.JSON(http.StatusOK, gin.H{"palette": h.themes.Palette()})
}

// Gesture handles POST /api/map/gesture requests, suppressing the result
// panel while a pan or zoom gesture is active.
func (h *SessionHandler) Gesture(c *gin.Context) {
	switch c.Query("phase") {
	case "begin":
		h.session.BeginGesture()
	case "end":
		h.session.EndGesture()
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "phase must be begin or end"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"panel_visible": h.session.PanelVisible()})
}
