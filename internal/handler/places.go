package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"portfolio-api/internal/geo"
	"portfolio-api/internal/kakao"
	"portfolio-api/internal/models"
	"portfolio-api/internal/service"
)

// PlaceService is the slice of the search service the handler needs.
type PlaceService interface {
	SearchPlaces(ctx context.Context, q models.SearchQuery, mapCenter models.GeoPoint) (*service.SearchResult, error)
	NearestPlace(ctx context.Context, pt models.GeoPoint) (*service.NearestResult, error)
}

// AddressLookup reverse-geocodes a coordinate; used when a nearest-place
// lookup comes back empty. May be nil when no provider key is configured.
type AddressLookup interface {
	Coord2Address(ctx context.Context, lat, lng float64) (json.RawMessage, error)
}

// PlaceHandler serves place search and nearest-place requests.
type PlaceHandler struct {
	service PlaceService
	lookup  AddressLookup
}

// NewPlaceHandler creates the handler. lookup may be nil.
func NewPlaceHandler(svc PlaceService, lookup AddressLookup) *PlaceHandler {
	return &PlaceHandler{service: svc, lookup: lookup}
}

// Search handles GET /api/places/search requests.
func (h *PlaceHandler) Search(c *gin.Context) {
	text := c.Query("q")
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameter 'q'"})
		return
	}

	radius, err := strconv.Atoi(c.DefaultQuery("radius", "3"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "radius must be an integer"})
		return
	}
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be an integer"})
		return
	}

	bias := models.BiasAnchor(c.DefaultQuery("bias", string(models.BiasMe)))
	if bias != models.BiasMe && bias != models.BiasMapCenter {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bias must be me or mapCenter"})
		return
	}

	var center models.GeoPoint
	if bias == models.BiasMapCenter {
		center, err = parseCoords(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	query := models.SearchQuery{
		Text:     text,
		Bias:     bias,
		RadiusKm: radius,
		Sort:     models.SortOrder(c.DefaultQuery("sort", string(models.SortAccuracy))),
		Page:     page,
	}

	result, err := h.service.SearchPlaces(c.Request.Context(), query, center)
	if err != nil {
		h.searchError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *PlaceHandler) searchError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRadius):
		c.JSON(http.StatusBadRequest, gin.H{"error": "radius must be one of 1, 2, 3, 5, 10, 15, 20"})
	case errors.Is(err, service.ErrInvalidSort):
		c.JSON(http.StatusBadRequest, gin.H{"error": "sort must be accuracy or distance"})
	case errors.Is(err, service.ErrInvalidPage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be at least 1"})
	case errors.Is(err, service.ErrStaleResult):
		c.JSON(http.StatusConflict, gin.H{"error": "superseded by a newer search"})
	default:
		var ue *kakao.UpstreamError
		if errors.As(err, &ue) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "place search upstream failed"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// Nearest handles GET /api/places/nearest requests. When no place is within
// range the clicked point's address is returned instead.
func (h *PlaceHandler) Nearest(c *gin.Context) {
	pt, err := parseCoords(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.NearestPlace(c.Request.Context(), pt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if result.Place != nil {
		c.JSON(http.StatusOK, gin.H{"place": result.Place})
		return
	}

	address := ""
	if h.lookup != nil {
		if raw, err := h.lookup.Coord2Address(c.Request.Context(), pt.Lat, pt.Lng); err == nil {
			address = kakao.AddressName(raw)
		}
	}
	c.JSON(http.StatusOK, gin.H{"place": nil, "address": address})
}

// parseCoords reads the lat and lng query parameters, requiring both.
func parseCoords(c *gin.Context) (models.GeoPoint, error) {
	latStr, lngStr := c.Query("lat"), c.Query("lng")
	if latStr == "" || lngStr == "" {
		return models.GeoPoint{}, errors.New("missing required query parameters 'lat' and 'lng'")
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return models.GeoPoint{}, errors.New("lat must be a number")
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return models.GeoPoint{}, errors.New("lng must be a number")
	}
	if err := geo.ValidateCoords(lat, lng); err != nil {
		return models.GeoPoint{}, err
	}
	return models.GeoPoint{Lat: lat, Lng: lng}, nil
}
