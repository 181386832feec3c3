package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"portfolio-api/internal/mapsession"
	"portfolio-api/internal/models"
	"portfolio-api/internal/service"
)

func newMapHandler(t *testing.T, finder mapsession.PlaceFinder) *SessionHandler {
	t.Helper()
	themes := mapsession.NewThemeStore(mapsession.ThemeLight)
	s := mapsession.NewSession(mapsession.Config{
		Center: models.GeoPoint{Lat: 37.5665, Lng: 126.978},
		Level:  3,
		Finder: finder,
		Themes: themes,
		Log:    zerolog.Nop(),
	})
	s.Ready()
	return NewSessionHandler(s, themes)
}

func TestSessionHandler_Click(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("missing coordinates", func(t *testing.T) {
		h := newMapHandler(t, nil)
		w := doPost(t, h.Click, "/api/map/click?lat=37.5", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("map not ready", func(t *testing.T) {
		themes := mapsession.NewThemeStore(mapsession.ThemeLight)
		s := mapsession.NewSession(mapsession.Config{
			Center: models.GeoPoint{Lat: 37.5665, Lng: 126.978},
			Level:  3,
			Log:    zerolog.Nop(),
		})
		h := NewSessionHandler(s, themes)

		w := doPost(t, h.Click, "/api/map/click?lat=37.5665&lng=126.978", "")
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("click opens a place overlay and focuses it", func(t *testing.T) {
		pt := models.GeoPoint{Lat: 37.5665, Lng: 126.978}
		near := &models.Place{ID: "near", Name: "Shop", Lat: 37.5667, Lng: 126.9782}
		mockSvc := new(MockPlaceService)
		mockSvc.On("NearestPlace", mock.Anything, pt).
			Return(&service.NearestResult{Place: near}, nil)
		h := newMapHandler(t, mockSvc)

		w := doPost(t, h.Click, "/api/map/click?lat=37.5665&lng=126.978", "")
		assert.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Overlay *mapsession.Overlay `json:"overlay"`
			View    models.MapViewState `json:"view"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.NotNil(t, body.Overlay)
		assert.Equal(t, mapsession.OverlayPlace, body.Overlay.Kind)
		assert.Equal(t, "near", body.Overlay.Place.ID)
		assert.Equal(t, near.Lat, body.View.Center.Lat)
		mockSvc.AssertExpectations(t)
	})
}

func TestSessionHandler_MarkersAndClusters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newMapHandler(t, nil)

	t.Run("malformed marker body", func(t *testing.T) {
		w := doPost(t, h.SetMarkers, "/api/map/markers", `{"not":"an array"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("markers reframe the viewport and cluster per level", func(t *testing.T) {
		w := doPost(t, h.SetMarkers, "/api/map/markers",
			`[{"id":"a","lat":37.50,"lng":126.90},{"id":"b","lat":37.60,"lng":127.00}]`)
		assert.Equal(t, http.StatusOK, w.Code)

		var set struct {
			Count int                 `json:"count"`
			View  models.MapViewState `json:"view"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &set))
		assert.Equal(t, 2, set.Count)
		assert.InDelta(t, 37.55, set.View.Center.Lat, 1e-9)

		cw := doGet(t, h.Clusters, "/api/map/clusters")
		assert.Equal(t, http.StatusOK, cw.Code)

		var got struct {
			Clusters []mapsession.Cluster `json:"clusters"`
		}
		require.NoError(t, json.Unmarshal(cw.Body.Bytes(), &got))
		require.Len(t, got.Clusters, 2, "level 3 is below the clustering threshold")
		assert.Equal(t, 1, got.Clusters[0].Count)
	})
}

func TestSessionHandler_Select(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newMapHandler(t, nil)

	w := doPost(t, h.Select, "/api/map/select",
		`{"id":"p","name":"Cafe","lat":37.57,"lng":126.98}`)
	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Overlay *mapsession.Overlay `json:"overlay"`
		View    models.MapViewState `json:"view"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Overlay)
	assert.Equal(t, "p", body.Overlay.Place.ID)
	assert.Equal(t, 3, body.View.Level)
	assert.Equal(t, models.GeoPoint{Lat: 37.57, Lng: 126.98}, body.View.Center)
}

func TestSessionHandler_Zoom(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newMapHandler(t, nil)

	w := doPost(t, h.Zoom, "/api/map/zoom?dir=out", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"level":4}`, w.Body.String())

	w = doPost(t, h.Zoom, "/api/map/zoom?dir=in", "")
	assert.JSONEq(t, `{"level":3}`, w.Body.String())

	w = doPost(t, h.Zoom, "/api/map/zoom?dir=sideways", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandler_SetMapType(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newMapHandler(t, nil)

	w := doPost(t, h.SetMapType, "/api/map/type?value=hybrid", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		View models.MapViewState `json:"view"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, models.MapTypeHybrid, body.View.MapType)

	w = doPost(t, h.SetMapType, "/api/map/type?value=satellite", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandler_SetTheme(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newMapHandler(t, nil)

	w := doPost(t, h.SetTheme, "/api/map/theme?value=dark", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Palette mapsession.Palette `json:"palette"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "rgba(15,23,42,0.96)", body.Palette.Background)

	w = doPost(t, h.SetTheme, "/api/map/theme?value=sepia", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandler_Gesture(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newMapHandler(t, nil)

	w := doPost(t, h.SetMarkers, "/api/map/markers", `[{"id":"a","lat":37.5,"lng":126.9}]`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doPost(t, h.Gesture, "/api/map/gesture?phase=begin", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"panel_visible":false}`, w.Body.String())

	w = doPost(t, h.Gesture, "/api/map/gesture?phase=end", "")
	assert.JSONEq(t, `{"panel_visible":true}`, w.Body.String())

	w = doPost(t, h.Gesture, "/api/map/gesture?phase=hover", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
