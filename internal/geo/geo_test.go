package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"portfolio-api/internal/models"
)

func TestHaversine(t *testing.T) {
	seoulCityHall := models.GeoPoint{Lat: 37.5662952, Lng: 126.9779451}
	gangnam := models.GeoPoint{Lat: 37.497942, Lng: 127.027621}

	t.Run("zero at identical points", func(t *testing.T) {
		assert.Equal(t, 0.0, Haversine(seoulCityHall, seoulCityHall))
	})

	t.Run("symmetric", func(t *testing.T) {
		assert.InDelta(t, Haversine(seoulCityHall, gangnam), Haversine(gangnam, seoulCityHall), 1e-9)
	})

	t.Run("known distance", func(t *testing.T) {
		// City Hall to Gangnam station is roughly 8.7 km.
		d := Haversine(seoulCityHall, gangnam)
		assert.InDelta(t, 8700, d, 300)
	})

	t.Run("short distance", func(t *testing.T) {
		a := models.GeoPoint{Lat: 37.5665, Lng: 126.9780}
		b := models.GeoPoint{Lat: 37.5665, Lng: 126.9790}
		// ~0.001 degrees of longitude at this latitude is ~88 m.
		assert.InDelta(t, 88, Haversine(a, b), 5)
	})
}

func TestFormatDistance(t *testing.T) {
	tests := []struct {
		name   string
		metres float64
		want   string
	}{
		{"metres rounded", 532.4, "532 m"},
		{"just below threshold", 999.4, "999 m"},
		{"kilometres two decimals", 1530, "1.53 km"},
		{"exact kilometre", 1000, "1.00 km"},
		{"zero", 0, "0 m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDistance(tt.metres))
		})
	}
}

func TestValidateCoords(t *testing.T) {
	assert.NoError(t, ValidateCoords(37.5665, 126.978))
	assert.NoError(t, ValidateCoords(-90, 180))
	assert.Error(t, ValidateCoords(90.1, 0))
	assert.Error(t, ValidateCoords(0, -180.5))
}
