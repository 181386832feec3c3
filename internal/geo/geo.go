package geo

import (
	"fmt"
	"math"

	"portfolio-api/internal/models"
)

// earthRadiusM is the spherical-earth radius used for great-circle distances.
const earthRadiusM = 6371000.0

// Haversine returns the great-circle distance in metres between two points.
func Haversine(a, b models.GeoPoint) float64 {
	φ1 := a.Lat * math.Pi / 180
	φ2 := b.Lat * math.Pi / 180
	Δφ := (b.Lat - a.Lat) * math.Pi / 180
	Δλ := (b.Lng - a.Lng) * math.Pi / 180
	s := math.Sin(Δφ/2)*math.Sin(Δφ/2) + math.Cos(φ1)*math.Cos(φ2)*math.Sin(Δλ/2)*math.Sin(Δλ/2)
	return earthRadiusM * 2 * math.Atan2(math.Sqrt(s), math.Sqrt(1-s))
}

// FormatDistance renders metres below 1000 as whole metres and anything
// larger as kilometres with two decimals.
func FormatDistance(metres float64) string {
	if metres < 1000 {
		return fmt.Sprintf("%d m", int(math.Round(metres)))
	}
	return fmt.Sprintf("%.2f km", metres/1000)
}

// ValidateCoords rejects coordinates outside the valid lat/lng ranges.
func ValidateCoords(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("geo: invalid latitude: %f", lat)
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("geo: invalid longitude: %f", lng)
	}
	return nil
}
