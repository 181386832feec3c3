package models

import "time"

// GeoPoint is a latitude/longitude pair in degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Place is a point of interest returned by the place search provider.
// Instances are ephemeral: they live only for the duration of a search session.
type Place struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Address      string  `json:"address"`
	RoadAddress  string  `json:"road_address,omitempty"`
	Phone        string  `json:"phone,omitempty"`
	URL          string  `json:"url"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	CategoryName string  `json:"category_name,omitempty"`
	// Distance is the great-circle distance in metres from the search anchor,
	// set when results are ranked by proximity.
	Distance float64 `json:"distance,omitempty"`
}

// BiasAnchor selects the reference point a search is centered on.
type BiasAnchor string

const (
	BiasMe        BiasAnchor = "me"
	BiasMapCenter BiasAnchor = "mapCenter"
)

// SortOrder selects the provider-side ranking of search results.
type SortOrder string

const (
	SortAccuracy SortOrder = "accuracy"
	SortDistance SortOrder = "distance"
)

// SearchQuery is the transient state of one place search invocation.
type SearchQuery struct {
	Text     string     `json:"text"`
	Bias     BiasAnchor `json:"bias"`
	RadiusKm int        `json:"radius_km"`
	Sort     SortOrder  `json:"sort"`
	Page     int        `json:"page"`
}

// Pagination describes the current position within a paginated result set.
type Pagination struct {
	Current int `json:"current"`
	Last    int `json:"last"`
}

// LocationSource records where a resolved user location came from.
type LocationSource string

const (
	SourceGeo      LocationSource = "geo"
	SourceFallback LocationSource = "fallback"
)

// ResolvedLocation is a user location that is always usable: when the real
// position cannot be obtained the fixed fallback coordinate is substituted
// and the Source field says so.
type ResolvedLocation struct {
	Point  GeoPoint       `json:"point"`
	Source LocationSource `json:"source"`
}

// MapType selects the base layer of the map view.
type MapType string

const (
	MapTypeRoad   MapType = "road"
	MapTypeHybrid MapType = "hybrid"
)

// MapViewState is the mutable viewport of one map session.
type MapViewState struct {
	Center  GeoPoint `json:"center"`
	Level   int      `json:"level"`
	MapType MapType  `json:"map_type"`
}

// ContactSubmission is a stored contact-form row. Subject is nullable.
// Rows live in memory only and are lost on process restart.
type ContactSubmission struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   *string   `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// RepoSummary is one repository row from the upstream listing API, cached
// in memory and replaced wholesale on each fetch.
type RepoSummary struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Language    *string `json:"language"`
	Stars       *int    `json:"stars"`
	Forks       *int    `json:"forks"`
	UpdatedAt   *string `json:"updated_at"`
	HTMLURL     string  `json:"html_url"`
}
