// Package kakao is a thin client for the Kakao Local REST API: keyword and
// category place search plus coordinate-to-address reverse geocoding.
package kakao

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"portfolio-api/internal/models"
)

const defaultBaseURL = "https://dapi.kakao.com"

// pageSize is the number of documents requested per search page.
const pageSize = 15

// maxResults is the provider-side cap on retrievable documents per query.
const maxResults = 45

// UpstreamError carries a non-success upstream response so handlers can
// relay the status and body verbatim.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("kakao: upstream status %d: %s", e.Status, e.Body)
}

// SearchOptions bias and shape a place search.
type SearchOptions struct {
	At      *models.GeoPoint // bias anchor; nil means no location bias
	RadiusM int              // metres, 0 means provider default
	Sort    models.SortOrder // accuracy (provider default) or distance
	Page    int              // 1-based, 0 means first page
}

// SearchResult is one page of places plus its pagination descriptor.
type SearchResult struct {
	Places     []models.Place    `json:"places"`
	Pagination models.Pagination `json:"pagination"`
}

// Client talks to the Kakao Local API.
type Client struct {
	key     string
	baseURL string
	http    *http.Client
}

// NewClient creates a client with the given REST API key.
func NewClient(key string) *Client {
	return &Client{
		key:     key,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// document is one place row in a Local API search response. Coordinates come
// back as strings: x is longitude, y is latitude.
type document struct {
	ID              string `json:"id"`
	PlaceName       string `json:"place_name"`
	AddressName     string `json:"address_name"`
	RoadAddressName string `json:"road_address_name"`
	Phone           string `json:"phone"`
	PlaceURL        string `json:"place_url"`
	CategoryName    string `json:"category_name"`
	X               string `json:"x"`
	Y               string `json:"y"`
}

type searchResponse struct {
	Documents []document `json:"documents"`
	Meta      struct {
		TotalCount    int  `json:"total_count"`
		PageableCount int  `json:"pageable_count"`
		IsEnd         bool `json:"is_end"`
	} `json:"meta"`
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "KakaoAK "+c.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("kakao: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}
	return json.Unmarshal(body, out)
}

func (o SearchOptions) values() url.Values {
	q := url.Values{}
	q.Set("size", strconv.Itoa(pageSize))
	if o.At != nil {
		q.Set("x", strconv.FormatFloat(o.At.Lng, 'f', -1, 64))
		q.Set("y", strconv.FormatFloat(o.At.Lat, 'f', -1, 64))
	}
	if o.RadiusM > 0 {
		q.Set("radius", strconv.Itoa(o.RadiusM))
	}
	if o.Sort == models.SortDistance {
		q.Set("sort", "distance")
	}
	if o.Page > 1 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	return q
}

func toPlaces(docs []document) []models.Place {
	places := make([]models.Place, 0, len(docs))
	for _, d := range docs {
		lat, err := strconv.ParseFloat(d.Y, 64)
		if err != nil {
			continue
		}
		lng, err := strconv.ParseFloat(d.X, 64)
		if err != nil {
			continue
		}
		places = append(places, models.Place{
			ID:           d.ID,
			Name:         d.PlaceName,
			Address:      d.AddressName,
			RoadAddress:  d.RoadAddressName,
			Phone:        d.Phone,
			URL:          d.PlaceURL,
			Lat:          lat,
			Lng:          lng,
			CategoryName: d.CategoryName,
		})
	}
	return places
}

// KeywordSearch runs a free-text place search. The provider defines the
// behavior for empty query text; it is sent as-is.
func (c *Client) KeywordSearch(ctx context.Context, query string, opts SearchOptions) (*SearchResult, error) {
	q := opts.values()
	q.Set("query", query)

	var resp searchResponse
	if err := c.get(ctx, "/v2/local/search/keyword.json", q, &resp); err != nil {
		return nil, err
	}

	pageable := resp.Meta.PageableCount
	if pageable > maxResults {
		pageable = maxResults
	}
	last := (pageable + pageSize - 1) / pageSize
	if last < 1 {
		last = 1
	}
	current := opts.Page
	if current < 1 {
		current = 1
	}

	return &SearchResult{
		Places:     toPlaces(resp.Documents),
		Pagination: models.Pagination{Current: current, Last: last},
	}, nil
}

// CategorySearch returns places of one category group around the anchor.
func (c *Client) CategorySearch(ctx context.Context, code string, opts SearchOptions) ([]models.Place, error) {
	q := opts.values()
	q.Set("category_group_code", code)

	var resp searchResponse
	if err := c.get(ctx, "/v2/local/search/category.json", q, &resp); err != nil {
		return nil, err
	}
	return toPlaces(resp.Documents), nil
}

// Coord2Address reverse-geocodes a coordinate and returns the upstream JSON
// verbatim, so callers can relay it untouched.
func (c *Client) Coord2Address(ctx context.Context, lat, lng float64) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("x", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("y", strconv.FormatFloat(lat, 'f', -1, 64))

	u := c.baseURL + "/v2/local/geo/coord2address.json?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "KakaoAK "+c.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kakao: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}
	return json.RawMessage(body), nil
}

// AddressName extracts the display address from a coord2address payload,
// preferring the road address over the lot-number one.
func AddressName(raw json.RawMessage) string {
	var resp struct {
		Documents []struct {
			RoadAddress *struct {
				AddressName string `json:"address_name"`
			} `json:"road_address"`
			Address *struct {
				AddressName string `json:"address_name"`
			} `json:"address"`
		} `json:"documents"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil || len(resp.Documents) == 0 {
		return ""
	}
	d := resp.Documents[0]
	if d.RoadAddress != nil && d.RoadAddress.AddressName != "" {
		return d.RoadAddress.AddressName
	}
	if d.Address != nil {
		return d.Address.AddressName
	}
	return ""
}
