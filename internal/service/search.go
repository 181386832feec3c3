package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"portfolio-api/internal/geo"
	"portfolio-api/internal/kakao"
	"portfolio-api/internal/models"
	"portfolio-api/internal/repository"
)

// categoryCodes are the provider category groups swept during a
// nearest-place lookup.
var categoryCodes = []string{
	"FD6", "CE7", "HP8", "PM9", "AD5", "MT1", "CS2",
	"BK9", "CT1", "PO3", "AT4", "SW8", "PK6",
}

// nearestRadiusM constrains each category sweep around a clicked point.
const nearestRadiusM = 800

// radiusScale converts the selected radius label to the provider's metre
// parameter. The stored "km" label is sent as double the nominal radius in
// metres; this matches the shipped behavior and is preserved as-is.
const radiusScale = 2000

var allowedRadiusKm = map[int]bool{1: true, 2: true, 3: true, 5: true, 10: true, 15: true, 20: true}

var (
	ErrInvalidRadius = errors.New("service: radius must be one of 1, 2, 3, 5, 10, 15, 20")
	ErrInvalidSort   = errors.New("service: sort must be accuracy or distance")
	ErrInvalidPage   = errors.New("service: page must be at least 1")
	// ErrStaleResult means a newer search was issued while this one was in
	// flight; its result must not overwrite fresher state.
	ErrStaleResult = errors.New("service: stale search result discarded")
)

// PlaceProvider is the slice of the place search provider the service needs.
type PlaceProvider interface {
	KeywordSearch(ctx context.Context, query string, opts kakao.SearchOptions) (*kakao.SearchResult, error)
	CategorySearch(ctx context.Context, code string, opts kakao.SearchOptions) ([]models.Place, error)
}

// SearchResult is a completed place search: one page of places (with
// distances from the anchor filled in), its pagination, and the anchor the
// search was biased by.
type SearchResult struct {
	Places     []models.Place    `json:"places"`
	Pagination models.Pagination `json:"pagination"`
	Anchor     models.GeoPoint   `json:"anchor"`
}

// NearestResult is the outcome of a nearest-place lookup. Place is nil when
// no category produced anything within range; per-category failures are
// collected rather than failing the lookup.
type NearestResult struct {
	Place         *models.Place
	PartialErrors []error
}

// SearchService orchestrates place searches and nearest-place lookups.
type SearchService struct {
	provider PlaceProvider
	recent   *repository.RecentQueries
	resolver *geo.Resolver
	log      zerolog.Logger

	// seq hands out a monotonic number per search; a completion whose
	// number no longer matches the latest issued one is stale.
	seq atomic.Uint64
}

// NewSearchService wires the search orchestration.
func NewSearchService(provider PlaceProvider, recent *repository.RecentQueries, resolver *geo.Resolver, log zerolog.Logger) *SearchService {
	return &SearchService{provider: provider, recent: recent, resolver: resolver, log: log}
}

// RecentQueries returns the current search history, most recent first.
func (s *SearchService) RecentQueries() []string {
	return s.recent.List()
}

// SearchPlaces runs a keyword search biased by the query's anchor choice:
// the resolved user location for "me", otherwise the given map center.
// Zero results is a normal terminal state (empty places, {1,1} pagination).
// A result that lost the race to a newer search returns ErrStaleResult.
func (s *SearchService) SearchPlaces(ctx context.Context, q models.SearchQuery, mapCenter models.GeoPoint) (*SearchResult, error) {
	if !allowedRadiusKm[q.RadiusKm] {
		return nil, ErrInvalidRadius
	}
	if q.Sort != models.SortAccuracy && q.Sort != models.SortDistance {
		return nil, ErrInvalidSort
	}
	page := q.Page
	if page == 0 {
		page = 1
	}
	if page < 1 {
		return nil, ErrInvalidPage
	}

	seq := s.seq.Add(1)

	anchor := mapCenter
	if q.Bias == models.BiasMe {
		anchor = s.resolver.ResolveUserLocation(ctx).Point
	}

	text := strings.TrimSpace(q.Text)
	res, err := s.provider.KeywordSearch(ctx, text, kakao.SearchOptions{
		At:      &anchor,
		RadiusM: q.RadiusKm * radiusScale,
		Sort:    q.Sort,
		Page:    page,
	})
	if err != nil {
		return nil, err
	}

	if s.seq.Load() != seq {
		s.log.Debug().Uint64("seq", seq).Msg("discarding stale search result")
		return nil, ErrStaleResult
	}

	if len(res.Places) == 0 {
		return &SearchResult{
			Places:     []models.Place{},
			Pagination: models.Pagination{Current: 1, Last: 1},
			Anchor:     anchor,
		}, nil
	}

	s.recent.Add(text)

	places := make([]models.Place, len(res.Places))
	copy(places, res.Places)
	for i := range places {
		places[i].Distance = geo.Haversine(anchor, models.GeoPoint{Lat: places[i].Lat, Lng: places[i].Lng})
	}

	return &SearchResult{Places: places, Pagination: res.Pagination, Anchor: anchor}, nil
}

// NearestPlace sweeps all category groups around the point concurrently,
// waits for every sweep to finish, and picks the place closest by true
// great-circle distance. Failed or empty categories contribute nothing.
func (s *SearchService) NearestPlace(ctx context.Context, pt models.GeoPoint) (*NearestResult, error) {
	if err := geo.ValidateCoords(pt.Lat, pt.Lng); err != nil {
		return nil, err
	}

	opts := kakao.SearchOptions{At: &pt, RadiusM: nearestRadiusM, Sort: models.SortDistance}

	var (
		mu      sync.Mutex
		bucket  []models.Place
		partial []error
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, code := range categoryCodes {
		code := code
		g.Go(func() error {
			places, err := s.provider.CategorySearch(gctx, code, opts)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				partial = append(partial, fmt.Errorf("category %s: %w", code, err))
				return nil
			}
			bucket = append(bucket, places...)
			return nil
		})
	}
	// Per-category errors are collected, never returned, so Wait cannot fail.
	_ = g.Wait()

	for _, err := range partial {
		s.log.Debug().Err(err).Msg("nearest-place category sweep failed")
	}

	if len(bucket) == 0 {
		return &NearestResult{PartialErrors: partial}, nil
	}

	best := bucket[0]
	best.Distance = geo.Haversine(pt, models.GeoPoint{Lat: best.Lat, Lng: best.Lng})
	for _, p := range bucket[1:] {
		d := geo.Haversine(pt, models.GeoPoint{Lat: p.Lat, Lng: p.Lng})
		if d < best.Distance {
			best = p
			best.Distance = d
		}
	}

	return &NearestResult{Place: &best, PartialErrors: partial}, nil
}
