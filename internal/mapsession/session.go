// Package mapsession owns the state of one map instance: viewport, primary
// and result markers, the single live overlay, gesture suppression, and the
// click-to-nearest-place sequence.
package mapsession

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"portfolio-api/internal/kakao"
	"portfolio-api/internal/models"
	"portfolio-api/internal/service"
)

// Phase is the session lifecycle: a session handles nothing until the
// provider signals readiness.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseReady
)

// State is the interaction state. OverlayOpen is not a State: an overlay
// can coexist with Idle or Searching and is tracked separately.
type State int

const (
	StateIdle State = iota
	StateSearching
	StateZoomingOrPanning
)

// OverlayKind distinguishes a place card from the lightweight address card.
type OverlayKind string

const (
	OverlayPlace   OverlayKind = "place"
	OverlayAddress OverlayKind = "address"
)

// Overlay is the transient map-anchored detail card. At most one exists.
type Overlay struct {
	Kind    OverlayKind     `json:"kind"`
	Anchor  models.GeoPoint `json:"anchor"`
	Place   *models.Place   `json:"place,omitempty"`
	Address string          `json:"address,omitempty"`
	Palette Palette         `json:"palette"`
}

// detailLevel is the zoom level applied when focusing a selected place.
const detailLevel = 3

// minZoomLevel clamps zoom-in; there is no explicit maximum.
const minZoomLevel = 1

// ErrNotReady means the provider has not signalled readiness yet.
var ErrNotReady = errors.New("mapsession: map is not ready")

// PlaceFinder runs the nearest-place lookup around a clicked point.
type PlaceFinder interface {
	NearestPlace(ctx context.Context, pt models.GeoPoint) (*service.NearestResult, error)
}

// Geocoder reverse-geocodes a coordinate to the raw provider payload.
type Geocoder interface {
	Coord2Address(ctx context.Context, lat, lng float64) (json.RawMessage, error)
}

// Config seeds a new session.
type Config struct {
	Center    models.GeoPoint
	Level     int
	MapType   models.MapType
	Finder    PlaceFinder
	Geocoder  Geocoder
	Themes    *ThemeStore
	OnAddress func(address string) // optional; notified after clicks resolve
	Log       zerolog.Logger
}

// Session is the map interaction controller for one map instance.
type Session struct {
	log      zerolog.Logger
	finder   PlaceFinder
	geocoder Geocoder
	themes   *ThemeStore

	onAddress func(string)

	mu       sync.Mutex // guards the fields below
	phase    Phase
	state    State
	view     models.MapViewState
	marker   models.GeoPoint
	userPos  *models.GeoPoint
	overlay  *Overlay
	markers  *MarkerLayer
	navDepth int
	// clicks numbers overlay-opening interactions; a click whose number is
	// no longer current must not install its overlay.
	clicks uint64
}

// NewSession creates a session in the Loading phase. The theme store is
// subscribed so an open overlay is re-painted when the theme flips.
func NewSession(cfg Config) *Session {
	if cfg.Level < minZoomLevel {
		cfg.Level = detailLevel
	}
	if cfg.MapType == "" {
		cfg.MapType = models.MapTypeRoad
	}
	if cfg.Themes == nil {
		cfg.Themes = NewThemeStore(ThemeLight)
	}

	s := &Session{
		log:       cfg.Log,
		finder:    cfg.Finder,
		geocoder:  cfg.Geocoder,
		themes:    cfg.Themes,
		onAddress: cfg.OnAddress,
		phase:     PhaseLoading,
		view: models.MapViewState{
			Center:  cfg.Center,
			Level:   cfg.Level,
			MapType: cfg.MapType,
		},
		marker:  cfg.Center,
		markers: NewMarkerLayer(),
	}

	cfg.Themes.Subscribe(func(t Theme) {
		s.mu.Lock()
		if s.overlay != nil {
			s.overlay.Palette = palettes[t]
		}
		s.mu.Unlock()
	})
	return s
}

// Ready moves the session out of Loading once the provider is initialised.
func (s *Session) Ready() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseLoading {
		s.phase = PhaseReady
		s.state = StateIdle
	}
}

// View returns the current viewport.
func (s *Session) View() models.MapViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// State returns the current interaction state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ZoomIn steps one level closer, clamped to the minimum level.
func (s *Session) ZoomIn() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view.Level > minZoomLevel {
		s.view.Level--
	}
	return s.view.Level
}

// ZoomOut steps one level further out. No maximum is enforced.
func (s *Session) ZoomOut() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Level++
	return s.view.Level
}

// SetMapType toggles between the road and hybrid base layers.
func (s *Session) SetMapType(t models.MapType) error {
	if t != models.MapTypeRoad && t != models.MapTypeHybrid {
		return errors.New("mapsession: unknown map type")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.MapType = t
	return nil
}

// Pan recenters the viewport.
func (s *Session) Pan(pt models.GeoPoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Center = pt
}

// SetUserMarker records the user's resolved position marker.
func (s *Session) SetUserMarker(pt models.GeoPoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := pt
	s.userPos = &cp
	s.view.Center = pt
}

// UserMarker returns the user position marker, if set.
func (s *Session) UserMarker() *models.GeoPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userPos == nil {
		return nil
	}
	cp := *s.userPos
	return &cp
}

// BeginGesture enters ZoomingOrPanning: the result panel is suppressed and
// any open overlay is torn down for the duration of the gesture.
func (s *Session) BeginGesture() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseReady {
		return
	}
	s.state = StateZoomingOrPanning
	s.overlay = nil
}

// EndGesture reverts to Searching when result markers exist, else Idle.
func (s *Session) EndGesture() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateZoomingOrPanning {
		return
	}
	if len(s.markers.Markers()) > 0 {
		s.state = StateSearching
	} else {
		s.state = StateIdle
	}
}

// PanelVisible reports whether the result panel may repaint: it is hidden
// while a pan/zoom gesture is active and when there are no results.
func (s *Session) PanelVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state != StateZoomingOrPanning && len(s.markers.Markers()) > 0
}

// SetResultMarkers replaces the result marker batch wholesale, tears down
// any overlay, reframes the viewport to the batch bounds, and enters
// Searching.
func (s *Session) SetResultMarkers(places []models.Place) {
	s.markers.Set(places)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlay = nil
	if sw, ne, ok := s.markers.Bounds(); ok {
		s.view.Center = models.GeoPoint{
			Lat: (sw.Lat + ne.Lat) / 2,
			Lng: (sw.Lng + ne.Lng) / 2,
		}
		s.state = StateSearching
	} else {
		s.state = StateIdle
	}
}

// Clusters returns the marker clusters for the current zoom level.
func (s *Session) Clusters() []Cluster {
	s.mu.Lock()
	level := s.view.Level
	s.mu.Unlock()
	return s.markers.Clusters(level)
}

// NearestMarker finds the closest result marker within radiusM metres.
func (s *Session) NearestMarker(pt models.GeoPoint, radiusM float64) *models.Place {
	return s.markers.Nearest(pt, radiusM)
}

// Overlay returns the live overlay, or nil.
func (s *Session) Overlay() *Overlay {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.overlay == nil {
		return nil
	}
	cp := *s.overlay
	return &cp
}

// CloseOverlay tears down the live overlay.
func (s *Session) CloseOverlay() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlay = nil
}

// NavDepth counts the lightweight history entries pushed by selections, so
// a back gesture can be told apart from a quiet state change.
func (s *Session) NavDepth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.navDepth
}

// PopNav consumes one history entry; it reports whether one existed.
func (s *Session) PopNav() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.navDepth == 0 {
		return false
	}
	s.navDepth--
	return true
}

// openOverlayAt installs a new overlay, tearing down the previous one
// first — unless a newer interaction superseded seq, in which case the
// stale overlay is discarded and nil returned.
func (s *Session) openOverlayAt(seq uint64, o Overlay) *Overlay {
	o.Palette = s.themes.Palette()
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.clicks {
		return nil
	}
	s.overlay = &o
	cp := o
	return &cp
}

// focusPlace applies detail zoom, pan and history for a chosen place, then
// opens its overlay. Stale interactions are dropped whole.
func (s *Session) focusPlace(seq uint64, place models.Place) *Overlay {
	pt := models.GeoPoint{Lat: place.Lat, Lng: place.Lng}

	s.mu.Lock()
	if seq != s.clicks {
		s.mu.Unlock()
		return nil
	}
	s.view.Level = detailLevel
	s.view.Center = pt
	s.navDepth++
	s.mu.Unlock()

	p := place
	return s.openOverlayAt(seq, Overlay{Kind: OverlayPlace, Anchor: pt, Place: &p})
}

// SelectResult focuses a chosen search result: detail zoom, pan, place
// overlay, and a history marker. It supersedes any in-flight click.
func (s *Session) SelectResult(place models.Place) *Overlay {
	s.mu.Lock()
	s.clicks++
	seq := s.clicks
	s.mu.Unlock()
	return s.focusPlace(seq, place)
}

// HandleClick runs the click sequence: move the primary marker and pan,
// reverse-geocode the point once (the address feeds the callback and, when
// no place is nearby, the fallback overlay; failures are swallowed), then
// look up the nearest place across all categories.
// A second click racing the first supersedes it: only the latest click may
// install an overlay, so two rapid clicks leave exactly one overlay,
// anchored at the later point. A superseded click returns a nil overlay.
func (s *Session) HandleClick(ctx context.Context, pt models.GeoPoint) (*Overlay, error) {
	s.mu.Lock()
	if s.phase != PhaseReady {
		s.mu.Unlock()
		return nil, ErrNotReady
	}
	s.marker = pt
	s.view.Center = pt
	s.overlay = nil
	s.clicks++
	seq := s.clicks
	s.mu.Unlock()

	address := ""
	if s.geocoder != nil {
		if raw, err := s.geocoder.Coord2Address(ctx, pt.Lat, pt.Lng); err == nil {
			address = kakao.AddressName(raw)
		} else {
			s.log.Debug().Err(err).Msg("click geocode failed")
		}
	}
	if s.onAddress != nil && address != "" {
		s.onAddress(address)
	}

	if s.finder != nil {
		res, err := s.finder.NearestPlace(ctx, pt)
		if err != nil {
			return nil, err
		}
		if res.Place != nil {
			return s.focusPlace(seq, *res.Place), nil
		}
	}

	return s.openOverlayAt(seq, Overlay{Kind: OverlayAddress, Anchor: pt, Address: address}), nil
}

// PrimaryMarker returns the primary marker position.
func (s *Session) PrimaryMarker() models.GeoPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.marker
}
