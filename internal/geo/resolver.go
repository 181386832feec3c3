package geo

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"portfolio-api/internal/models"
)

// Position lookup failures. A PositionProvider must return one of these
// (possibly wrapped) so callers can tell denial from absence.
var (
	ErrPermissionDenied    = errors.New("geo: permission denied")
	ErrPositionUnavailable = errors.New("geo: position unavailable")
	ErrTimeout             = errors.New("geo: position lookup timed out")
	ErrUnsupported         = errors.New("geo: no position source available")
)

// PositionProvider supplies the user's current position.
type PositionProvider interface {
	CurrentPosition(ctx context.Context) (models.GeoPoint, error)
}

// Resolver turns a fallible position lookup into one that always answers.
// The rest of the system must never block on location permission, so every
// failure is absorbed and the fixed fallback coordinate substituted.
type Resolver struct {
	provider   PositionProvider
	fallback   models.GeoPoint
	requireGeo bool
	log        zerolog.Logger
}

// NewResolver creates a resolver. When requireGeo is false the provider is
// never consulted and the fallback is returned directly.
func NewResolver(provider PositionProvider, fallback models.GeoPoint, requireGeo bool, log zerolog.Logger) *Resolver {
	return &Resolver{provider: provider, fallback: fallback, requireGeo: requireGeo, log: log}
}

// ResolveUserLocation never fails: provider errors are logged and replaced
// by the fallback coordinate, tagged with their provenance.
func (r *Resolver) ResolveUserLocation(ctx context.Context) models.ResolvedLocation {
	if !r.requireGeo || r.provider == nil {
		return models.ResolvedLocation{Point: r.fallback, Source: models.SourceFallback}
	}

	pt, err := r.provider.CurrentPosition(ctx)
	if err != nil {
		r.log.Debug().Err(err).Msg("position lookup failed, using fallback")
		return models.ResolvedLocation{Point: r.fallback, Source: models.SourceFallback}
	}
	if err := ValidateCoords(pt.Lat, pt.Lng); err != nil {
		r.log.Debug().Err(err).Msg("position out of range, using fallback")
		return models.ResolvedLocation{Point: r.fallback, Source: models.SourceFallback}
	}
	return models.ResolvedLocation{Point: pt, Source: models.SourceGeo}
}
