package kakao

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"portfolio-api/internal/models"
)

// ErrNoAPIKey means the provider cannot be initialised because no REST API
// key is configured. This is a configuration error, not an upstream failure.
var ErrNoAPIKey = errors.New("kakao: api key is not configured")

// Provider hands out the shared Client, constructing it at most once.
// Initialisation failure is recorded and returned on every later call;
// there is no retry. Callers that want to re-trigger initialisation must
// build a fresh Provider.
type Provider struct {
	key    string
	once   sync.Once
	client *Client
	err    error
}

// NewProvider creates a lazy provider for the given key.
func NewProvider(key string) *Provider {
	return &Provider{key: key}
}

// Ensure returns the shared client, initialising it on first use.
func (p *Provider) Ensure() (*Client, error) {
	p.once.Do(func() {
		if p.key == "" {
			p.err = ErrNoAPIKey
			return
		}
		p.client = NewClient(p.key)
	})
	return p.client, p.err
}

// Configured reports whether a key is present without initialising.
func (p *Provider) Configured() bool {
	return p.key != ""
}

// Coord2Address reverse-geocodes through the lazily initialised client.
// It returns ErrNoAPIKey when no key is configured.
func (p *Provider) Coord2Address(ctx context.Context, lat, lng float64) (json.RawMessage, error) {
	client, err := p.Ensure()
	if err != nil {
		return nil, err
	}
	return client.Coord2Address(ctx, lat, lng)
}

// KeywordSearch searches through the lazily initialised client.
func (p *Provider) KeywordSearch(ctx context.Context, query string, opts SearchOptions) (*SearchResult, error) {
	client, err := p.Ensure()
	if err != nil {
		return nil, err
	}
	return client.KeywordSearch(ctx, query, opts)
}

// CategorySearch searches through the lazily initialised client.
func (p *Provider) CategorySearch(ctx context.Context, code string, opts SearchOptions) ([]models.Place, error) {
	client, err := p.Ensure()
	if err != nil {
		return nil, err
	}
	return client.CategorySearch(ctx, code, opts)
}
