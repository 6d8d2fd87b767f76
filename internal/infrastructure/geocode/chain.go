// Package geocode resolves place names through a fixed chain: the static
// city table, then a shared cache, then each live vendor in turn.
package geocode

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tripwise/travel-guide/internal/core/domain"
	"github.com/tripwise/travel-guide/internal/core/ports"
)

// Cache stores resolved locations. Get returns nil, nil on a miss.
type Cache interface {
	Get(ctx context.Context, name string) (*domain.Location, error)
	Set(ctx context.Context, name string, loc *domain.Location) error
}

// Chain implements ports.Geocoder.
type Chain struct {
	static ports.Geocoder
	cache  Cache
	live   []ports.Geocoder
	log    zerolog.Logger
}

// NewChain builds the chain. cache may be nil; live geocoders are tried in
// the given order.
func NewChain(cache Cache, log zerolog.Logger, live ...ports.Geocoder) *Chain {
	return &Chain{
		static: Static{},
		cache:  cache,
		live:   live,
		log:    log.With().Str("component", "geocoder").Logger(),
	}
}

// Lookup returns domain.ErrLocationNotFound only when every source reported
// the name as unknown. A vendor failure on the last attempted source is
// returned as is.
func (c *Chain) Lookup(ctx context.Context, name string) (*domain.Location, error) {
	if loc, err := c.static.Lookup(ctx, name); err == nil {
		return loc, nil
	}

	if c.cache != nil {
		loc, err := c.cache.Get(ctx, name)
		if err != nil {
			c.log.Warn().Err(err).Str("name", name).Msg("geocode cache read failed")
		} else if loc != nil {
			return loc, nil
		}
	}

	var lastErr error
	for _, g := range c.live {
		loc, err := g.Lookup(ctx, name)
		if err == nil {
			c.remember(ctx, name, loc)
			return loc, nil
		}
		if !errors.Is(err, domain.ErrLocationNotFound) {
			lastErr = err
			c.log.Warn().Err(err).Str("name", name).Msg("live geocoder failed")
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("geocode %q: %w", name, lastErr)
	}
	return nil, fmt.Errorf("geocode %q: %w", name, domain.ErrLocationNotFound)
}

func (c *Chain) remember(ctx context.Context, name string, loc *domain.Location) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(ctx, name, loc); err != nil {
		c.log.Warn().Err(err).Str("name", name).Msg("geocode cache write failed")
	}
}
