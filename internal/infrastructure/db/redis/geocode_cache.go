package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tripwise/travel-guide/internal/core/domain"
)

const geocodeTTL = 7 * 24 * time.Hour

// GeocodeCache remembers resolved place names so repeated trips to the same
// city skip the vendor lookup.
// Key format: geocode:<normalised_name>
type GeocodeCache struct {
	client *redis.Client
}

func NewGeocodeCache(client *redis.Client) *GeocodeCache {
	return &GeocodeCache{client: client}
}

// Get returns nil, nil on a cache miss.
func (g *GeocodeCache) Get(ctx context.Context, name string) (*domain.Location, error) {
	data, err := g.client.Get(ctx, geocodeKey(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("geocode cache get: %w", err)
	}
	var loc domain.Location
	if err := json.Unmarshal(data, &loc); err != nil {
		return nil, fmt.Errorf("geocode cache decode: %w", err)
	}
	return &loc, nil
}

func (g *GeocodeCache) Set(ctx context.Context, name string, loc *domain.Location) error {
	data, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("geocode cache encode: %w", err)
	}
	return g.client.Set(ctx, geocodeKey(name), data, geocodeTTL).Err()
}

func geocodeKey(name string) string {
	return "geocode:" + strings.ToLower(strings.TrimSpace(name))
}
