package restclient

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripwise/travel-guide/internal/api/metrics"
)

const (
	defaultRefreshMargin = 300 * time.Second
	defaultTokenTTL      = 7200 * time.Second
)

// TokenExchange trades application credentials for a bearer token. A zero
// ttl means the vendor did not report one.
type TokenExchange func(ctx context.Context) (token string, ttl time.Duration, err error)

// TokenCache owns the bearer token of a single vendor tenant. A cached token
// is reused while now < expiry - margin and refreshed synchronously
// otherwise.
type TokenCache struct {
	vendor   string
	exchange TokenExchange
	margin   time.Duration
	now      func() time.Time
	log      zerolog.Logger

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// TokenOption customises a TokenCache.
type TokenOption func(*TokenCache)

// WithClock replaces time.Now. Intended for tests.
func WithClock(now func() time.Time) TokenOption {
	return func(c *TokenCache) { c.now = now }
}

// WithRefreshMargin overrides the 300s safety margin.
func WithRefreshMargin(d time.Duration) TokenOption {
	return func(c *TokenCache) { c.margin = d }
}

func NewTokenCache(vendor string, exchange TokenExchange, log zerolog.Logger, opts ...TokenOption) *TokenCache {
	c := &TokenCache{
		vendor:   vendor,
		exchange: exchange,
		margin:   defaultRefreshMargin,
		now:      time.Now,
		log:      log.With().Str("component", "token_cache").Str("vendor", vendor).Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns a usable bearer token. The boolean is false when the
// exchange failed; the failure is logged, never returned.
func (c *TokenCache) Token(ctx context.Context, forceRefresh bool) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if !forceRefresh && c.token != "" && now.Before(c.expiry.Add(-c.margin)) {
		return c.token, true
	}

	token, ttl, err := c.exchange(ctx)
	if err != nil || token == "" {
		metrics.TokenRefreshTotal.WithLabelValues(c.vendor, "failed").Inc()
		c.log.Error().Err(err).Msg("token exchange failed")
		return "", false
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}

	c.token = token
	c.expiry = now.Add(ttl)
	metrics.TokenRefreshTotal.WithLabelValues(c.vendor, "ok").Inc()
	c.log.Info().Time("expires_at", c.expiry).Msg("access token refreshed")
	return c.token, true
}

// Invalidate drops the cached token so the next call re-exchanges.
func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	c.token = ""
	c.expiry = time.Time{}
	c.mu.Unlock()
}
