package restclient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func newCountingExchange(token string, ttl time.Duration) (TokenExchange, *int) {
	calls := 0
	return func(context.Context) (string, time.Duration, error) {
		calls++
		return token, ttl, nil
	}, &calls
}

func TestTokenCache_ReusesTokenBeforeMargin(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)}
	exchange, calls := newCountingExchange("t-1", 2*time.Hour)
	cache := NewTokenCache("feishu", exchange, zerolog.Nop(), WithClock(clock.Now))

	if tok, ok := cache.Token(context.Background(), false); !ok || tok != "t-1" {
		t.Fatalf("expected t-1, got %q ok=%v", tok, ok)
	}

	// 1s before expiry-300s: still cached.
	clock.now = clock.now.Add(2*time.Hour - 301*time.Second)
	if _, ok := cache.Token(context.Background(), false); !ok {
		t.Fatalf("expected cached token")
	}
	if *calls != 1 {
		t.Fatalf("expected 1 exchange, got %d", *calls)
	}
}

func TestTokenCache_RefreshesAtMargin(t *testing.T) {
	start := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	clock := &fakeClock{now: start}
	exchange, calls := newCountingExchange("t-1", 2*time.Hour)
	cache := NewTokenCache("feishu", exchange, zerolog.Nop(), WithClock(clock.Now))

	cache.Token(context.Background(), false)

	clock.now = start.Add(2*time.Hour - 300*time.Second)
	if _, ok := cache.Token(context.Background(), false); !ok {
		t.Fatalf("expected token")
	}
	if *calls != 2 {
		t.Fatalf("expected refresh at expiry-300s, got %d exchanges", *calls)
	}
}

func TestTokenCache_ForceRefresh(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	exchange, calls := newCountingExchange("t-1", 2*time.Hour)
	cache := NewTokenCache("feishu", exchange, zerolog.Nop(), WithClock(clock.Now))

	cache.Token(context.Background(), false)
	cache.Token(context.Background(), true)

	if *calls != 2 {
		t.Fatalf("expected forced exchange, got %d", *calls)
	}
}

func TestTokenCache_DefaultTTLWhenVendorOmitsIt(t *testing.T) {
	start := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	clock := &fakeClock{now: start}
	exchange, calls := newCountingExchange("t-1", 0)
	cache := NewTokenCache("feishu", exchange, zerolog.Nop(), WithClock(clock.Now))

	cache.Token(context.Background(), false)
	clock.now = start.Add(7200*time.Second - 301*time.Second)
	cache.Token(context.Background(), false)

	if *calls != 1 {
		t.Fatalf("expected 7200s default ttl, got %d exchanges", *calls)
	}
}

func TestTokenCache_ExchangeFailureReturnsNoToken(t *testing.T) {
	cache := NewTokenCache("feishu", func(context.Context) (string, time.Duration, error) {
		return "", 0, errors.New("boom")
	}, zerolog.Nop())

	tok, ok := cache.Token(context.Background(), false)
	if ok || tok != "" {
		t.Fatalf("expected no token, got %q ok=%v", tok, ok)
	}
}

func TestTokenCache_Invalidate(t *testing.T) {
	exchange, calls := newCountingExchange("t-1", 2*time.Hour)
	cache := NewTokenCache("feishu", exchange, zerolog.Nop())

	cache.Token(context.Background(), false)
	cache.Invalidate()
	cache.Token(context.Background(), false)

	if *calls != 2 {
		t.Fatalf("expected exchange after invalidate, got %d", *calls)
	}
}
