package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestRateLimiter_RejectsOverBurst(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter(0.001, 2, KeyByUserOrIP())
	handler := rl.Middleware()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	call := func(user string) (*httptest.ResponseRecorder, error) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if user != "" {
			c.Set("username", user)
		}
		return rec, handler(c)
	}

	for i := 0; i < 2; i++ {
		if _, err := call("alice"); err != nil {
			t.Fatalf("request %d: unexpected error %v", i, err)
		}
	}

	rec, err := call("alice")
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %v", err)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}

	// Another user on the same IP has its own bucket.
	if _, err := call("bob"); err != nil {
		t.Fatalf("bob should not be limited: %v", err)
	}
	if _, err := call(""); err != nil {
		t.Fatalf("anonymous caller should not be limited: %v", err)
	}
}

func TestKeyByUserOrIP(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.9:80"
	c := e.NewContext(req, httptest.NewRecorder())

	key := KeyByUserOrIP()
	if got := key(c); got != "ip:10.0.0.9" {
		t.Fatalf("expected ip key, got %q", got)
	}
	c.Set("username", "alice")
	if got := key(c); got != "user:alice" {
		t.Fatalf("expected user key, got %q", got)
	}
}
