package deepseek

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripwise/travel-guide/internal/core/ports"
	"github.com/tripwise/travel-guide/internal/infrastructure/restclient"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		APIKey:  "sk-test",
		BaseURL: srv.URL,
		Retry:   restclient.RetryPolicy{Attempts: 3, Delay: time.Millisecond},
	}, zerolog.Nop())
}

func TestComplete_AppliesDefaultsAndParsesUsage(t *testing.T) {
	var got chatRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("missing bearer key")
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"model":"deepseek-chat","choices":[{"message":{"role":"assistant","content":"## 行程"}}],
			"usage":{"prompt_tokens":10,"completion_tokens":20,"total_tokens":30}}`))
	})

	out, err := c.Complete(context.Background(), ports.CompletionRequest{
		Messages: []ports.ChatMessage{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Content != "## 行程" || out.Usage.TotalTokens != 30 {
		t.Fatalf("unexpected completion %+v", out)
	}
	if got.Model != DefaultModel || got.Temperature != 0.7 || got.MaxTokens != 4000 || got.Stream {
		t.Fatalf("defaults not applied: %+v", got)
	}
}

func TestComplete_MapsUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	_, err := c.Complete(context.Background(), ports.CompletionRequest{})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestComplete_MapsRateLimit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	_, err := c.Complete(context.Background(), ports.CompletionRequest{})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestComplete_EmptyChoicesIsVendorError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})
	_, err := c.Complete(context.Background(), ports.CompletionRequest{})
	var ve *restclient.VendorError
	if !errors.As(err, &ve) {
		t.Fatalf("expected VendorError, got %v", err)
	}
}
