package restclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func codeZero(body []byte) error {
	var env struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return &VendorError{Vendor: "test", Code: "malformed", Msg: err.Error()}
	}
	if env.Code != 0 {
		return &VendorError{Vendor: "test", Code: "1", Msg: env.Msg}
	}
	return nil
}

func fastRetry() RetryPolicy {
	return RetryPolicy{Attempts: 3, Delay: time.Millisecond}
}

func TestClient_RetriesTransportErrorsExactly(t *testing.T) {
	var calls int32
	hc := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return nil, errors.New("connection reset")
	})}

	c := New(Config{Vendor: "test", BaseURL: "http://vendor.invalid", Retry: fastRetry(), HTTPClient: hc}, zerolog.Nop())
	_, err := c.Do(context.Background(), Request{Path: "/x"})

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if te.Attempts != 3 {
		t.Fatalf("expected 3 attempts reported, got %d", te.Attempts)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected 3 calls, got %d", got)
	}
}

func TestClient_SucceedsAfterTransientFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":0,"data":{"ok":true}}`))
	}))
	defer srv.Close()

	var calls int32
	hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if atomic.AddInt32(&calls, 1) < 3 {
			return nil, errors.New("timeout")
		}
		return http.DefaultTransport.RoundTrip(r)
	})}

	c := New(Config{Vendor: "test", BaseURL: srv.URL, Retry: fastRetry(), Success: codeZero, HTTPClient: hc}, zerolog.Nop())
	body, err := c.Do(context.Background(), Request{Path: "/x"})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if string(body) == "" {
		t.Fatalf("expected body")
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected 3 calls, got %d", got)
	}
}

func TestClient_DoesNotRetryVendorError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"code":1254004,"msg":"WrongTableId"}`))
	}))
	defer srv.Close()

	c := New(Config{Vendor: "test", BaseURL: srv.URL, Retry: fastRetry(), Success: codeZero}, zerolog.Nop())
	_, err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/records", Body: map[string]any{"fields": map[string]any{}}})

	var ve *VendorError
	if !errors.As(err, &ve) {
		t.Fatalf("expected VendorError, got %v", err)
	}
	if ve.Msg != "WrongTableId" {
		t.Fatalf("unexpected msg %q", ve.Msg)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected exactly 1 call, got %d", got)
	}
}

func TestClient_DoesNotRetryHTTPStatus(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(Config{Vendor: "test", BaseURL: srv.URL, Retry: fastRetry()}, zerolog.Nop())
	_, err := c.Do(context.Background(), Request{Path: "/x"})

	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502 StatusError, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected 1 call, got %d", got)
	}
}

func TestClient_EncodesQueryStructAndKey(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	type params struct {
		Location string `url:"location"`
		Days     int    `url:"days,omitempty"`
	}

	c := New(Config{
		Vendor:  "test",
		BaseURL: srv.URL,
		Auth:    QueryKey{Param: "key", Key: "abc"},
		Retry:   fastRetry(),
	}, zerolog.Nop())

	if _, err := c.Do(context.Background(), Request{Path: "/lookup", Query: params{Location: "北京"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "key=abc&location=%E5%8C%97%E4%BA%AC" {
		t.Fatalf("unexpected query %q", gotQuery)
	}
}

func TestClient_NoTokenShortCircuits(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	cache := NewTokenCache("test", func(context.Context) (string, time.Duration, error) {
		return "", 0, errors.New("bad secret")
	}, zerolog.Nop())

	c := New(Config{Vendor: "test", BaseURL: srv.URL, Auth: TokenAuth{Cache: cache}, Retry: fastRetry()}, zerolog.Nop())
	_, err := c.Do(context.Background(), Request{Path: "/x"})
	if !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Fatalf("expected no HTTP call, got %d", got)
	}
}

func TestClient_BearerHeader(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"answer":42}`))
	}))
	defer srv.Close()

	c := New(Config{Vendor: "test", BaseURL: srv.URL, Auth: BearerKey("sk-1"), Retry: fastRetry()}, zerolog.Nop())

	var out struct {
		Answer int `json:"answer"`
	}
	if err := c.DoJSON(context.Background(), Request{Path: "/x"}, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if auth != "Bearer sk-1" {
		t.Fatalf("unexpected auth header %q", auth)
	}
	if out.Answer != 42 {
		t.Fatalf("unexpected decode %+v", out)
	}
}
