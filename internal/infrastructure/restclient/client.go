// Package restclient is the shared REST client behind every third-party façade.
//
// A vendor is described by a Config: base URL, auth strategy, retry policy
// and a success predicate that inspects the decoded body. Only transport
// failures are retried; HTTP and vendor-reported errors return immediately.
package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tripwise/travel-guide/internal/api/metrics"
)

const (
	defaultTimeout  = 10 * time.Second
	maxErrorBodyLen = 200
)

// SuccessFunc inspects a 200 response body and returns a *VendorError when
// the vendor reports failure.
type SuccessFunc func(body []byte) error

// RetryPolicy is a fixed-delay retry bound. No backoff, no jitter.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

// DefaultRetryPolicy is three attempts one second apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, Delay: time.Second}
}

// Config describes one vendor.
type Config struct {
	Vendor  string
	BaseURL string
	Auth    AuthStrategy
	Retry   RetryPolicy
	Success SuccessFunc
	// Timeout bounds each attempt.
	Timeout time.Duration
	// Limiter throttles outbound calls when set.
	Limiter    *rate.Limiter
	Headers    map[string]string
	HTTPClient *http.Client
}

// Request is one vendor call. Query is either url.Values or a struct with
// `url` tags; Body is JSON-encoded when non-nil.
type Request struct {
	Method string
	Path   string
	Query  any
	Body   any
}

// Client issues authenticated, retried requests against one vendor.
type Client struct {
	cfg  Config
	http *http.Client
	log  zerolog.Logger
}

func New(cfg Config, log zerolog.Logger) *Client {
	if cfg.Auth == nil {
		cfg.Auth = NoAuth{}
	}
	if cfg.Retry.Attempts <= 0 {
		cfg.Retry = DefaultRetryPolicy()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		cfg:  cfg,
		http: hc,
		log:  log.With().Str("component", "vendor").Str("vendor", cfg.Vendor).Logger(),
	}
}

// Vendor returns the configured vendor name.
func (c *Client) Vendor() string { return c.cfg.Vendor }

// DoJSON performs the request and decodes the body into out.
func (c *Client) DoJSON(ctx context.Context, req Request, out any) error {
	body, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.cfg.Vendor, err)
	}
	return nil
}

// Do performs the request and returns the raw 200 body.
func (c *Client) Do(ctx context.Context, req Request) ([]byte, error) {
	start := time.Now()
	defer func() {
		metrics.VendorRequestDuration.WithLabelValues(c.cfg.Vendor).Observe(time.Since(start).Seconds())
	}()

	target, err := c.buildURL(req)
	if err != nil {
		return nil, err
	}

	var payload []byte
	if req.Body != nil {
		payload, err = json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode body: %w", c.cfg.Vendor, err)
		}
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var lastErr error
	for attempt := 1; attempt <= c.cfg.Retry.Attempts; attempt++ {
		if attempt > 1 {
			metrics.VendorRetriesTotal.WithLabelValues(c.cfg.Vendor).Inc()
			if err := sleep(ctx, c.cfg.Retry.Delay); err != nil {
				lastErr = err
				break
			}
		}

		status, body, err := c.attempt(ctx, method, target, payload)
		if errors.Is(err, ErrNoToken) {
			c.outcome("no_token")
			return nil, fmt.Errorf("%s: %w", c.cfg.Vendor, err)
		}
		if err != nil {
			lastErr = err
			c.log.Warn().Err(err).
				Int("attempt", attempt).
				Int("max_attempts", c.cfg.Retry.Attempts).
				Str("method", method).
				Msg("vendor request failed")
			if ctx.Err() != nil {
				break
			}
			continue
		}

		if status != http.StatusOK {
			c.outcome("status_error")
			c.log.Warn().Int("status", status).Str("body", truncate(body)).Msg("unexpected HTTP status")
			return nil, &StatusError{Vendor: c.cfg.Vendor, StatusCode: status, Body: truncate(body)}
		}

		if c.cfg.Success != nil {
			if err := c.cfg.Success(body); err != nil {
				c.outcome("vendor_error")
				c.log.Warn().Err(err).Msg("vendor reported failure")
				return nil, err
			}
		}

		c.outcome("ok")
		return body, nil
	}

	c.outcome("transport_error")
	return nil, &TransportError{Vendor: c.cfg.Vendor, Attempts: c.cfg.Retry.Attempts, Err: lastErr}
}

func (c *Client) attempt(ctx context.Context, method, target string, payload []byte) (int, []byte, error) {
	if c.cfg.Limiter != nil {
		if err := c.cfg.Limiter.Wait(ctx); err != nil {
			return 0, nil, err
		}
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(attemptCtx, method, target, body)
	if err != nil {
		return 0, nil, err
	}
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	for k, v := range c.cfg.Headers {
		httpReq.Header.Set(k, v)
	}
	if err := c.cfg.Auth.Apply(ctx, httpReq); err != nil {
		return 0, nil, err
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, data, nil
}

func (c *Client) buildURL(req Request) (string, error) {
	target := req.Path
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.TrimLeft(req.Path, "/")
	}

	if req.Query == nil {
		return target, nil
	}

	var values url.Values
	switch q := req.Query.(type) {
	case url.Values:
		values = q
	default:
		v, err := query.Values(q)
		if err != nil {
			return "", fmt.Errorf("%s: encode query: %w", c.cfg.Vendor, err)
		}
		values = v
	}
	if len(values) == 0 {
		return target, nil
	}
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + values.Encode(), nil
}

func (c *Client) outcome(o string) {
	metrics.VendorRequestsTotal.WithLabelValues(c.cfg.Vendor, o).Inc()
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func truncate(b []byte) string {
	if len(b) > maxErrorBodyLen {
		return string(b[:maxErrorBodyLen])
	}
	return string(b)
}
