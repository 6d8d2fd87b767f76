// Package feishu talks to the Feishu open platform: tenant token exchange and
// Bitable record CRUD. TripStore and UserStore build the application stores
// on top of it.
package feishu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripwise/travel-guide/internal/infrastructure/restclient"
)

const (
	DefaultBaseURL = "https://open.feishu.cn"

	tokenPath   = "/open-apis/auth/v3/tenant_access_token/internal"
	recordsPath = "/open-apis/bitable/v1/apps/%s/tables/%s/records"

	recordsTimeout = 30 * time.Second
	tokenTimeout   = 10 * time.Second

	maxPageSize = 100
)

// Codes Feishu returns when the tenant token is no longer accepted.
var tokenInvalidCodes = map[int]bool{
	99991661: true,
	99991663: true,
	99991668: true,
}

// Table addresses one Bitable table.
type Table struct {
	AppToken string
	TableID  string
}

func (t Table) path() string {
	return fmt.Sprintf(recordsPath, t.AppToken, t.TableID)
}

func (t Table) configured() bool {
	return t.AppToken != "" && t.TableID != ""
}

type Config struct {
	AppID     string
	AppSecret string
	BaseURL   string
	Retry     restclient.RetryPolicy
	// HTTPClient overrides the transport, mostly for tests.
	HTTPClient *http.Client
}

// Client is an authenticated Bitable client. The tenant token is cached and
// shared by every table accessed through the same Client.
type Client struct {
	tokens *restclient.TokenCache
	api    *restclient.Client
	log    zerolog.Logger
}

func NewClient(cfg Config, log zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	auth := restclient.New(restclient.Config{
		Vendor:     "feishu_auth",
		BaseURL:    cfg.BaseURL,
		Retry:      restclient.RetryPolicy{Attempts: 1},
		Success:    codeOK("feishu_auth"),
		Timeout:    tokenTimeout,
		HTTPClient: cfg.HTTPClient,
	}, log)

	c := &Client{
		log: log.With().Str("component", "feishu").Logger(),
	}
	c.tokens = restclient.NewTokenCache("feishu", func(ctx context.Context) (string, time.Duration, error) {
		var out tokenResponse
		err := auth.DoJSON(ctx, restclient.Request{
			Method: http.MethodPost,
			Path:   tokenPath,
			Body:   tokenRequest{AppID: cfg.AppID, AppSecret: cfg.AppSecret},
		}, &out)
		if err != nil {
			return "", 0, err
		}
		return out.TenantAccessToken, time.Duration(out.Expire) * time.Second, nil
	}, log)

	c.api = restclient.New(restclient.Config{
		Vendor:     "feishu",
		BaseURL:    cfg.BaseURL,
		Auth:       restclient.TokenAuth{Cache: c.tokens},
		Retry:      cfg.Retry,
		Success:    codeOK("feishu"),
		Timeout:    recordsTimeout,
		HTTPClient: cfg.HTTPClient,
	}, log)
	return c
}

// TokenOK reports whether a tenant token can currently be obtained.
func (c *Client) TokenOK(ctx context.Context) bool {
	_, ok := c.tokens.Token(ctx, false)
	return ok
}

type tokenRequest struct {
	AppID     string `json:"app_id"`
	AppSecret string `json:"app_secret"`
}

type tokenResponse struct {
	Code              int    `json:"code"`
	Msg               string `json:"msg"`
	TenantAccessToken string `json:"tenant_access_token"`
	Expire            int    `json:"expire"`
}

// Record is one Bitable row.
type Record struct {
	RecordID string         `json:"record_id,omitempty"`
	Fields   map[string]any `json:"fields"`
}

// ListOptions narrows a record listing. Filter and Sort are passed through
// verbatim as JSON strings.
type ListOptions struct {
	PageSize  int    `url:"page_size,omitempty"`
	PageToken string `url:"page_token,omitempty"`
	Filter    string `url:"filter,omitempty"`
	Sort      string `url:"sort,omitempty"`
}

// RecordPage is one page of a listing.
type RecordPage struct {
	Items     []Record `json:"items"`
	HasMore   bool     `json:"has_more"`
	PageToken string   `json:"page_token"`
	Total     int      `json:"total"`
}

// CreateRecord appends a row and returns its record id.
func (c *Client) CreateRecord(ctx context.Context, table Table, fields map[string]any) (string, error) {
	var out struct {
		Data struct {
			Record Record `json:"record"`
		} `json:"data"`
	}
	err := c.call(ctx, restclient.Request{
		Method: http.MethodPost,
		Path:   table.path(),
		Body:   Record{Fields: fields},
	}, &out)
	if err != nil {
		return "", err
	}
	return out.Data.Record.RecordID, nil
}

// UpdateRecord overwrites the given fields of an existing row.
func (c *Client) UpdateRecord(ctx context.Context, table Table, recordID string, fields map[string]any) error {
	return c.call(ctx, restclient.Request{
		Method: http.MethodPut,
		Path:   table.path() + "/" + recordID,
		Body:   Record{Fields: fields},
	}, nil)
}

// ListRecords fetches one page of rows.
func (c *Client) ListRecords(ctx context.Context, table Table, opts ListOptions) (*RecordPage, error) {
	if opts.PageSize <= 0 || opts.PageSize > maxPageSize {
		opts.PageSize = maxPageSize
	}
	var out struct {
		Data RecordPage `json:"data"`
	}
	err := c.call(ctx, restclient.Request{
		Method: http.MethodGet,
		Path:   table.path(),
		Query:  opts,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// ListAll walks every page of the table.
func (c *Client) ListAll(ctx context.Context, table Table, opts ListOptions) ([]Record, error) {
	var records []Record
	for {
		page, err := c.ListRecords(ctx, table, opts)
		if err != nil {
			return nil, err
		}
		records = append(records, page.Items...)
		if !page.HasMore || page.PageToken == "" {
			return records, nil
		}
		opts.PageToken = page.PageToken
	}
}

func (c *Client) call(ctx context.Context, req restclient.Request, out any) error {
	err := c.api.DoJSON(ctx, req, out)
	var ve *restclient.VendorError
	if errors.As(err, &ve) {
		if code, convErr := strconv.Atoi(ve.Code); convErr == nil && tokenInvalidCodes[code] {
			c.log.Warn().Int("code", code).Msg("tenant token rejected, invalidating")
			c.tokens.Invalidate()
		}
	}
	return err
}

// codeOK accepts bodies whose numeric "code" is 0.
func codeOK(name string) restclient.SuccessFunc {
	return func(body []byte) error {
		var env struct {
			Code *int   `json:"code"`
			Msg  string `json:"msg"`
		}
		if err := json.Unmarshal(body, &env); err != nil {
			return &restclient.VendorError{Vendor: name, Code: "malformed", Msg: err.Error()}
		}
		if env.Code == nil {
			return &restclient.VendorError{Vendor: name, Code: "missing", Msg: "response has no code"}
		}
		if *env.Code != 0 {
			return &restclient.VendorError{Vendor: name, Code: strconv.Itoa(*env.Code), Msg: env.Msg}
		}
		return nil
	}
}
