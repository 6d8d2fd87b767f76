// Package deepseek is the chat-completion client for the DeepSeek
// OpenAI-compatible API.
package deepseek

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tripwise/travel-guide/internal/core/ports"
	"github.com/tripwise/travel-guide/internal/infrastructure/restclient"
)

const (
	DefaultBaseURL = "https://api.deepseek.com"
	DefaultModel   = "deepseek-chat"

	defaultTemperature = 0.7
	defaultMaxTokens   = 4000
	requestTimeout     = 60 * time.Second
)

var (
	ErrUnauthorized = errors.New("deepseek: API key authentication failed")
	ErrRateLimited  = errors.New("deepseek: request rate limit exceeded")
	ErrUnavailable  = errors.New("deepseek: network connection error")
)

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Retry   restclient.RetryPolicy
	// RequestsPerSecond throttles outbound completions when > 0.
	RequestsPerSecond float64
	HTTPClient        *http.Client
}

// Client implements ports.LLM.
type Client struct {
	api   *restclient.Client
	model string
	log   zerolog.Logger
}

func NewClient(cfg Config, log zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return &Client{
		api: restclient.New(restclient.Config{
			Vendor:     "deepseek",
			BaseURL:    cfg.BaseURL,
			Auth:       restclient.BearerKey(cfg.APIKey),
			Retry:      cfg.Retry,
			Success:    hasChoice,
			Timeout:    requestTimeout,
			Limiter:    limiter,
			HTTPClient: cfg.HTTPClient,
		}, log),
		model: cfg.Model,
		log:   log.With().Str("component", "deepseek").Logger(),
	}
}

type chatRequest struct {
	Model       string              `json:"model"`
	Messages    []ports.ChatMessage `json:"messages"`
	Temperature float64             `json:"temperature"`
	MaxTokens   int                 `json:"max_tokens"`
	Stream      bool                `json:"stream"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func (c *Client) Complete(ctx context.Context, req ports.CompletionRequest) (*ports.Completion, error) {
	body := chatRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if body.Model == "" {
		body.Model = c.model
	}
	if body.Temperature == 0 {
		body.Temperature = defaultTemperature
	}
	if body.MaxTokens == 0 {
		body.MaxTokens = defaultMaxTokens
	}

	var out chatResponse
	err := c.api.DoJSON(ctx, restclient.Request{Method: http.MethodPost, Path: "/chat/completions", Body: body}, &out)
	if err != nil {
		return nil, mapError(err)
	}

	completion := &ports.Completion{
		Content: out.Choices[0].Message.Content,
		Model:   body.Model,
	}
	completion.Usage.PromptTokens = out.Usage.PromptTokens
	completion.Usage.CompletionTokens = out.Usage.CompletionTokens
	completion.Usage.TotalTokens = out.Usage.TotalTokens

	c.log.Info().Str("model", body.Model).Int("total_tokens", out.Usage.TotalTokens).Msg("completion finished")
	return completion, nil
}

func mapError(err error) error {
	var se *restclient.StatusError
	if errors.As(err, &se) {
		switch se.StatusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %v", ErrUnauthorized, err)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
	}
	if restclient.IsTransport(err) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

func hasChoice(body []byte) error {
	var out chatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return &restclient.VendorError{Vendor: "deepseek", Code: "malformed", Msg: err.Error()}
	}
	if len(out.Choices) == 0 {
		return &restclient.VendorError{Vendor: "deepseek", Code: "empty", Msg: "no choices in completion"}
	}
	return nil
}
