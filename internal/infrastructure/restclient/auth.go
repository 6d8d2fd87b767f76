package restclient

import (
	"context"
	"net/http"
)

// AuthStrategy decorates an outgoing request with vendor credentials.
type AuthStrategy interface {
	Apply(ctx context.Context, req *http.Request) error
}

// NoAuth sends requests unauthenticated.
type NoAuth struct{}

func (NoAuth) Apply(context.Context, *http.Request) error { return nil }

// BearerKey sends a static API key as a bearer token.
type BearerKey string

func (k BearerKey) Apply(_ context.Context, req *http.Request) error {
	req.Header.Set("Authorization", "Bearer "+string(k))
	return nil
}

// QueryKey appends a static API key as a query parameter.
type QueryKey struct {
	Param string
	Key   string
}

func (k QueryKey) Apply(_ context.Context, req *http.Request) error {
	q := req.URL.Query()
	q.Set(k.Param, k.Key)
	req.URL.RawQuery = q.Encode()
	return nil
}

// TokenAuth sends the bearer token held by a TokenCache.
type TokenAuth struct {
	Cache *TokenCache
}

func (a TokenAuth) Apply(ctx context.Context, req *http.Request) error {
	token, ok := a.Cache.Token(ctx, false)
	if !ok {
		return ErrNoToken
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}
