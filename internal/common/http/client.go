// internal/common/http/client.go

// Package http holds the outbound HTTP client used for collaborator
// deliveries. Every call site goes through DoWithContext or PostJSON so a
// request can never outlive its evaluation context.
package http

import (
	"bytes"
	"context"
	"net/http"
	"time"
)

// Client is a timeout-bounded wrapper around the standard client.
type Client struct {
	inner *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{inner: &http.Client{Timeout: timeout}}
}

// DoWithContext sends req bound to ctx.
func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	return c.inner.Do(req.WithContext(ctx))
}

// PostJSON POSTs a JSON body to url. The caller owns the response body.
func (c *Client) PostJSON(ctx context.Context, url string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.inner.Do(req)
}
