// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// StatusError reports a response other than 200 OK.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.Code, e.URL)
}

// Client wraps an http.Client with a request-rate limiter, a fixed
// User-Agent, extra headers, and 429 backoff. It is safe for concurrent use.
type Client struct {
	HTTP       *http.Client
	Limiter    *rate.Limiter
	UserAgent  string
	Header     http.Header
	MaxRetries int
}

// NewClient returns a Client that sends at most one request per delay.
// A zero delay disables throttling.
func NewClient(timeout time.Duration, userAgent string, delay time.Duration) *Client {
	c := &Client{
		HTTP:      &http.Client{Timeout: timeout},
		UserAgent: userAgent,
		Header:    http.Header{},
	}
	if delay > 0 {
		c.Limiter = rate.NewLimiter(rate.Every(delay), 1)
	}
	return c
}

// Do waits for the limiter, applies the client headers, and sends req with
// 429 retries.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "httputil: rate limiter")
		}
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	for k, vs := range c.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	return DoWithRetry(ctx, hc, req, c.MaxRetries)
}

// GetJSON issues a GET with query params and decodes a 200 response into
// out. Any other status is returned as a *StatusError.
func (c *Client) GetJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	u := endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return eris.Wrapf(err, "httputil: build request %s", endpoint)
	}
	req.Header.Set("Accept", "application/json")
	return c.doJSON(ctx, req, out)
}

// PostJSON encodes body as JSON, posts it, and decodes a 200 response into out.
func (c *Client) PostJSON(ctx context.Context, endpoint string, params url.Values, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return eris.Wrapf(err, "httputil: encode body for %s", endpoint)
	}
	u := endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return eris.Wrapf(err, "httputil: build request %s", endpoint)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	return c.doJSON(ctx, req, out)
}

func (c *Client) doJSON(ctx context.Context, req *http.Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return eris.Wrapf(err, "httputil: %s %s", req.Method, req.URL.Path)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return &StatusError{Code: resp.StatusCode, URL: req.URL.Redacted()}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return eris.Wrapf(err, "httputil: decode %s", req.URL.Path)
	}
	return nil
}
