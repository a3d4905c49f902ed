// Package api implements the identity and catalog ports over the store's JSON HTTP API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/jaakkos/storefront/internal/app"
)

// HeaderRequestID carries a per-request id so server logs can be matched to client logs.
const HeaderRequestID = "X-Request-ID"

// maxErrorBody bounds how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// Client sends JSON requests relative to a base URL. A Client without a base
// URL fails every request with app.ErrNotConfigured.
type Client struct {
	BaseURL *url.URL
	HTTP    *http.Client
}

// NewClient parses baseURL. An empty baseURL yields an unconfigured client.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{HTTP: httpClient}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return c, nil
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid api base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q: scheme and host required", baseURL)
	}
	c.BaseURL = u
	return c, nil
}

// Configured reports whether a base URL is set.
func (c *Client) Configured() bool {
	return c.BaseURL != nil
}

// do sends in (if non-nil) as JSON and decodes a 2xx body into out (if non-nil).
// Non-2xx answers become *app.RemoteError; undecodable 2xx bodies app.ErrMalformedResponse.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if c.BaseURL == nil {
		return app.ErrNotConfigured
	}
	u := c.BaseURL.ResolveReference(&url.URL{Path: strings.TrimPrefix(path, "/")})

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(HeaderRequestID, uuid.NewString())

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &app.RemoteError{StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", app.ErrMalformedResponse, method, path, err)
	}
	return nil
}

// errorMessage extracts the optional "message" field of an error body.
func errorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}
	var body struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &body) != nil {
		return ""
	}
	return body.Message
}
