package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
)

// Client is a transport handle: an *http.Client over a named handler chain
// plus a base address that may be assigned once after creation.
// Clients are safe for concurrent use.
type Client struct {
	name       string
	httpClient *http.Client
	headers    map[string]string
	pool       *pool
	baseURL    atomic.Pointer[url.URL]
}

// New creates a standalone client with its own handler chain.
func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p, err := buildPool(cfg)
	if err != nil {
		return nil, err
	}
	return p.newClient(), nil
}

// Name returns the transport name the client was created for.
func (c *Client) Name() string {
	return c.name
}

// BaseURL returns the current base address, or nil when unset.
func (c *Client) BaseURL() *url.URL {
	return c.baseURL.Load()
}

// SetBaseURL assigns the base address. Without overwrite the address is set
// only if none is present yet. It reports whether u was stored.
func (c *Client) SetBaseURL(u *url.URL, overwrite bool) bool {
	if u == nil {
		return false
	}
	if overwrite {
		c.baseURL.Store(u)
		return true
	}
	return c.baseURL.CompareAndSwap(nil, u)
}

// Do executes an HTTP request and returns the complete response.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		classErr := classifyTransportError(ctx, err)
		classErr.Transport = c.name
		return nil, classErr
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		classErr := NewConnectionError(fmt.Errorf("read response body: %w", err))
		classErr.Transport = c.name
		return nil, classErr
	}

	result := &Response{
		StatusCode: resp.StatusCode,
		Headers:    flattenHeaders(resp.Header),
		Body:       body,
	}

	if classErr := ClassifyStatusCode(resp.StatusCode, body); classErr != nil {
		classErr.Transport = c.name
		return result, classErr
	}

	return result, nil
}

// Unwrap returns the underlying *http.Client for advanced use cases.
func (c *Client) Unwrap() *http.Client {
	return c.httpClient
}

// Transport returns the outermost layer of the handler chain.
func (c *Client) Transport() http.RoundTripper {
	return c.httpClient.Transport
}

// CloseIdleConnections releases idle pooled connections of the chain.
// Every client sharing the transport is affected.
func (c *Client) CloseIdleConnections() {
	c.pool.closeIdleConnections()
}

// buildRequest constructs an *http.Request from the client state and request.
func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	target := req.Path
	if base := c.baseURL.Load(); base != nil && !isAbsolute(req.Path) {
		target = strings.TrimRight(base.String(), "/") + "/" + strings.TrimLeft(req.Path, "/")
	}

	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("encode body: %v", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("create request: %v", err))
	}

	if len(req.Query) > 0 {
		q := httpReq.URL.Query()
		for k, v := range req.Query {
			q.Set(k, v)
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}
	// Request headers override defaults.
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	if body != nil && httpReq.Header.Get("Content-Type") == "" && contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	return httpReq, nil
}

func isAbsolute(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// parseBaseURL parses an absolute base address.
func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("httpclient: invalid base url %q: %w", raw, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("httpclient: base url %q must be absolute", raw)
	}
	return u, nil
}

// encodeBody converts a body value into an io.Reader and content type.
func encodeBody(body any) (io.Reader, string, error) {
	if body == nil {
		return nil, "", nil
	}
	switch v := body.(type) {
	case io.Reader:
		return v, "", nil
	case []byte:
		return bytes.NewReader(v), "", nil
	case string:
		return strings.NewReader(v), "text/plain", nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

// flattenHeaders converts multi-value headers to single-value.
func flattenHeaders(h http.Header) map[string]string {
	result := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			result[k] = v[0]
		}
	}
	return result
}
