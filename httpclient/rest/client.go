package rest

import (
	"context"
	"net/http"

	"github.com/kbukum/clientkit/httpclient"
)

// Client issues serialized requests over a transport.
type Client struct {
	http       *httpclient.Client
	serializer Serializer
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithSerializer sets the body serializer. Nil keeps the default.
func WithSerializer(s Serializer) ClientOption {
	return func(c *Client) {
		if s != nil {
			c.serializer = s
		}
	}
}

// New creates a REST client over a standalone transport built from cfg.
func New(cfg httpclient.Config, opts ...ClientOption) (*Client, error) {
	hc, err := httpclient.New(cfg)
	if err != nil {
		return nil, err
	}
	return NewFromClient(hc, opts...), nil
}

// NewFromClient creates a REST client over an existing transport.
func NewFromClient(hc *httpclient.Client, opts ...ClientOption) *Client {
	c := &Client{http: hc, serializer: DefaultSerializer}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HTTP returns the underlying transport.
func (c *Client) HTTP() *httpclient.Client {
	return c.http
}

// Serializer returns the body serializer.
func (c *Client) Serializer() Serializer {
	return c.serializer
}

// RequestOption configures a single REST request.
type RequestOption func(*httpclient.Request)

// WithQuery adds query parameters to the request.
func WithQuery(params map[string]string) RequestOption {
	return func(r *httpclient.Request) {
		if r.Query == nil {
			r.Query = make(map[string]string, len(params))
		}
		for k, v := range params {
			r.Query[k] = v
		}
	}
}

// WithHeaders adds headers to the request.
func WithHeaders(headers map[string]string) RequestOption {
	return func(r *httpclient.Request) {
		if r.Headers == nil {
			r.Headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			r.Headers[k] = v
		}
	}
}

// WithAuthScheme sets a bare Authorization scheme for the auth layer to
// complete with a token.
func WithAuthScheme(scheme string) RequestOption {
	return WithHeaders(map[string]string{"Authorization": scheme})
}

// Response wraps a typed REST response.
type Response[T any] struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Headers are the response headers.
	Headers map[string]string
	// Data is the decoded response body.
	Data T
}

// Get performs a GET request and decodes the response into type T.
func Get[T any](ctx context.Context, c *Client, path string, opts ...RequestOption) (*Response[T], error) {
	return do[T](ctx, c, http.MethodGet, path, nil, opts...)
}

// Post performs a POST request with a serialized body and decodes the response into type T.
func Post[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) (*Response[T], error) {
	return do[T](ctx, c, http.MethodPost, path, body, opts...)
}

// Put performs a PUT request with a serialized body and decodes the response into type T.
func Put[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) (*Response[T], error) {
	return do[T](ctx, c, http.MethodPut, path, body, opts...)
}

// Patch performs a PATCH request with a serialized body and decodes the response into type T.
func Patch[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) (*Response[T], error) {
	return do[T](ctx, c, http.MethodPatch, path, body, opts...)
}

// Delete performs a DELETE request and decodes the response into type T.
func Delete[T any](ctx context.Context, c *Client, path string, opts ...RequestOption) (*Response[T], error) {
	return do[T](ctx, c, http.MethodDelete, path, nil, opts...)
}

// do executes a REST request and decodes the response body.
func do[T any](ctx context.Context, c *Client, method, path string, body any, opts ...RequestOption) (*Response[T], error) {
	contentType := c.serializer.ContentType()
	req := httpclient.Request{
		Method:  method,
		Path:    path,
		Headers: map[string]string{"Accept": contentType},
	}
	if body != nil {
		data, err := c.serializer.Marshal(body)
		if err != nil {
			return nil, httpclient.NewValidationError(err.Error())
		}
		req.Body = data
		req.Headers["Content-Type"] = contentType
	}
	for _, opt := range opts {
		opt(&req)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		// Error responses still carry a body worth decoding when possible.
		if resp != nil {
			var data T
			if decErr := c.serializer.Unmarshal(resp.Body, &data); decErr == nil {
				return &Response[T]{
					StatusCode: resp.StatusCode,
					Headers:    resp.Headers,
					Data:       data,
				}, err
			}
		}
		return nil, err
	}

	var data T
	if len(resp.Body) > 0 {
		if err := c.serializer.Unmarshal(resp.Body, &data); err != nil {
			return nil, err
		}
	}

	return &Response[T]{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Data:       data,
	}, nil
}
