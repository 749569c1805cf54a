package httpclient

import (
	"context"
	"net/http"
	"strings"
)

// DefaultAuthScheme is the Authorization scheme used when neither the
// request nor the caller names one.
const DefaultAuthScheme = "Bearer"

// TokenSupplier returns the credential for an outgoing request.
type TokenSupplier func(ctx context.Context) (string, error)

// RequestTokenSupplier returns the credential for an outgoing request and
// may inspect the request itself.
type RequestTokenSupplier func(req *http.Request) (string, error)

// StaticToken returns a TokenSupplier that always yields token.
func StaticToken(token string) TokenSupplier {
	return func(context.Context) (string, error) { return token, nil }
}

// NewAuthTransport wraps next so that every request carries
// "Authorization: <scheme> <token>" with a token from supplier.
// Supplier errors are returned unchanged and the request is not sent.
func NewAuthTransport(next http.RoundTripper, supplier TokenSupplier, scheme string) http.RoundTripper {
	return &authTransport{
		next:   next,
		scheme: scheme,
		token: func(req *http.Request) (string, error) {
			return supplier(req.Context())
		},
	}
}

// NewRequestAuthTransport is NewAuthTransport for suppliers that inspect
// the outgoing request.
func NewRequestAuthTransport(next http.RoundTripper, supplier RequestTokenSupplier, scheme string) http.RoundTripper {
	return &authTransport{
		next:   next,
		scheme: scheme,
		token:  supplier,
	}
}

// TokenAuth returns NewAuthTransport as a Middleware.
func TokenAuth(supplier TokenSupplier, scheme string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return NewAuthTransport(next, supplier, scheme)
	}
}

// RequestTokenAuth returns NewRequestAuthTransport as a Middleware.
func RequestTokenAuth(supplier RequestTokenSupplier, scheme string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return NewRequestAuthTransport(next, supplier, scheme)
	}
}

type authTransport struct {
	next   http.RoundTripper
	scheme string
	token  func(req *http.Request) (string, error)
}

// RoundTrip implements http.RoundTripper.
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.token(req)
	if err != nil {
		return nil, err
	}

	r := req.Clone(req.Context())
	r.Header.Set("Authorization", t.schemeFor(req)+" "+token)
	return t.next.RoundTrip(r)
}

// schemeFor prefers a bare scheme already present on the request. A full
// Authorization value, such as one set by a static auth layer, is replaced.
func (t *authTransport) schemeFor(req *http.Request) string {
	if existing := strings.Fields(req.Header.Get("Authorization")); len(existing) == 1 {
		return existing[0]
	}
	if t.scheme != "" {
		return t.scheme
	}
	return DefaultAuthScheme
}

// AuthType identifies a static authentication method.
type AuthType int

const (
	// AuthNone disables authentication.
	AuthNone AuthType = iota
	// AuthBasic uses HTTP Basic authentication.
	AuthBasic
	// AuthAPIKey uses API key authentication (header or query parameter).
	AuthAPIKey
)

// AuthConfig configures static credentials applied by the transport.
type AuthConfig struct {
	// Type is the authentication method.
	Type AuthType
	// Username is the basic auth username (AuthBasic).
	Username string
	// Password is the basic auth password (AuthBasic).
	Password string
	// Key is the API key value (AuthAPIKey).
	Key string
	// In specifies where to place the API key: "header" (default) or "query".
	In string
	// Name is the header or query parameter name. Defaults to "X-API-Key".
	Name string
}

// BasicAuth creates a basic auth config.
func BasicAuth(username, password string) *AuthConfig {
	return &AuthConfig{Type: AuthBasic, Username: username, Password: password}
}

// APIKeyAuth creates an API key auth config sent via header.
func APIKeyAuth(key string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, In: "header", Name: "X-API-Key"}
}

// APIKeyAuthQuery creates an API key auth config sent via query parameter.
func APIKeyAuthQuery(key, paramName string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, In: "query", Name: paramName}
}

// WithAuth adds a layer applying static credentials to every request.
func WithAuth(a *AuthConfig) Option {
	return WithHandler(func(next http.RoundTripper) http.RoundTripper {
		if a == nil || a.Type == AuthNone {
			return next
		}
		return &staticAuthTransport{next: next, auth: *a}
	})
}

type staticAuthTransport struct {
	next http.RoundTripper
	auth AuthConfig
}

// RoundTrip implements http.RoundTripper.
func (t *staticAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	switch t.auth.Type {
	case AuthBasic:
		r.SetBasicAuth(t.auth.Username, t.auth.Password)
	case AuthAPIKey:
		name := t.auth.Name
		if name == "" {
			name = "X-API-Key"
		}
		if t.auth.In == "query" {
			q := r.URL.Query()
			q.Set(name, t.auth.Key)
			r.URL.RawQuery = q.Encode()
		} else {
			r.Header.Set(name, t.auth.Key)
		}
	}
	return t.next.RoundTrip(r)
}
