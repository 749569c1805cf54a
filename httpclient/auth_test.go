package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

// roundTripFunc adapts a function to http.RoundTripper.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func captureTransport(got *http.Header) http.RoundTripper {
	return roundTripFunc(func(r *http.Request) (*http.Response, error) {
		*got = r.Header.Clone()
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: r}, nil
	})
}

func TestAuthTransport_Scheme(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		scheme   string
		want     string
	}{
		{"default scheme", "", "", "Bearer token-123"},
		{"configured scheme", "", "Token", "Token token-123"},
		{"bare scheme on request", "Basic", "Token", "Basic token-123"},
		{"full header on request", "Bearer stale", "", "Bearer token-123"},
		{"credentials on request", "Basic dXNlcjpwYXNz", "Token", "Token token-123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got http.Header
			rt := NewAuthTransport(captureTransport(&got), StaticToken("token-123"), tt.scheme)

			req := httptest.NewRequest(http.MethodGet, "http://api.example.com/x", nil)
			if tt.existing != "" {
				req.Header.Set("Authorization", tt.existing)
			}
			if _, err := rt.RoundTrip(req); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if auth := got.Get("Authorization"); auth != tt.want {
				t.Errorf("Authorization = %q, want %q", auth, tt.want)
			}
			if tt.existing == "" && req.Header.Get("Authorization") != "" {
				t.Error("the caller's request must not be mutated")
			}
		})
	}
}

func TestAuthTransport_SupplierErrorUnchanged(t *testing.T) {
	supplierErr := errors.New("vault sealed")
	called := false
	next := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		called = true
		return nil, nil
	})
	rt := NewAuthTransport(next, func(context.Context) (string, error) { return "", supplierErr }, "")

	_, err := rt.RoundTrip(httptest.NewRequest(http.MethodGet, "http://x/", nil))
	if err != supplierErr {
		t.Errorf("err = %v, want supplier error unchanged", err)
	}
	if called {
		t.Error("request must not be sent when the supplier fails")
	}
}

func TestRequestAuthTransport_SeesRequest(t *testing.T) {
	var got http.Header
	rt := NewRequestAuthTransport(captureTransport(&got), func(r *http.Request) (string, error) {
		return "for-" + r.URL.Path, nil
	}, "")

	if _, err := rt.RoundTrip(httptest.NewRequest(http.MethodGet, "http://x/orders", nil)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if auth := got.Get("Authorization"); auth != "Bearer for-/orders" {
		t.Errorf("Authorization = %q", auth)
	}
}

func TestWithAuth_Static(t *testing.T) {
	tests := []struct {
		name  string
		auth  *AuthConfig
		check func(t *testing.T, r *http.Request)
	}{
		{"basic", BasicAuth("user", "pass"), func(t *testing.T, r *http.Request) {
			u, p, ok := r.BasicAuth()
			if !ok || u != "user" || p != "pass" {
				t.Errorf("basic auth not set: %q %q %v", u, p, ok)
			}
		}},
		{"api key header", APIKeyAuth("secret"), func(t *testing.T, r *http.Request) {
			if got := r.Header.Get("X-API-Key"); got != "secret" {
				t.Errorf("X-API-Key = %q", got)
			}
		}},
		{"api key query", APIKeyAuthQuery("secret", "api_key"), func(t *testing.T, r *http.Request) {
			if got := r.URL.Query().Get("api_key"); got != "secret" {
				t.Errorf("api_key = %q", got)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tt.check(t, r)
			}))
			defer srv.Close()

			var cfg Config
			WithAuth(tt.auth)(&cfg)
			cfg.BaseURL = srv.URL
			c, err := New(cfg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if _, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestJWTSupplier(t *testing.T) {
	secret := []byte("test-secret")
	supplier := JWTSupplier(JWTConfig{Issuer: "orders", Subject: "svc", Secret: secret})

	req := httptest.NewRequest(http.MethodGet, "http://billing.internal:8080/invoices", nil)
	raw, err := supplier(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Count(raw, ".") != 2 {
		t.Fatalf("not a JWT: %q", raw)
	}

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithAudience("billing.internal:8080"),
		jwt.WithIssuer("orders"),
	)
	if err != nil {
		t.Fatalf("token did not verify: %v", err)
	}
	if claims.Subject != "svc" || claims.ID == "" {
		t.Errorf("unexpected claims: %+v", claims)
	}

	if _, err := JWTSupplier(JWTConfig{})(req); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestTokenAuth_UnderStaticBasicAuth(t *testing.T) {
	var got http.Header
	f := NewFactory()
	f.Configure("svc",
		WithPrimaryHandler(func() (http.RoundTripper, error) { return captureTransport(&got), nil }),
		WithHandler(TokenAuth(StaticToken("token-123"), "")),
		WithAuth(BasicAuth("user", "pass")),
	)
	c, err := f.CreateClient("svc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "http://api.example.com/x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if auth := got.Get("Authorization"); auth != "Bearer token-123" {
		t.Errorf("Authorization = %q, want the token under the default scheme", auth)
	}
}
