package typedclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/kbukum/clientkit/di"
	"github.com/kbukum/clientkit/httpclient"
	"github.com/kbukum/clientkit/httpclient/rest"
)

type account struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Accounts and Billing are the client types exercised by the tests.
type Accounts interface {
	Get(ctx context.Context, id string) (*account, error)
	Transport() *httpclient.Client
}

type Billing interface {
	Ping(ctx context.Context) error
	Transport() *httpclient.Client
}

type CrudAPI[T any] interface {
	List(ctx context.Context) ([]T, error)
}

type role struct{}

type accountsClient struct {
	rest *rest.Client
}

func (c *accountsClient) Get(ctx context.Context, id string) (*account, error) {
	resp, err := rest.Get[account](ctx, c.rest, "/accounts/"+id)
	if err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func (c *accountsClient) Transport() *httpclient.Client { return c.rest.HTTP() }

func newAccounts(c *rest.Client, _ di.Resolver) (Accounts, error) {
	return &accountsClient{rest: c}, nil
}

type billingClient struct {
	rest *rest.Client
}

func (c *billingClient) Ping(ctx context.Context) error {
	_, err := rest.Get[map[string]any](ctx, c.rest, "/ping")
	return err
}

func (c *billingClient) Transport() *httpclient.Client { return c.rest.HTTP() }

func newBilling(c *rest.Client, _ di.Resolver) (Billing, error) {
	return &billingClient{rest: c}, nil
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return u
}

// recorder is a test server that records the headers of every request.
type recorder struct {
	*httptest.Server

	mu      sync.Mutex
	headers []http.Header
}

func newRecorder(t *testing.T) *recorder {
	t.Helper()
	rec := &recorder{}
	rec.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.mu.Lock()
		rec.headers = append(rec.headers, r.Header.Clone())
		rec.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(account{ID: "1", Name: "Alice"})
	}))
	t.Cleanup(rec.Close)
	return rec
}

func (r *recorder) requests() []http.Header {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]http.Header(nil), r.headers...)
}
