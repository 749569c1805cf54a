package httpclient

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/kbukum/clientkit/errors"
	"github.com/kbukum/clientkit/logger"
	"github.com/kbukum/clientkit/version"
)

// pool is the shared state behind every Client created for one name: the
// layered handler chain, its cookie jar and the client defaults.
type pool struct {
	name      string
	transport http.RoundTripper
	innermost http.RoundTripper
	breaker   *breakerTransport
	jar       http.CookieJar
	timeout   time.Duration
	headers   map[string]string
	baseURL   *url.URL
}

// buildPool builds the handler chain for cfg. Layers from innermost:
// primary transport, custom handlers, retry, circuit breaker, request id,
// tracing.
func buildPool(cfg Config) (*pool, error) {
	p := &pool{
		name:    cfg.Name,
		timeout: cfg.Timeout,
		headers: defaultHeaders(cfg.Headers),
	}

	if cfg.BaseURL != "" {
		u, err := parseBaseURL(cfg.BaseURL)
		if err != nil {
			return nil, errors.InvalidConfig(err.Error()).WithCause(err)
		}
		p.baseURL = u
	}

	innermost, err := primaryTransport(cfg)
	if err != nil {
		return nil, err
	}
	p.innermost = innermost

	rt := innermost
	for _, mw := range cfg.Handlers {
		rt = mw(rt)
	}
	if cfg.Retry != nil {
		rt = newRetryTransport(cfg.Name, *cfg.Retry, rt)
	}
	if cfg.CircuitBreaker != nil {
		p.breaker = newBreakerTransport(cfg.Name, *cfg.CircuitBreaker, rt)
		rt = p.breaker
	}
	if cfg.RequestIDHeader != "" {
		rt = &requestIDTransport{next: rt, header: cfg.RequestIDHeader}
	}
	if cfg.Tracing {
		rt = newTracingTransport(cfg.Name, cfg.TracerProvider, rt)
	}
	p.transport = rt

	if cfg.CookieJar {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, errors.TransportCreation(cfg.Name, err)
		}
		p.jar = jar
	}

	logger.Get("httpclient").Debug("Handler chain built", logger.Fields(
		logger.FieldTransport, cfg.Name,
		"retry", cfg.Retry != nil,
		"circuit_breaker", cfg.CircuitBreaker != nil,
		"handlers", len(cfg.Handlers),
	))
	return p, nil
}

// defaultHeaders copies headers and adds the clientkit User-Agent unless
// one is configured.
func defaultHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers)+1)
	out["User-Agent"] = version.UserAgent()
	for k, v := range headers {
		out[http.CanonicalHeaderKey(k)] = v
	}
	return out
}

func primaryTransport(cfg Config) (http.RoundTripper, error) {
	if cfg.PrimaryHandler != nil {
		rt, err := cfg.PrimaryHandler()
		if err != nil {
			return nil, err
		}
		if rt == nil {
			return nil, errors.TransportCreation(cfg.Name, fmt.Errorf("primary handler returned nil"))
		}
		return rt, nil
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	tlsCfg, err := cfg.TLS.Build()
	if err != nil {
		return nil, errors.TransportCreation(cfg.Name, err)
	}
	if tlsCfg != nil {
		transport.TLSClientConfig = tlsCfg
	}
	return transport, nil
}

// newClient returns a new Client over the pooled chain.
func (p *pool) newClient() *Client {
	c := &Client{
		name:    p.name,
		headers: p.headers,
		pool:    p,
		httpClient: &http.Client{
			Transport: p.transport,
			Timeout:   p.timeout,
			Jar:       p.jar,
		},
	}
	if p.baseURL != nil {
		c.baseURL.Store(p.baseURL)
	}
	return c
}

func (p *pool) closeIdleConnections() {
	if ci, ok := p.innermost.(interface{ CloseIdleConnections() }); ok {
		ci.CloseIdleConnections()
	}
}

func (p *pool) available() bool {
	return p.breaker == nil || p.breaker.available()
}
