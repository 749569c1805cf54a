package httpclient

import (
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
)

const (
	defaultTimeout         = 30 * time.Second
	defaultRequestIDHeader = "X-Request-ID"
)

// Config configures a named transport and the clients created over it.
type Config struct {
	// Name identifies the transport. Set by the Factory for named transports.
	Name string `yaml:"name" mapstructure:"name"`

	// BaseURL is the initial base address of clients created for this name.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout is the per-request timeout. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Headers are default headers applied to all requests.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// TLS configures the default innermost transport. Ignored when a
	// primary handler is set.
	TLS *TLSConfig `yaml:"tls" mapstructure:"tls"`

	// Retry enables the retrying layer. Nil disables retry.
	Retry *RetryConfig `yaml:"retry" mapstructure:"retry"`

	// CircuitBreaker enables the circuit breaker layer. Nil disables it.
	CircuitBreaker *CircuitBreakerConfig `yaml:"circuit_breaker" mapstructure:"circuit_breaker"`

	// CookieJar gives the transport a cookie jar shared by all its clients.
	CookieJar bool `yaml:"cookie_jar" mapstructure:"cookie_jar"`

	// RequestIDHeader, when set, stamps a generated id on requests that
	// don't carry one.
	RequestIDHeader string `yaml:"request_id_header" mapstructure:"request_id_header"`

	// Tracing wraps the transport in a client span layer.
	Tracing bool `yaml:"tracing" mapstructure:"tracing"`

	// TracerProvider used by the tracing layer. Defaults to the global provider.
	TracerProvider trace.TracerProvider `yaml:"-" mapstructure:"-"`

	// PrimaryHandler replaces the default innermost transport.
	PrimaryHandler func() (http.RoundTripper, error) `yaml:"-" mapstructure:"-"`

	// Handlers are delegating layers applied over the innermost transport,
	// first added is innermost.
	Handlers []Middleware `yaml:"-" mapstructure:"-"`
}

// Middleware wraps a RoundTripper with a delegating layer.
type Middleware func(next http.RoundTripper) http.RoundTripper

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Retry != nil {
		c.Retry.ApplyDefaults()
	}
	if c.CircuitBreaker != nil {
		c.CircuitBreaker.ApplyDefaults()
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("httpclient: timeout must be positive")
	}
	if c.BaseURL != "" {
		if _, err := parseBaseURL(c.BaseURL); err != nil {
			return err
		}
	}
	if c.TLS != nil {
		if err := c.TLS.Validate(); err != nil {
			return err
		}
	}
	if c.Retry != nil && c.Retry.MaxRetries < 0 {
		return fmt.Errorf("httpclient: retry max_retries must not be negative")
	}
	return nil
}

// Option configures a named transport.
type Option func(*Config)

// WithBaseURL sets the initial base address.
func WithBaseURL(baseURL string) Option {
	return func(c *Config) { c.BaseURL = baseURL }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithHeaders merges default request headers.
func WithHeaders(headers map[string]string) Option {
	return func(c *Config) {
		if c.Headers == nil {
			c.Headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			c.Headers[k] = v
		}
	}
}

// WithTLS configures the default innermost transport's TLS settings.
func WithTLS(tls *TLSConfig) Option {
	return func(c *Config) { c.TLS = tls }
}

// WithRetry enables the retrying layer.
func WithRetry(cfg RetryConfig) Option {
	return func(c *Config) { c.Retry = &cfg }
}

// WithCircuitBreaker enables the circuit breaker layer.
func WithCircuitBreaker(cfg CircuitBreakerConfig) Option {
	return func(c *Config) { c.CircuitBreaker = &cfg }
}

// WithCookieJar gives the transport a public-suffix aware cookie jar.
func WithCookieJar() Option {
	return func(c *Config) { c.CookieJar = true }
}

// WithRequestID stamps a generated request id under header. An empty
// header selects X-Request-ID.
func WithRequestID(header string) Option {
	return func(c *Config) {
		if header == "" {
			header = defaultRequestIDHeader
		}
		c.RequestIDHeader = header
	}
}

// WithTracing enables the client span layer. A nil provider uses the
// global one.
func WithTracing(tp trace.TracerProvider) Option {
	return func(c *Config) {
		c.Tracing = true
		c.TracerProvider = tp
	}
}

// WithPrimaryHandler replaces the default innermost transport.
func WithPrimaryHandler(fn func() (http.RoundTripper, error)) Option {
	return func(c *Config) { c.PrimaryHandler = fn }
}

// WithHandler appends a delegating layer over the innermost transport.
func WithHandler(mw Middleware) Option {
	return func(c *Config) {
		if mw != nil {
			c.Handlers = append(c.Handlers, mw)
		}
	}
}
