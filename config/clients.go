package config

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/kbukum/clientkit/errors"
	"github.com/kbukum/clientkit/httpclient"
	"github.com/kbukum/clientkit/validation"
)

// ClientsConfig is the file form of a set of client definitions.
//
//	clients:
//	  billing:
//	    transport: backoffice
//	    base_url: https://billing.internal
//	    timeout: 5s
//	    token_env: BILLING_TOKEN
//	    retry:
//	      max_retries: 2
type ClientsConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Clients       map[string]ClientConfig `yaml:"clients" mapstructure:"clients" validate:"dive"`
}

// ClientConfig defines one client entry.
type ClientConfig struct {
	// Transport is the shared transport name. Empty leaves the client on
	// its own transport.
	Transport string `yaml:"transport" mapstructure:"transport"`
	// BaseURL is the base address of the transport.
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,http_url"`
	// Timeout is the per-request timeout.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	// Headers are sent with every request.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`
	// TokenEnv names the environment variable holding the credential.
	TokenEnv string `yaml:"token_env" mapstructure:"token_env"`
	// AuthScheme prefixes the credential. Defaults to Bearer.
	AuthScheme string `yaml:"auth_scheme" mapstructure:"auth_scheme"`
	// OverwriteBaseURL replaces a base address set by an earlier client
	// on the same transport.
	OverwriteBaseURL bool `yaml:"overwrite_base_url" mapstructure:"overwrite_base_url"`

	Retry          *httpclient.RetryConfig          `yaml:"retry" mapstructure:"retry"`
	CircuitBreaker *httpclient.CircuitBreakerConfig `yaml:"circuit_breaker" mapstructure:"circuit_breaker"`
	TLS            *httpclient.TLSConfig            `yaml:"tls" mapstructure:"tls"`
	CookieJar      bool                             `yaml:"cookie_jar" mapstructure:"cookie_jar"`
	RequestID      bool                             `yaml:"request_id" mapstructure:"request_id"`
	Tracing        bool                             `yaml:"tracing" mapstructure:"tracing"`
}

// ApplyDefaults applies defaults to the service fields and every entry.
func (c *ClientsConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	for name, entry := range c.Clients {
		if entry.Retry != nil {
			entry.Retry.ApplyDefaults()
		}
		if entry.CircuitBreaker != nil {
			entry.CircuitBreaker.ApplyDefaults()
		}
		c.Clients[name] = entry
	}
}

// Validate validates struct tags and then the service fields.
func (c *ClientsConfig) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.ServiceConfig.Validate(); err != nil {
		return errors.InvalidConfig(err.Error()).WithCause(err)
	}
	for name, entry := range c.Clients {
		if entry.Retry != nil && entry.Retry.MaxRetries < 0 {
			return errors.InvalidConfig(fmt.Sprintf("clients[%s].retry.max_retries must not be negative", name))
		}
		if err := entry.TLS.Validate(); err != nil {
			return errors.InvalidConfig(fmt.Sprintf("clients[%s].tls: %v", name, err)).WithCause(err)
		}
	}
	return nil
}

// Client returns the entry for name.
func (c *ClientsConfig) Client(name string) (ClientConfig, bool) {
	entry, ok := c.Clients[name]
	return entry, ok
}

// Names returns the entry names in sorted order.
func (c *ClientsConfig) Names() []string {
	names := make([]string, 0, len(c.Clients))
	for name := range c.Clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TransportOptions converts the entry's transport settings to factory
// options. The base address and credential are left to the caller.
func (c ClientConfig) TransportOptions() []httpclient.Option {
	var opts []httpclient.Option
	if c.Timeout > 0 {
		opts = append(opts, httpclient.WithTimeout(c.Timeout))
	}
	if len(c.Headers) > 0 {
		opts = append(opts, httpclient.WithHeaders(c.Headers))
	}
	if c.TLS != nil {
		opts = append(opts, httpclient.WithTLS(c.TLS))
	}
	if c.Retry != nil {
		opts = append(opts, httpclient.WithRetry(*c.Retry))
	}
	if c.CircuitBreaker != nil {
		opts = append(opts, httpclient.WithCircuitBreaker(*c.CircuitBreaker))
	}
	if c.CookieJar {
		opts = append(opts, httpclient.WithCookieJar())
	}
	if c.RequestID {
		opts = append(opts, httpclient.WithRequestID(""))
	}
	if c.Tracing {
		opts = append(opts, httpclient.WithTracing(nil))
	}
	return opts
}

// TokenSupplier returns a supplier reading TokenEnv on every request, or
// nil when no variable is configured.
func (c ClientConfig) TokenSupplier() httpclient.TokenSupplier {
	if c.TokenEnv == "" {
		return nil
	}
	env := c.TokenEnv
	return func(context.Context) (string, error) {
		token, ok := os.LookupEnv(env)
		if !ok || token == "" {
			return "", fmt.Errorf("credential variable %s is not set", env)
		}
		return token, nil
	}
}

// LoadClients loads client definitions for a service, applies defaults and
// validates the result.
func LoadClients(serviceName string, opts ...LoaderOption) (*ClientsConfig, error) {
	cfg := &ClientsConfig{}
	if err := LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = serviceName
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
