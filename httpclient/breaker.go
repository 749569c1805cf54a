package httpclient

import (
	"errors"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/kbukum/clientkit/logger"
)

// CircuitBreakerConfig configures the circuit breaker layer.
type CircuitBreakerConfig struct {
	// MaxFailures is the number of consecutive failures that opens the circuit.
	MaxFailures uint32 `yaml:"max_failures" mapstructure:"max_failures"`
	// Timeout is how long the circuit stays open before probing.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// HalfOpenRequests is the number of probe requests allowed when half-open.
	HalfOpenRequests uint32 `yaml:"half_open_requests" mapstructure:"half_open_requests"`
	// Interval clears failure counts while closed. Zero never clears.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// DefaultCircuitBreakerConfig returns a default circuit breaker config.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		MaxFailures:      5,
		Timeout:          60 * time.Second,
		HalfOpenRequests: 1,
	}
}

// ApplyDefaults fills in zero-value fields.
func (c *CircuitBreakerConfig) ApplyDefaults() {
	d := DefaultCircuitBreakerConfig()
	if c.MaxFailures == 0 {
		c.MaxFailures = d.MaxFailures
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.HalfOpenRequests == 0 {
		c.HalfOpenRequests = d.HalfOpenRequests
	}
}

// errServerFailure marks a 5xx response as a breaker failure.
var errServerFailure = errors.New("httpclient: server failure")

// breakerTransport counts transport errors and 5xx responses as failures and
// rejects requests while the circuit is open.
type breakerTransport struct {
	next http.RoundTripper
	cb   *gobreaker.CircuitBreaker
}

func newBreakerTransport(name string, cfg CircuitBreakerConfig, next http.RoundTripper) *breakerTransport {
	log := logger.Get("httpclient")
	maxFailures := cfg.MaxFailures

	return &breakerTransport{
		next: next,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: cfg.HalfOpenRequests,
			Interval:    cfg.Interval,
			Timeout:     cfg.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= maxFailures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn("Circuit breaker state changed", logger.Fields(
					logger.FieldTransport, name,
					"from", from.String(),
					"to", to.String(),
				))
			},
		}),
	}
}

// RoundTrip implements http.RoundTripper.
func (t *breakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	result, err := t.cb.Execute(func() (interface{}, error) {
		resp, err := t.next.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return resp, errServerFailure
		}
		return resp, nil
	})
	if err != nil && !errors.Is(err, errServerFailure) {
		return nil, err
	}
	return result.(*http.Response), nil
}

func (t *breakerTransport) available() bool {
	return t.cb.State() != gobreaker.StateOpen
}
