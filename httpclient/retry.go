package httpclient

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/kbukum/clientkit/logger"
)

// RetryConfig configures the retrying layer.
type RetryConfig struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int `yaml:"max_retries" mapstructure:"max_retries"`
	// WaitMin is the minimum backoff between attempts.
	WaitMin time.Duration `yaml:"wait_min" mapstructure:"wait_min"`
	// WaitMax is the maximum backoff between attempts.
	WaitMax time.Duration `yaml:"wait_max" mapstructure:"wait_max"`
}

// DefaultRetryConfig returns a retry config suitable for HTTP APIs.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		WaitMin:    100 * time.Millisecond,
		WaitMax:    2 * time.Second,
	}
}

// ApplyDefaults fills in zero-value backoff bounds.
func (c *RetryConfig) ApplyDefaults() {
	d := DefaultRetryConfig()
	if c.WaitMin <= 0 {
		c.WaitMin = d.WaitMin
	}
	if c.WaitMax < c.WaitMin {
		c.WaitMax = c.WaitMin
	}
}

// newRetryTransport wraps next with go-retryablehttp. Connection errors and
// 5xx/429 responses are retried; the last response is returned as-is once
// retries are exhausted so status classification still applies.
func newRetryTransport(name string, cfg RetryConfig, next http.RoundTripper) http.RoundTripper {
	log := logger.Get("httpclient").WithFields(logger.Fields(logger.FieldTransport, name))

	rc := retryablehttp.NewClient()
	rc.HTTPClient = &http.Client{Transport: next}
	rc.RetryMax = cfg.MaxRetries
	rc.RetryWaitMin = cfg.WaitMin
	rc.RetryWaitMax = cfg.WaitMax
	rc.Logger = retryLogger{log: log}
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt > 0 {
			log.Debug("Retrying request", logger.Fields(
				"method", req.Method,
				"url", req.URL.String(),
				logger.FieldAttempt, attempt,
			))
		}
	}

	return &retryablehttp.RoundTripper{Client: rc}
}

// retryLogger adapts the logger to retryablehttp.LeveledLogger.
type retryLogger struct {
	log *logger.Logger
}

var _ retryablehttp.LeveledLogger = retryLogger{}

// Error is logged at warn: the final failure reaches the caller as an error.
func (l retryLogger) Error(msg string, kv ...interface{}) { l.log.Warn(msg, logger.Fields(kv...)) }
func (l retryLogger) Warn(msg string, kv ...interface{})  { l.log.Warn(msg, logger.Fields(kv...)) }
func (l retryLogger) Info(msg string, kv ...interface{})  { l.log.Debug(msg, logger.Fields(kv...)) }
func (l retryLogger) Debug(msg string, kv ...interface{}) { l.log.Debug(msg, logger.Fields(kv...)) }
