package typedclient

import (
	"net/http"

	"github.com/kbukum/clientkit/errors"
	"github.com/kbukum/clientkit/httpclient"
	"github.com/kbukum/clientkit/logger"
)

// HandlerChain is the innermost transport of a client type optionally
// wrapped by one authentication layer.
type HandlerChain struct {
	primary func() (http.RoundTripper, error)
	auth    httpclient.Middleware
}

// BuildHandlerChain builds the chain described by s. client names the
// client type in errors and logs.
//
// Both auth suppliers set is an AMBIGUOUS_AUTH error unless
// s.LegacyAuthPrecedence, in which case AuthSupplier wins.
func BuildHandlerChain(client string, s *Settings) (*HandlerChain, error) {
	if s == nil {
		return &HandlerChain{}, nil
	}

	h := &HandlerChain{primary: s.HandlerFactory}
	scheme := s.authScheme()

	switch {
	case s.AuthSupplier != nil && s.ParameterizedAuthSupplier != nil:
		if !s.LegacyAuthPrecedence {
			return nil, errors.AmbiguousAuth(client)
		}
		logger.Get("typedclient").Warn("Both auth suppliers configured, parameterized supplier ignored", logger.Fields(
			logger.FieldClient, client,
		))
		h.auth = httpclient.TokenAuth(s.AuthSupplier, scheme)
	case s.AuthSupplier != nil:
		h.auth = httpclient.TokenAuth(s.AuthSupplier, scheme)
	case s.ParameterizedAuthSupplier != nil:
		h.auth = httpclient.RequestTokenAuth(s.ParameterizedAuthSupplier, scheme)
	}
	return h, nil
}

// HasAuth reports whether the chain carries an authentication layer.
func (h *HandlerChain) HasAuth() bool {
	return h.auth != nil
}

// RoundTripper assembles the chain over base. base is used only when no
// handler factory is configured; factory errors are returned unchanged.
func (h *HandlerChain) RoundTripper(base http.RoundTripper) (http.RoundTripper, error) {
	rt := base
	if h.primary != nil {
		var err error
		if rt, err = h.primary(); err != nil {
			return nil, err
		}
	}
	if rt == nil {
		rt = http.DefaultTransport
	}
	if h.auth != nil {
		rt = h.auth(rt)
	}
	return rt, nil
}

// Options expresses the chain as transport factory options, so the factory
// places it beneath its own retry, breaker and tracing layers.
func (h *HandlerChain) Options() []httpclient.Option {
	var opts []httpclient.Option
	if h.primary != nil {
		opts = append(opts, httpclient.WithPrimaryHandler(h.primary))
	}
	if h.auth != nil {
		opts = append(opts, httpclient.WithHandler(h.auth))
	}
	return opts
}
