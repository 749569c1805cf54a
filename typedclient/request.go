package typedclient

import (
	"github.com/kbukum/clientkit/di"
	"github.com/kbukum/clientkit/httpclient"
	"github.com/kbukum/clientkit/httpclient/rest"
)

// RequestBuilder binds transports to the serializer of one client type.
// One RequestBuilder is registered per client type.
type RequestBuilder struct {
	serializer rest.Serializer
}

// NewRequestBuilder creates a RequestBuilder. A nil serializer uses JSON.
func NewRequestBuilder(s rest.Serializer) *RequestBuilder {
	if s == nil {
		s = rest.DefaultSerializer
	}
	return &RequestBuilder{serializer: s}
}

// Serializer returns the body serializer.
func (b *RequestBuilder) Serializer() rest.Serializer {
	return b.serializer
}

// Bind returns a REST client issuing requests over t.
func (b *RequestBuilder) Bind(t *httpclient.Client) *rest.Client {
	return rest.NewFromClient(t, rest.WithSerializer(b.serializer))
}

// ProxyFunc builds a typed client of type T over a bound REST client. The
// resolver is scoped to the resolution in progress and must not be
// retained.
type ProxyFunc[T any] func(c *rest.Client, r di.Resolver) (T, error)
