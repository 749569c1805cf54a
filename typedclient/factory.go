package typedclient

import (
	"context"
	"fmt"
	"reflect"
	"sync/atomic"

	"github.com/kbukum/clientkit/di"
	"github.com/kbukum/clientkit/errors"
	"github.com/kbukum/clientkit/httpclient"
	"github.com/kbukum/clientkit/httpclient/rest"
	"github.com/kbukum/clientkit/logger"
	"github.com/kbukum/clientkit/observability"
)

// binding ties a client type to its constructor and container keys.
type binding struct {
	typ         reflect.Type
	client      string
	settingsKey string
	builderKey  string
	newClient   func(c *rest.Client, r di.Resolver) (any, error)

	name atomic.Pointer[string]
}

// transportName returns the transport name for s, computed once.
func (b *binding) transportName(s *Settings) string {
	if name := b.name.Load(); name != nil {
		return *name
	}
	name := ResolveName(b.typ, s)
	b.name.CompareAndSwap(nil, &name)
	return *b.name.Load()
}

func (b *binding) newRequestBuilder(r di.Resolver) (any, error) {
	s, err := di.Resolve[*Settings](r, b.settingsKey)
	if err != nil {
		return nil, err
	}
	return NewRequestBuilder(s.serializer()), nil
}

// resolve produces a new client: settings, transport, request builder,
// then the user constructor.
func (b *binding) resolve(r di.Resolver) (any, error) {
	ctx := context.Background()
	metrics := resolveMetrics(r)

	client, transport, err := b.build(r, metrics)
	if err != nil {
		metrics.ResolveFailed(ctx, b.client)
		return nil, err
	}
	metrics.ClientResolved(ctx, b.client, transport)
	return client, nil
}

func (b *binding) build(r di.Resolver, metrics *observability.ClientMetrics) (any, string, error) {
	s, err := di.Resolve[*Settings](r, b.settingsKey)
	if err != nil {
		return nil, "", err
	}
	name := b.transportName(s)

	t, err := b.transport(r, s, name, metrics)
	if err != nil {
		return nil, name, err
	}

	rb, err := di.Resolve[*RequestBuilder](r, b.builderKey)
	if err != nil {
		return nil, name, err
	}

	client, err := b.newClient(rb.Bind(t), r)
	if err != nil {
		return nil, name, err
	}
	if err := b.checkType(client); err != nil {
		return nil, name, err
	}
	return client, name, nil
}

// transport returns the transport for s: the registry's shared one for an
// explicit name, otherwise a fresh client over the type's own pool.
func (b *binding) transport(r di.Resolver, s *Settings, name string, metrics *observability.ClientMetrics) (*httpclient.Client, error) {
	chain, err := BuildHandlerChain(b.client, s)
	if err != nil {
		return nil, err
	}
	factory, err := di.Resolve[*httpclient.Factory](r, di.Keys.TransportFactory)
	if err != nil {
		return nil, err
	}
	opts := append(chain.Options(), s.TransportOptions...)

	log := logger.Get("typedclient")

	if s.TransportName == "" {
		t, err := factory.CreateClient(name, opts...)
		if err != nil {
			return nil, err
		}
		if s.BaseAddress != nil {
			t.SetBaseURL(s.BaseAddress, true)
		}
		return t, nil
	}

	registry, err := di.Resolve[*Registry](r, di.Keys.Registry)
	if err != nil {
		return nil, err
	}
	// The creator's base address is set before the transport is stored, so
	// no reuser can observe it unset.
	t, created, err := registry.GetOrCreate(name, func() (*httpclient.Client, error) {
		t, err := factory.CreateClient(name, opts...)
		if err != nil {
			return nil, err
		}
		if s.BaseAddress != nil {
			t.SetBaseURL(s.BaseAddress, s.OverwriteBaseAddress)
		}
		return t, nil
	})
	if err != nil {
		return nil, err
	}

	if !created {
		metrics.TransportReused(context.Background(), name)
		registry.AssignBaseAddress(t, s.BaseAddress, s.OverwriteBaseAddress)
		return t, nil
	}

	metrics.TransportCreated(context.Background(), name)
	log.Debug("Shared transport created", logger.Fields(
		logger.FieldClient, b.client,
		logger.FieldTransport, name,
	))
	return t, nil
}

// checkType verifies the constructor result is a b.typ.
func (b *binding) checkType(client any) error {
	got := reflect.TypeOf(client)
	if got != nil && got.AssignableTo(b.typ) {
		return nil
	}
	return errors.New(errors.ErrCodeTypeMismatch,
		fmt.Sprintf("client constructor for %s returned %v", b.client, got)).
		WithDetail("key", ClientKey(b.typ))
}

// resolveMetrics returns the optional wiring metrics registered in r.
func resolveMetrics(r di.Resolver) *observability.ClientMetrics {
	m, ok, err := di.TryResolve[*observability.ClientMetrics](r, di.Keys.Metrics)
	if !ok || err != nil {
		return nil
	}
	return m
}

// UseMetrics records wiring metrics for every client resolved from c.
func UseMetrics(c di.Container, m *observability.ClientMetrics) error {
	if c == nil {
		return errors.InvalidArgument("container", "must not be nil")
	}
	if m == nil {
		return errors.InvalidArgument("metrics", "must not be nil")
	}
	return c.RegisterInstance(di.Keys.Metrics, m)
}
