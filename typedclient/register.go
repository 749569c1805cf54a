package typedclient

import (
	"fmt"
	"reflect"

	"github.com/kbukum/clientkit/di"
	"github.com/kbukum/clientkit/errors"
	"github.com/kbukum/clientkit/httpclient"
	"github.com/kbukum/clientkit/httpclient/rest"
	"github.com/kbukum/clientkit/logger"
)

// Registration describes a client type for the non-generic Register path.
type Registration struct {
	// Type is the client type, usually an interface type.
	Type reflect.Type
	// Settings provides the type's Settings. Nil means zero Settings.
	Settings SettingsProvider
	// New builds the client. Its result must be assignable to Type.
	New func(c *rest.Client, r di.Resolver) (any, error)
}

// Register adds everything needed to resolve reg.Type from c: the settings
// singleton, the request builder singleton and a transient client binding
// under ClientKey(reg.Type). It also registers a transport factory and a
// registry when c has none.
func Register(c di.Container, reg Registration) (*Builder, error) {
	if c == nil {
		return nil, errors.InvalidArgument("container", "must not be nil")
	}
	if reg.Type == nil {
		return nil, errors.InvalidArgument("type", "must not be nil")
	}
	if reg.New == nil {
		return nil, errors.InvalidArgument("constructor", "must not be nil")
	}

	ensureInfrastructure(c)

	b := &binding{
		typ:         reg.Type,
		client:      TypeKey(reg.Type),
		settingsKey: SettingsKey(reg.Type),
		builderKey:  RequestBuilderKey(reg.Type),
		newClient:   reg.New,
	}

	if err := c.RegisterSingleton(b.settingsKey, settingsConstructor(reg.Settings)); err != nil {
		return nil, err
	}
	if err := c.RegisterSingleton(b.builderKey, b.newRequestBuilder); err != nil {
		return nil, err
	}
	key := ClientKey(reg.Type)
	if err := c.RegisterTransient(key, b.resolve); err != nil {
		return nil, err
	}

	logger.Get("typedclient").Debug("Client registered", logger.Fields(
		logger.FieldClient, b.client,
		logger.FieldKey, key,
	))
	return &Builder{container: c, binding: b, key: key}, nil
}

// AddClient registers client type T with static settings. Nil settings
// are zero Settings.
func AddClient[T any](c di.Container, settings *Settings, newClient ProxyFunc[T]) (*Builder, error) {
	return AddClientFunc(c, StaticSettings(settings), newClient)
}

// AddClientFunc registers client type T with a settings provider. The
// provider runs at most once successfully, on the first resolution that
// needs the settings.
func AddClientFunc[T any](c di.Container, provider SettingsProvider, newClient ProxyFunc[T]) (*Builder, error) {
	if newClient == nil {
		return nil, errors.InvalidArgument("constructor", "must not be nil")
	}
	return Register(c, Registration{
		Type:     reflect.TypeFor[T](),
		Settings: provider,
		New: func(rc *rest.Client, r di.Resolver) (any, error) {
			return newClient(rc, r)
		},
	})
}

// Resolve resolves a new client of type T from r.
func Resolve[T any](r di.Resolver) (T, error) {
	return di.Resolve[T](r, ClientKey(reflect.TypeFor[T]()))
}

// MustResolve is Resolve that panics on error.
func MustResolve[T any](r di.Resolver) T {
	client, err := Resolve[T](r)
	if err != nil {
		panic(fmt.Sprintf("typedclient: %v", err))
	}
	return client
}

// ResolveSettings returns the resolved Settings of client type T.
func ResolveSettings[T any](r di.Resolver) (*Settings, error) {
	return di.Resolve[*Settings](r, SettingsKey(reflect.TypeFor[T]()))
}

// Builder is the handle returned by registration.
type Builder struct {
	container di.Container
	binding   *binding
	key       string
}

// Key returns the container key of the client type.
func (b *Builder) Key() string {
	return b.key
}

// Type returns the client type.
func (b *Builder) Type() reflect.Type {
	return b.binding.typ
}

// TransportName returns the transport name of the client type. It resolves
// the settings, running the provider if it has not run yet.
func (b *Builder) TransportName() (string, error) {
	s, err := di.Resolve[*Settings](b.container, b.binding.settingsKey)
	if err != nil {
		return "", err
	}
	return b.binding.transportName(s), nil
}

// ConfigureTransport adds transport factory options for the client's
// transport name. They have no effect once that transport exists.
func (b *Builder) ConfigureTransport(opts ...httpclient.Option) error {
	name, err := b.TransportName()
	if err != nil {
		return err
	}
	factory, err := di.Resolve[*httpclient.Factory](b.container, di.Keys.TransportFactory)
	if err != nil {
		return err
	}
	factory.Configure(name, opts...)
	return nil
}
