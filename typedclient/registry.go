package typedclient

import (
	"net/url"
	"sort"
	"sync"

	"github.com/kbukum/clientkit/di"
	"github.com/kbukum/clientkit/errors"
	"github.com/kbukum/clientkit/httpclient"
	"github.com/kbukum/clientkit/logger"
)

// Registry maps transport names to shared transports. An entry is created
// once and never replaced or removed. Registries are safe for concurrent
// use; each container owns its own.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*registryEntry
}

type registryEntry struct {
	mu     sync.Mutex
	client *httpclient.Client
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*registryEntry)}
}

// GetOrCreate returns the transport stored for name, calling create to make
// it if there is none. Concurrent first calls for one name run create once;
// the others wait and receive the stored transport. created reports whether
// this call stored it. A failing create stores nothing.
func (r *Registry) GetOrCreate(name string, create func() (*httpclient.Client, error)) (client *httpclient.Client, created bool, err error) {
	e := r.entry(name)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.client != nil {
		return e.client, false, nil
	}
	c, err := create()
	if err != nil {
		return nil, false, err
	}
	e.client = c
	return c, true, nil
}

func (r *Registry) entry(name string) *registryEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	if !ok {
		e = &registryEntry{}
		r.entries[name] = e
	}
	return e
}

// Get returns the transport stored for name.
func (r *Registry) Get(name string) (*httpclient.Client, bool) {
	r.mu.Lock()
	e, ok := r.entries[name]
	r.mu.Unlock()
	if !ok {
		return nil, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.client, e.client != nil
}

// AssignBaseAddress sets the base address of t if it has none, or
// unconditionally when overwrite is true. It reports whether the address
// was changed.
func (r *Registry) AssignBaseAddress(t *httpclient.Client, addr *url.URL, overwrite bool) bool {
	if t == nil || addr == nil {
		return false
	}
	if t.SetBaseURL(addr, overwrite) {
		return true
	}
	if current := t.BaseURL(); current != nil && current.String() != addr.String() {
		logger.Get("typedclient").Debug("Base address already set, keeping first", logger.Fields(
			logger.FieldTransport, t.Name(),
			logger.FieldBaseAddress, current.String(),
			"ignored", addr.String(),
		))
	}
	return false
}

// Names returns the names with a stored transport, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	entries := make(map[string]*registryEntry, len(r.entries))
	for name, e := range r.entries {
		entries[name] = e
	}
	r.mu.Unlock()

	names := make([]string, 0, len(entries))
	for name, e := range entries {
		e.mu.Lock()
		if e.client != nil {
			names = append(names, name)
		}
		e.mu.Unlock()
	}
	sort.Strings(names)
	return names
}

// Len returns the number of stored transports.
func (r *Registry) Len() int {
	return len(r.Names())
}

// Close releases idle connections of every stored transport. Entries stay
// in place.
func (r *Registry) Close() error {
	for _, name := range r.Names() {
		if c, ok := r.Get(name); ok {
			c.CloseIdleConnections()
		}
	}
	return nil
}

// UseRegistry makes c share transports through r instead of the registry
// it would otherwise create. Call it before resolving any client.
func UseRegistry(c di.Container, r *Registry) error {
	if c == nil {
		return errors.InvalidArgument("container", "must not be nil")
	}
	if r == nil {
		return errors.InvalidArgument("registry", "must not be nil")
	}
	return c.RegisterInstance(di.Keys.Registry, r)
}

// ensureInfrastructure registers the transport factory and registry c
// lacks.
func ensureInfrastructure(c di.Container) {
	c.TryRegisterSingleton(di.Keys.TransportFactory, httpclient.NewFactory())
	c.TryRegisterSingleton(di.Keys.Registry, NewRegistry())
}
