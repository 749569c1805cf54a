package httpclient

import (
	stderrors "errors"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/kbukum/clientkit/errors"
	"github.com/kbukum/clientkit/logger"
)

// ErrFactoryStopped is the cause of CreateClient errors after Stop.
var ErrFactoryStopped = stderrors.New("httpclient: factory stopped")

// Factory creates clients for named transports. Options are collected per
// name; the handler chain for a name is built on its first CreateClient and
// pooled, so all clients of that name share connections. Factories are safe
// for concurrent use.
type Factory struct {
	mu       sync.Mutex
	defaults []Option
	configs  map[string][]Option
	pools    map[string]*poolEntry
	stopped  bool
}

type poolEntry struct {
	mu    sync.Mutex
	pool  *pool
	ready atomic.Bool
}

// NewFactory creates a factory whose transports start from defaults.
func NewFactory(defaults ...Option) *Factory {
	return &Factory{
		defaults: defaults,
		configs:  make(map[string][]Option),
		pools:    make(map[string]*poolEntry),
	}
}

// Configure appends options for name. Options added after the chain for
// name is built have no effect on it. A Configure racing the first
// CreateClient for name waits for that build to finish.
func (f *Factory) Configure(name string, opts ...Option) {
	e := f.entry(name)

	// Lock order is entry, then factory; build takes f.mu under e.mu.
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.pool != nil {
		logger.Get("httpclient").Debug("Transport already built, configuration ignored", logger.Fields(
			logger.FieldTransport, name,
		))
		return
	}

	f.mu.Lock()
	f.configs[name] = append(f.configs[name], opts...)
	f.mu.Unlock()
}

// CreateClient returns a new Client for name over the pooled handler chain.
// opts are applied after the configured options, and only when the chain is
// built by this call. A failed build is not cached. Errors from a primary
// handler factory are returned unchanged. A stopped factory returns a
// TRANSPORT_CREATION error wrapping ErrFactoryStopped until Start.
func (f *Factory) CreateClient(name string, opts ...Option) (*Client, error) {
	f.mu.Lock()
	stopped := f.stopped
	f.mu.Unlock()
	if stopped {
		return nil, errors.TransportCreation(name, ErrFactoryStopped)
	}

	e := f.entry(name)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.pool == nil {
		p, err := f.build(name, opts)
		if err != nil {
			return nil, err
		}
		e.pool = p
		e.ready.Store(true)
	}
	return e.pool.newClient(), nil
}

func (f *Factory) entry(name string) *poolEntry {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, ok := f.pools[name]
	if !ok {
		e = &poolEntry{}
		f.pools[name] = e
	}
	return e
}

func (f *Factory) build(name string, extra []Option) (*pool, error) {
	f.mu.Lock()
	cfg := Config{Name: name}
	for _, opt := range f.defaults {
		opt(&cfg)
	}
	for _, opt := range f.configs[name] {
		opt(&cfg)
	}
	f.mu.Unlock()

	for _, opt := range extra {
		opt(&cfg)
	}
	cfg.Name = name

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.InvalidConfig(err.Error()).WithCause(err)
	}
	return buildPool(cfg)
}

// Names returns the names with a built transport, sorted.
func (f *Factory) Names() []string {
	f.mu.Lock()
	entries := make(map[string]*poolEntry, len(f.pools))
	for name, e := range f.pools {
		entries[name] = e
	}
	f.mu.Unlock()

	names := make([]string, 0, len(entries))
	for name, e := range entries {
		if e.built() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// CloseIdleConnections releases idle connections of every built transport.
func (f *Factory) CloseIdleConnections() {
	for _, p := range f.builtPools() {
		p.closeIdleConnections()
	}
}

func (f *Factory) builtPools() []*pool {
	f.mu.Lock()
	entries := make([]*poolEntry, 0, len(f.pools))
	for _, e := range f.pools {
		entries = append(entries, e)
	}
	f.mu.Unlock()

	pools := make([]*pool, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if e.pool != nil {
			pools = append(pools, e.pool)
		}
		e.mu.Unlock()
	}
	return pools
}

func (e *poolEntry) built() bool {
	return e.ready.Load()
}
