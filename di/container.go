package di

import (
	"slices"
	"sort"
	"sync"

	"github.com/kbukum/clientkit/errors"
	"github.com/kbukum/clientkit/logger"
)

// Lifetime determines how a component is resolved.
type Lifetime int

const (
	Singleton Lifetime = iota // Constructed on first resolve, then cached
	Transient                 // Constructed on every resolve
	Instance                  // Pre-created instance
)

// String returns the lifetime name.
func (l Lifetime) String() string {
	switch l {
	case Singleton:
		return "singleton"
	case Transient:
		return "transient"
	case Instance:
		return "instance"
	default:
		return "unknown"
	}
}

// Resolver resolves components by key.
type Resolver interface {
	Resolve(key string) (any, error)
}

// Constructor builds a component. The Resolver it receives is scoped to the
// resolution in progress and must not be retained after the call returns.
type Constructor func(r Resolver) (any, error)

// Container defines the interface for a dependency injection container.
type Container interface {
	Resolver

	// RegisterSingleton registers a lazily constructed, cached component.
	// The constructor runs at most once successfully; a failed construction
	// is not cached and the next resolution calls it again.
	RegisterSingleton(key string, ctor Constructor) error
	// RegisterTransient registers a component constructed on every resolve.
	RegisterTransient(key string, ctor Constructor) error
	// RegisterInstance registers a pre-created instance.
	RegisterInstance(key string, instance any) error
	// TryRegisterSingleton registers instance only if key is not yet
	// registered and reports whether it did.
	TryRegisterSingleton(key string, instance any) bool

	IsRegistered(key string) bool
	Registrations() []RegistrationInfo
	Close() error
}

// RegistrationInfo describes a registered component for introspection.
type RegistrationInfo struct {
	Key         string
	Lifetime    Lifetime
	Initialized bool
}

// UnifiedContainer is the default Container implementation.
type UnifiedContainer struct {
	components map[string]*registration
	mutex      sync.RWMutex
}

type registration struct {
	key         string
	constructor Constructor
	lifetime    Lifetime
	instance    any
	initialized bool
	mutex       sync.RWMutex
}

var _ Container = (*UnifiedContainer)(nil)

// NewContainer creates an empty container.
func NewContainer() *UnifiedContainer {
	return &UnifiedContainer{
		components: make(map[string]*registration),
	}
}

// RegisterSingleton registers a lazily constructed singleton. Registering
// the same key again replaces the previous registration.
func (c *UnifiedContainer) RegisterSingleton(key string, ctor Constructor) error {
	return c.register(key, ctor, Singleton)
}

// RegisterTransient registers a component constructed on every resolve.
func (c *UnifiedContainer) RegisterTransient(key string, ctor Constructor) error {
	return c.register(key, ctor, Transient)
}

// RegisterInstance registers a pre-created instance.
func (c *UnifiedContainer) RegisterInstance(key string, instance any) error {
	if key == "" {
		return errors.InvalidArgument("key", "must not be empty")
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.components[key] = &registration{
		key:         key,
		lifetime:    Instance,
		instance:    instance,
		initialized: true,
	}
	return nil
}

// TryRegisterSingleton registers instance under key unless key is already
// registered.
func (c *UnifiedContainer) TryRegisterSingleton(key string, instance any) bool {
	if key == "" {
		return false
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, exists := c.components[key]; exists {
		return false
	}
	c.components[key] = &registration{
		key:         key,
		lifetime:    Instance,
		instance:    instance,
		initialized: true,
	}
	return true
}

func (c *UnifiedContainer) register(key string, ctor Constructor, lifetime Lifetime) error {
	if key == "" {
		return errors.InvalidArgument("key", "must not be empty")
	}
	if ctor == nil {
		return errors.InvalidArgument("constructor", "must not be nil")
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, exists := c.components[key]; exists {
		logger.Debug("Replacing component registration", logger.Fields(logger.FieldKey, key))
	}
	c.components[key] = &registration{
		key:         key,
		constructor: ctor,
		lifetime:    lifetime,
	}
	return nil
}

// IsRegistered reports whether key has a registration.
func (c *UnifiedContainer) IsRegistered(key string) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	_, ok := c.components[key]
	return ok
}

// Resolve gets a component instance.
func (c *UnifiedContainer) Resolve(key string) (any, error) {
	return c.resolve(key, nil)
}

func (c *UnifiedContainer) resolve(key string, chain []string) (any, error) {
	if slices.Contains(chain, key) {
		return nil, errors.CircularDependency(append(slices.Clone(chain), key))
	}

	c.mutex.RLock()
	reg, exists := c.components[key]
	c.mutex.RUnlock()

	if !exists {
		return nil, errors.NotRegistered(key)
	}

	switch reg.lifetime {
	case Instance:
		return reg.instance, nil
	case Transient:
		return c.construct(reg, chain)
	default:
		return c.resolveSingleton(reg, chain)
	}
}

func (c *UnifiedContainer) resolveSingleton(reg *registration, chain []string) (any, error) {
	reg.mutex.RLock()
	if reg.initialized {
		instance := reg.instance
		reg.mutex.RUnlock()
		return instance, nil
	}
	reg.mutex.RUnlock()

	reg.mutex.Lock()
	defer reg.mutex.Unlock()

	// Double-check pattern
	if reg.initialized {
		return reg.instance, nil
	}

	instance, err := c.construct(reg, chain)
	if err != nil {
		logger.Debug("Singleton construction failed", logger.Fields(
			logger.FieldKey, reg.key,
			logger.FieldError, err.Error(),
		))
		return nil, err
	}

	reg.instance = instance
	reg.initialized = true
	return instance, nil
}

// construct runs the constructor with a resolver scoped to the extended
// chain. Panics are converted to errors so singleton locks are released.
func (c *UnifiedContainer) construct(reg *registration, chain []string) (instance any, err error) {
	defer func() {
		if r := recover(); r != nil {
			instance = nil
			err = errors.ConstructorPanic(reg.key, r)
		}
	}()

	scoped := &scope{
		container: c,
		chain:     append(slices.Clone(chain), reg.key),
	}
	return reg.constructor(scoped)
}

// scope is the Resolver handed to constructors.
type scope struct {
	container *UnifiedContainer
	chain     []string
}

func (s *scope) Resolve(key string) (any, error) {
	return s.container.resolve(key, s.chain)
}

// Registrations returns info about all registered components sorted by key.
func (c *UnifiedContainer) Registrations() []RegistrationInfo {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	result := make([]RegistrationInfo, 0, len(c.components))
	for key, reg := range c.components {
		reg.mutex.RLock()
		result = append(result, RegistrationInfo{
			Key:         key,
			Lifetime:    reg.lifetime,
			Initialized: reg.initialized,
		})
		reg.mutex.RUnlock()
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result
}

// Close closes every constructed singleton and instance implementing
// io.Closer. Transients are owned by their callers.
func (c *UnifiedContainer) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var firstErr error
	for _, reg := range c.components {
		if reg.lifetime == Transient || !reg.initialized || reg.instance == nil {
			continue
		}
		closer, ok := reg.instance.(interface{ Close() error })
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			logger.Warn("Component close failed", logger.Fields(
				logger.FieldKey, reg.key,
				logger.FieldError, err.Error(),
			))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
