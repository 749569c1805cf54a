package di

import (
	"fmt"

	"github.com/kbukum/clientkit/errors"
)

// Provide adapts a typed constructor to a Constructor.
func Provide[T any](fn func(r Resolver) (T, error)) Constructor {
	return func(r Resolver) (any, error) {
		return fn(r)
	}
}

// MustResolve resolves a component with type safety, panics on error.
//
// Example:
//
//	factory := di.MustResolve[*httpclient.Factory](c, di.Keys.TransportFactory)
func MustResolve[T any](r Resolver, key string) T {
	result, err := Resolve[T](r, key)
	if err != nil {
		panic(fmt.Sprintf("di: %v", err))
	}
	return result
}

// Resolve resolves a component with type safety, returns error on failure.
// Constructor errors are returned unchanged.
func Resolve[T any](r Resolver, key string) (T, error) {
	var zero T
	instance, err := r.Resolve(key)
	if err != nil {
		return zero, err
	}
	result, ok := instance.(T)
	if !ok {
		return zero, errors.TypeMismatch(key, instance, zero)
	}
	return result, nil
}

// TryResolve resolves an optional component. It returns false when the key
// is not registered; any other failure is returned as an error.
//
// Example:
//
//	if cfg, ok, err := di.TryResolve[*config.ClientsConfig](r, di.Keys.Config); ok {
//	    ...
//	}
func TryResolve[T any](r Resolver, key string) (T, bool, error) {
	var zero T
	result, err := Resolve[T](r, key)
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok &&
			appErr.Code == errors.ErrCodeNotRegistered && appErr.Details["key"] == key {
			return zero, false, nil
		}
		return zero, false, err
	}
	return result, true, nil
}
