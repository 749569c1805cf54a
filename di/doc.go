// Package di provides the string-keyed dependency container clientkit
// registers typed clients into.
//
// It supports lazy singletons (constructed at most once successfully),
// transients (constructed on every resolution), and pre-built instances,
// with type-safe resolution through generics. Constructors receive a
// Resolver scoped to the current resolution chain, so a constructor that
// re-enters its own resolution fails with a circular dependency error
// instead of deadlocking.
//
// # Registration
//
//	c := di.NewContainer()
//	_ = c.RegisterSingleton("clock", di.Provide(func(di.Resolver) (Clock, error) {
//	    return systemClock{}, nil
//	}))
//
// # Resolution
//
//	clock := di.MustResolve[Clock](c, "clock")
package di
