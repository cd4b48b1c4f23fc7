// Package di provides the dependency container that railskit uses to turn
// named pipeline stages into callable functions.
//
// It supports eager, lazy, and singleton registration with type-safe
// resolution using Go generics.
//
// # Registration
//
//	c := di.NewContainer()
//	c.Register("railsRootWrappingTransformer", func() resource.RequestTransformer {
//	    return resource.RootWrappingTransformer
//	})
//
// # Resolution
//
//	stage, err := c.Resolve("railsRootWrappingTransformer")
//	stage, err = c.Invoke(func(c di.Container) (resource.ResponseInterceptor, error) { ... })
package di
