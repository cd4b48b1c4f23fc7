// Package resource maps Rails-style REST endpoints onto client-side
// instances.
//
// A Factory turns a Config into a *Class. The Class owns a URL builder,
// default HTTP settings and two ordered pipelines: request transformers
// that shape outbound data (root wrapping, then snake_case keys) and
// response interceptors that shape inbound data (camelCase keys, then
// root unwrapping).
//
//	people, err := resource.NewFactory(adapter).Define(resource.Config{
//		Name: "person",
//		URL:  "/people/{{id}}",
//	})
//	res, err := people.Get(ctx, 5, nil)
//	ana := res.Instance()
//	ana.Set("firstName", "Ana")
//	_, err = ana.Update(ctx)
//
// Pipeline stages are declared with Named, Inline, Transformer and
// Interceptor. Named and Inline stages are produced by a Resolver at
// definition time; DefaultContainer registers the four built-in stages.
package resource
