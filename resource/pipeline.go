package resource

import (
	"reflect"

	"github.com/kbukum/railskit/di"
	"github.com/kbukum/railskit/keys"
)

// Names of the built-in stages in DefaultContainer.
const (
	StageRootWrappingTransformer  = "railsRootWrappingTransformer"
	StageFieldRenamingTransformer = "railsFieldRenamingTransformer"
	StageFieldRenamingInterceptor = "railsFieldRenamingInterceptor"
	StageRootWrappingInterceptor  = "railsRootWrappingInterceptor"
)

// DefaultRequestTransformers returns the stages used when a Config leaves
// RequestTransformers nil.
func DefaultRequestTransformers() []Stage {
	return []Stage{Named(StageRootWrappingTransformer), Named(StageFieldRenamingTransformer)}
}

// DefaultResponseInterceptors returns the stages used when a Config
// leaves ResponseInterceptors nil.
func DefaultResponseInterceptors() []Stage {
	return []Stage{Named(StageFieldRenamingInterceptor), Named(StageRootWrappingInterceptor)}
}

// RootWrappingTransformer nests data under the class's plural name when
// it is a slice and under its singular name otherwise.
func RootWrappingTransformer(data any, c *Class) any {
	if data != nil && reflect.TypeOf(data).Kind() == reflect.Slice {
		return map[string]any{c.PluralName(): data}
	}
	return map[string]any{c.Name(): data}
}

// FieldRenamingTransformer converts every key to snake_case.
func FieldRenamingTransformer(data any, _ *Class) any {
	return keys.Transform(data, keys.Underscore)
}

// FieldRenamingInterceptor converts every key of the response data to
// camelCase.
func FieldRenamingInterceptor(call Call, _ *Class) Call {
	return Then(call, func(resp *Response) (*Response, error) {
		resp.Data = keys.Transform(resp.Data, keys.Camelize)
		return resp, nil
	})
}

// RootWrappingInterceptor replaces an object holding the singular root
// key with that key's value, or else one holding the plural root key.
// Anything else is left alone.
func RootWrappingInterceptor(call Call, c *Class) Call {
	return Then(call, func(resp *Response) (*Response, error) {
		m, ok := resp.Data.(map[string]any)
		if !ok {
			return resp, nil
		}
		if v, ok := m[c.Name()]; ok {
			resp.Data = v
		} else if v, ok := m[c.PluralName()]; ok {
			resp.Data = v
		}
		return resp, nil
	})
}

// DefaultContainer returns a container holding the built-in stages under
// their Stage* names. Callers may register their own stages on it.
func DefaultContainer() di.Container {
	c := di.NewContainer()
	_ = c.RegisterSingleton(StageRootWrappingTransformer, RequestTransformer(RootWrappingTransformer))
	_ = c.RegisterSingleton(StageFieldRenamingTransformer, RequestTransformer(FieldRenamingTransformer))
	_ = c.RegisterSingleton(StageFieldRenamingInterceptor, ResponseInterceptor(FieldRenamingInterceptor))
	_ = c.RegisterSingleton(StageRootWrappingInterceptor, ResponseInterceptor(RootWrappingInterceptor))
	return c
}
