package resource

import (
	"context"
	"fmt"
)

// Response is the decoded result of one HTTP call as it moves through
// the response interceptors.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Headers are the response headers, first value per name.
	Headers map[string]string
	// Method and URL identify the request.
	Method string
	URL    string
	// Data is the decoded body. Interceptors replace it as they go.
	Data any
	// OriginalData is Data as received, before any interceptor ran. Only
	// set on instance operations.
	OriginalData any
}

// Call produces a pending Response. Interceptors wrap one Call in another.
type Call func(ctx context.Context) (*Response, error)

// RequestTransformer shapes outbound data. It receives data owned by the
// pipeline and returns the value to hand to the next stage.
type RequestTransformer func(data any, c *Class) any

// ResponseInterceptor wraps a pending response.
type ResponseInterceptor func(call Call, c *Class) Call

// Then returns a Call that runs call and, when it succeeds, fn on its
// response. Errors pass through untouched.
func Then(call Call, fn func(*Response) (*Response, error)) Call {
	return func(ctx context.Context) (*Response, error) {
		resp, err := call(ctx)
		if err != nil {
			return resp, err
		}
		return fn(resp)
	}
}

// Resolver produces pipeline stages from their declarations.
// di.Container satisfies it.
type Resolver interface {
	Resolve(name string) (any, error)
	Invoke(factory any) (any, error)
}

type stageKind int

const (
	stageNamed stageKind = iota + 1
	stageInline
	stageTransformer
	stageInterceptor
)

// Stage declares one pipeline stage. The zero Stage is invalid.
type Stage struct {
	kind        stageKind
	name        string
	factory     any
	transformer RequestTransformer
	interceptor ResponseInterceptor
}

// Named declares a stage resolved by name.
func Named(name string) Stage {
	return Stage{kind: stageNamed, name: name}
}

// Inline declares a stage built by calling factory through the
// Resolver. factory follows the di constructor shapes.
func Inline(factory any) Stage {
	return Stage{kind: stageInline, factory: factory}
}

// Transformer declares an already built request transformer.
func Transformer(fn RequestTransformer) Stage {
	return Stage{kind: stageTransformer, transformer: fn}
}

// Interceptor declares an already built response interceptor.
func Interceptor(fn ResponseInterceptor) Stage {
	return Stage{kind: stageInterceptor, interceptor: fn}
}

// Name returns the id of a Named stage, or "".
func (s Stage) Name() string {
	return s.name
}

func (s Stage) String() string {
	switch s.kind {
	case stageNamed:
		return s.name
	case stageInline:
		return fmt.Sprintf("inline(%T)", s.factory)
	case stageTransformer:
		return "transformer"
	case stageInterceptor:
		return "interceptor"
	default:
		return "invalid"
	}
}

// NamedStages declares one Named stage per id. A nil slice stays nil.
func NamedStages(names []string) []Stage {
	if names == nil {
		return nil
	}
	stages := make([]Stage, len(names))
	for i, name := range names {
		stages[i] = Named(name)
	}
	return stages
}
