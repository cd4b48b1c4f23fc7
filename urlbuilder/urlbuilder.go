// Package urlbuilder turns resource URL templates into functions that
// produce concrete URLs from a parameter map.
package urlbuilder

import (
	"strings"

	"github.com/kbukum/railskit/interpolate"
)

// DefaultMemberSuffix is appended to templates that carry no tokens, so
// a collection URL also yields member URLs.
const DefaultMemberSuffix = "/{{id}}"

// Func builds a URL from parameters.
type Func func(params map[string]any) string

// Build compiles template into a Func. A template without "{{" gets
// DefaultMemberSuffix appended. The built function strips exactly one
// trailing "/" from its result.
func Build(template string) (Func, error) {
	if !interpolate.HasTokens(template) {
		template += DefaultMemberSuffix
	}
	expr, err := interpolate.Compile(template)
	if err != nil {
		return nil, err
	}
	return func(params map[string]any) string {
		return strings.TrimSuffix(expr.Render(params), "/")
	}, nil
}

// MustBuild is like Build but panics on error.
func MustBuild(template string) Func {
	fn, err := Build(template)
	if err != nil {
		panic(err)
	}
	return fn
}

// FromFunc returns fn unchanged. Callers that compute URLs themselves keep
// full control over the result.
func FromFunc(fn func(params map[string]any) string) Func {
	return fn
}
