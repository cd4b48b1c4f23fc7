// Package interpolate compiles "{{ token }}" templates into expressions that
// substitute values from a context map.
//
// A token is a dotted path such as id, owner.id or items[0]. Paths are
// compiled once with ojg JSONPath and evaluated on every Render.
package interpolate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/jp"
)

// tokenRegex matches {{expression}} patterns with optional whitespace.
var tokenRegex = regexp.MustCompile(`\{\{\s*([^}]+?)\s*\}\}`)

type segment struct {
	literal string
	path    jp.Expr
	token   string
}

// Expression is a compiled template. It is safe for concurrent use.
type Expression struct {
	template string
	segments []segment
}

// Compile parses template. It fails when a token is not a valid path.
func Compile(template string) (*Expression, error) {
	e := &Expression{template: template}
	last := 0
	for _, loc := range tokenRegex.FindAllStringSubmatchIndex(template, -1) {
		if loc[0] > last {
			e.segments = append(e.segments, segment{literal: template[last:loc[0]]})
		}
		token := strings.TrimSpace(template[loc[2]:loc[3]])
		path, err := parsePath(token)
		if err != nil {
			return nil, fmt.Errorf("interpolate: token %q in %q: %w", token, template, err)
		}
		e.segments = append(e.segments, segment{path: path, token: token})
		last = loc[1]
	}
	if last < len(template) {
		e.segments = append(e.segments, segment{literal: template[last:]})
	}
	return e, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(template string) *Expression {
	e, err := Compile(template)
	if err != nil {
		panic(err)
	}
	return e
}

// HasTokens reports whether template contains at least one {{ }} marker.
func HasTokens(template string) bool {
	return strings.Contains(template, "{{")
}

// Render substitutes every token with its value in ctx. Missing and nil
// values render as the empty string.
func (e *Expression) Render(ctx map[string]any) string {
	var b strings.Builder
	for _, s := range e.segments {
		if s.path == nil {
			b.WriteString(s.literal)
			continue
		}
		if ctx == nil {
			continue
		}
		if found := s.path.Get(ctx); len(found) > 0 {
			b.WriteString(Stringify(found[0]))
		}
	}
	return b.String()
}

// Template returns the source the expression was compiled from.
func (e *Expression) Template() string { return e.template }

// Tokens returns the token paths in template order.
func (e *Expression) Tokens() []string {
	var out []string
	for _, s := range e.segments {
		if s.path != nil {
			out = append(out, s.token)
		}
	}
	return out
}

// Stringify renders a single value the way Render does.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case json.Number:
		return val.String()
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	default:
		return fmt.Sprint(val)
	}
}

func parsePath(token string) (jp.Expr, error) {
	if token == "" {
		return nil, fmt.Errorf("empty token")
	}
	switch token[0] {
	case '$', '@':
		return jp.ParseString(token)
	case '[':
		return jp.ParseString("$" + token)
	default:
		return jp.ParseString("$." + token)
	}
}
