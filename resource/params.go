package resource

import (
	"bytes"
	"encoding/json"
	"net/url"
	"reflect"

	"github.com/kbukum/railskit/errors"
	"github.com/kbukum/railskit/interpolate"
	"github.com/kbukum/railskit/keys"
)

// urlParams turns a URL target into template parameters.
func urlParams(target any) map[string]any {
	switch v := target.(type) {
	case map[string]any:
		return v
	case *Instance:
		if v == nil {
			return map[string]any{}
		}
		return v.fields
	case nil:
		return map[string]any{"id": nil}
	}
	switch rv := reflect.ValueOf(target); rv.Kind() {
	case reflect.Slice, reflect.Array:
		return map[string]any{}
	case reflect.Pointer:
		if rv.IsNil() {
			return map[string]any{}
		}
	}
	if isObjectLike(target) {
		if tree, err := toTree(target); err == nil {
			if m, ok := tree.(map[string]any); ok {
				return m
			}
		}
	}
	return map[string]any{"id": target}
}

func isObjectLike(v any) bool {
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct || t.Kind() == reflect.Map
}

// toTree converts v into a decoded JSON tree. Maps, slices and scalars
// of the JSON kinds are returned as is; instances yield their fields and
// anything else is converted through encoding/json.
func toTree(v any) (any, error) {
	switch t := v.(type) {
	case nil, string, bool, float64, int, int64, json.Number,
		map[string]any, []any, []map[string]any, map[any]any:
		return v, nil
	case *Instance:
		if t == nil {
			return nil, nil
		}
		return t.fields, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, errors.InvalidInput("resource data is not JSON encodable", err)
	}
	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, errors.InvalidInput("resource data is not JSON encodable", err)
	}
	return tree, nil
}

// decodeBody decodes a JSON body. An empty body is nil and a body that is
// not JSON is returned as a string.
func decodeBody(body []byte) any {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil
	}
	var data any
	if err := json.Unmarshal(trimmed, &data); err != nil {
		return string(body)
	}
	return data
}

// encodeParams renders params as a query string. Nil values are skipped,
// slices repeat the key, and maps are sent as JSON.
func encodeParams(params map[string]any) url.Values {
	if len(params) == 0 {
		return nil
	}
	q := make(url.Values, len(params))
	for k, v := range params {
		if v == nil {
			continue
		}
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			for i := 0; i < rv.Len(); i++ {
				q.Add(k, interpolate.Stringify(rv.Index(i).Interface()))
			}
		case reflect.Map:
			raw, err := json.Marshal(keys.Clone(v))
			if err != nil {
				q.Add(k, interpolate.Stringify(v))
				continue
			}
			q.Add(k, string(raw))
		default:
			q.Add(k, interpolate.Stringify(v))
		}
	}
	return q
}

func marshalInstances(list []*Instance) ([]byte, error) {
	if list == nil {
		list = []*Instance{}
	}
	return json.Marshal(list)
}

func marshalValue(v any) ([]byte, error) {
	return json.Marshal(v)
}
