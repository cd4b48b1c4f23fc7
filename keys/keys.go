package keys

import (
	"fmt"
	"sort"
	"strings"
)

// KeyFunc maps one object key to another.
type KeyFunc func(string) string

// Camelize removes each underscore that is followed by a word character
// and upper-cases that character. A match at position 0 is kept as is, so
// "_id" stays "_id" while "first_name" becomes "firstName".
func Camelize(key string) string {
	if strings.IndexByte(key, '_') < 0 {
		return key
	}
	var b strings.Builder
	b.Grow(len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c == '_' && i+1 < len(key) && isWordChar(key[i+1]) {
			next := key[i+1]
			if i == 0 {
				b.WriteByte(c)
				b.WriteByte(next)
			} else {
				b.WriteByte(toUpper(next))
			}
			i++
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// Underscore prefixes every upper-case letter or digit after position 0
// with an underscore and lower-cases it. The first character is unchanged.
func Underscore(key string) string {
	var b strings.Builder
	b.Grow(len(key) + 4)
	for i := 0; i < len(key); i++ {
		c := key[i]
		if i > 0 && (isUpper(c) || isDigit(c)) {
			b.WriteByte('_')
			b.WriteByte(toLower(c))
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// Transform returns a copy of data with every map key replaced by fn(key).
//
// Keys are visited in sorted order; when two source keys map to the same
// target key, the one that sorts last wins.
func Transform(data any, fn KeyFunc) any {
	switch v := data.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for _, k := range sortedKeys(v) {
			out[fn(k)] = Transform(v[k], fn)
		}
		return out
	case map[any]any:
		return Transform(stringKeys(v), fn)
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = Transform(elem, fn)
		}
		return out
	case []map[string]any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = Transform(elem, fn)
		}
		return out
	default:
		return data
	}
}

// Clone returns a deep copy of a JSON tree. Scalars are returned as is.
func Clone(data any) any {
	return Transform(data, identity)
}

// CloneMap returns a deep copy of m, or an empty map when m is nil.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return Clone(m).(map[string]any)
}

func identity(k string) string { return k }

func sortedKeys(m map[string]any) []string {
	ks := make([]string, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}

func stringKeys(m map[any]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[fmt.Sprint(k)] = v
	}
	return out
}

func isWordChar(c byte) bool {
	return c == '_' || isDigit(c) || isUpper(c) || (c >= 'a' && c <= 'z')
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func toUpper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

func toLower(c byte) byte {
	if isUpper(c) {
		return c - 'A' + 'a'
	}
	return c
}
