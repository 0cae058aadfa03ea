package loader

import (
	"fmt"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

// TryDecode parses a string that may hold serialized data (JSON, YAML,
// TOML, JSON lines). It reports true only when the result is a map or
// slice; plain strings, numbers, and other scalars report false so the
// caller knows the input was not really a document.
//
// The CLI runs VALUE arguments through this before writing them, so
// `kvset cfg.json spec '{"replicas": 3}'` places a mapping, not a string.
func TryDecode(value string) (any, bool) {
	if strings.TrimSpace(value) == "" {
		return nil, false
	}
	parsed, err := LoadRoot(value)
	if err != nil || !isContainer(parsed) {
		return nil, false
	}
	return parsed, true
}

// ParseValue turns a command-line value string into its natural Go form:
// serialized structures decode via TryDecode, scalars follow YAML scalar
// rules ("42" becomes an int, "true" a bool, "null" nil, "3.5" a float),
// and anything unparseable stays a string. It never fails; the string
// itself is always an acceptable answer.
func ParseValue(raw string) any {
	if decoded, ok := TryDecode(raw); ok {
		return decoded
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return raw
	}
	var out any
	if err := yaml.Unmarshal([]byte(trimmed), &out); err != nil {
		return raw
	}
	switch out.(type) {
	case nil, bool, int, int64, float64, string:
		return out
	default:
		// Timestamps and other exotic YAML scalars keep their typed form
		// only when asked for via a document load, not a bare value.
		return raw
	}
}

// maxDecodeDepth caps RecursiveDecode. Twenty levels of strings inside
// strings is already far past anything a real document does.
const maxDecodeDepth = 20

// RecursiveDecode walks a tree and replaces every string leaf that holds
// serialized data with its parsed structure, recursively, so payloads
// nested inside payloads expand too. Typed containers (map[string]string,
// []int, ...) come back in canonical map[string]any / []any form.
func RecursiveDecode(node any) any {
	return decodeTree(node, 0)
}

func decodeTree(node any, depth int) any {
	if depth > maxDecodeDepth {
		return node
	}

	switch v := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = decodeTree(item, depth+1)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = decodeTree(item, depth+1)
		}
		return out
	case string:
		if parsed, ok := TryDecode(v); ok {
			return decodeTree(parsed, depth+1)
		}
		return v
	case nil:
		return nil
	}
	return decodeTyped(node, depth)
}

// decodeTyped handles containers that are not the canonical interface
// types, iterating them via reflection and stringifying non-string map
// keys on the way through.
func decodeTyped(node any, depth int) any {
	rv := reflect.ValueOf(node)
	switch rv.Kind() {
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		it := rv.MapRange()
		for it.Next() {
			out[mapKeyString(it.Key())] = decodeTree(it.Value().Interface(), depth+1)
		}
		return out
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = decodeTree(rv.Index(i).Interface(), depth+1)
		}
		return out
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return decodeTree(rv.Elem().Interface(), depth+1)
	}
	return node
}

func mapKeyString(key reflect.Value) string {
	if key.Kind() == reflect.String {
		return key.String()
	}
	return fmt.Sprintf("%v", key.Interface())
}

// isContainer reports whether v is a map or slice, i.e. something a path
// can descend into.
func isContainer(v any) bool {
	switch v.(type) {
	case nil:
		return false
	case map[string]any, []any:
		return true
	}
	k := reflect.ValueOf(v).Kind()
	return k == reflect.Map || k == reflect.Slice
}
