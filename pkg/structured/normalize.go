package structured

import (
	"fmt"
	"reflect"
)

// Normalize converts typed containers anywhere in v into the canonical
// forms Set and Get descend into: map[string]any for mappings (non-string
// keys take their printed form) and []any for sequences. Values that are
// neither maps nor slices pass through untouched, as do pointers and
// interfaces after unwrapping.
//
// Normalization rebuilds every container it touches, so it is never
// applied implicitly: running it inside Set would break the structural
// sharing contract. Call it once on ingest when a document arrives with
// typed containers (map[any]any from YAML, map[string]string, []string,
// ...), then hand the result to Set.
func Normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Normalize(val)
		}
		return out
	default:
		return normalizeReflect(v)
	}
}

// normalizeReflect handles typed containers (map[K]V, []T) that don't
// match the common map[string]any / []any cases.
func normalizeReflect(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() { //nolint:exhaustive // only container kinds need rebuilding
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key()
			var keyStr string
			if k.Kind() == reflect.String {
				keyStr = k.String()
			} else if k.Kind() == reflect.Interface && !k.IsNil() && k.Elem().Kind() == reflect.String {
				keyStr = k.Elem().String()
			} else {
				keyStr = fmt.Sprintf("%v", k.Interface())
			}
			out[keyStr] = Normalize(iter.Value().Interface())
		}
		return out
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = Normalize(rv.Index(i).Interface())
		}
		return out
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return Normalize(rv.Elem().Interface())
	default:
		return v
	}
}

// IsStructural reports whether v is one of the canonical container forms
// the setter descends into. Anything else is an opaque scalar to Set: it
// is never walked and a mid-path write replaces it.
func IsStructural(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}
