package structured

import (
	"reflect"
)

// EqualFunc compares two values for the safe-mode pre-check. A nil
// EqualFunc means strict identity.
type EqualFunc func(a, b any) bool

// EqualAt walks path through base and reports whether the value at its end
// already equals value, comparing with eq when non-nil and strict identity
// otherwise. Any missing or non-structural intermediate level reports
// false. Set uses this under WithSafe to return base untouched for no-op
// updates, so callers relying on reference identity can detect change
// cheaply.
func EqualAt(base, path, value any, eq EqualFunc) bool {
	return equalAt(base, normalizePath(path), value, eq)
}

func equalAt(level any, path Path, value any, eq EqualFunc) bool {
	if len(path) == 0 {
		return compare(level, unwrapValue(value), eq)
	}
	seg := path[0]
	rest := path[1:]
	if g, ok := seg.(Group); ok {
		// Every member must already hold its share of the value.
		vals := classifyValues(value)
		for i, m := range g.Members {
			child, ok := lookup(level, m)
			if !ok {
				return false
			}
			if !equalAt(child, rest, memberValue(vals, i, segmentKey(m)), eq) {
				return false
			}
		}
		return true
	}
	child, ok := lookup(level, seg)
	if !ok {
		return false
	}
	return equalAt(child, rest, value, eq)
}

func compare(found, candidate any, eq EqualFunc) bool {
	if eq != nil {
		return eq(found, candidate)
	}
	return identical(found, candidate)
}

// Identical reports strict identity, the comparison the pre-check falls
// back to when no EqualFunc is supplied: reference identity for maps and
// slices, plain equality for comparable scalars.
func Identical(a, b any) bool {
	return identical(a, b)
}

// Equivalent reports deep equality with numeric unification: mappings and
// sequences compare element-wise, and numbers compare by value regardless
// of their decoded Go type, so the float64(5) a JSON document carries
// matches the int 5 a command-line value parses to. Safe-mode callers
// pass it to WithEquality so a no-op is detected across input formats.
func Equivalent(a, b any) bool {
	switch ta := a.(type) {
	case map[string]any:
		tb, ok := b.(map[string]any)
		if !ok || len(ta) != len(tb) {
			return false
		}
		for k, va := range ta {
			vb, present := tb[k]
			if !present || !Equivalent(va, vb) {
				return false
			}
		}
		return true
	case []any:
		tb, ok := b.([]any)
		if !ok || len(ta) != len(tb) {
			return false
		}
		for i := range ta {
			if !Equivalent(ta[i], tb[i]) {
				return false
			}
		}
		return true
	}
	if fa, ok := floatValue(a); ok {
		fb, ok := floatValue(b)
		return ok && fa == fb
	}
	return reflect.DeepEqual(a, b)
}

// floatValue widens any numeric kind to float64 so values land on one
// axis no matter which decoder produced them.
func floatValue(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// identical implements strict identity: reference identity for maps and
// slices (two structurally equal but distinct containers are not
// identical), plain equality for comparable values, and false for
// anything equality cannot be asked of without panicking.
func identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ra := reflect.ValueOf(a)
	rb := reflect.ValueOf(b)
	if ra.Kind() != rb.Kind() || ra.Type() != rb.Type() {
		return false
	}
	switch ra.Kind() { //nolint:exhaustive // reference kinds only; the rest fall through
	case reflect.Map, reflect.Func:
		return ra.Pointer() == rb.Pointer()
	case reflect.Slice:
		return ra.Len() == rb.Len() && ra.Pointer() == rb.Pointer()
	}
	if !ra.Type().Comparable() {
		return false
	}
	return a == b
}
