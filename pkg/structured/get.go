package structured

import (
	"fmt"
)

// Get resolves path against base and returns the value found there. path
// accepts the same forms as Set; an empty or non-path input returns base
// itself. Errors wrap ErrPathNotFound with the step that failed.
//
// A group segment fans in: the result is a []any holding each member's
// value in group order.
func Get(base, path any) (any, error) {
	cur := base
	for _, seg := range normalizePath(path) {
		next, err := stepInto(cur, seg)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// stepInto resolves a single segment against the current level.
func stepInto(cur any, seg Segment) (any, error) {
	if g, ok := seg.(Group); ok {
		out := make([]any, 0, len(g.Members))
		for _, m := range g.Members {
			v, err := stepInto(cur, m)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
	switch t := cur.(type) {
	case map[string]any:
		key := segmentKey(seg)
		v, ok := t[key]
		if !ok {
			return nil, fmt.Errorf("key %q not found: %w", key, ErrPathNotFound)
		}
		return v, nil
	case []any:
		idx, ok := segmentIndex(seg)
		if !ok {
			return nil, fmt.Errorf("expected numeric index into sequence but got %q: %w", segmentKey(seg), ErrPathNotFound)
		}
		if idx < 0 || idx >= len(t) {
			return nil, fmt.Errorf("index %d out of range: %w", idx, ErrPathNotFound)
		}
		return t[idx], nil
	default:
		return nil, fmt.Errorf("cannot descend into %T at %q: %w", cur, segmentKey(seg), ErrPathNotFound)
	}
}

// lookup is the non-erroring walk step used by the equality pre-check and
// the suggester: it reports presence instead of failing.
func lookup(cur any, seg Segment) (any, bool) {
	switch t := cur.(type) {
	case map[string]any:
		v, ok := t[segmentKey(seg)]
		return v, ok
	case []any:
		idx, ok := segmentIndex(seg)
		if !ok || idx < 0 || idx >= len(t) {
			return nil, false
		}
		return t[idx], true
	default:
		return nil, false
	}
}
