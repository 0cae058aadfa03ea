package structured

import (
	"fmt"
	"strconv"
)

// Set returns a new document equal to base with the value placed at path.
// base is never mutated; every level the path traverses is freshly
// allocated and everything off the path is shared by reference with the
// original. Missing levels are created on the way down, and scalar values
// standing where a container is needed are replaced.
//
// path may be a string ("a.b[0].c"), a Path, or a []any of keys; anything
// else, including the empty string, turns the call into a top-level
// replace that returns base itself when base is already identical to
// value.
//
// The only error is ErrShapeMismatch, from a group addressed at a
// sequence with non-positional values; nothing is partially applied when
// it surfaces.
func Set(base, path, value any, opts ...Option) (any, error) {
	cfg := newConfig(opts)
	segs := normalizePath(path)
	if len(segs) == 0 {
		if identical(base, unwrapValue(value)) {
			return base, nil
		}
		return unwrapValue(value), nil
	}
	if cfg.safe && equalAt(base, segs, value, cfg.equality) {
		return base, nil
	}
	return assign(base, segs, value, cfg.arrayPreferring)
}

// nextBase decides what empty container to materialize when descent hits
// an absent or non-structural slot: a sequence when array-preferring mode
// is on and the upcoming segment is numeric, a mapping otherwise.
func nextBase(arrayPreferring bool, next Segment) any {
	if arrayPreferring && numericSegment(next) {
		return []any{}
	}
	return map[string]any{}
}

// assign is the recursive core. It returns a new version of level with
// value placed along path; level itself is never touched. The recursion
// terminates because path shrinks by one segment per call.
func assign(level any, path Path, value any, arrayPreferring bool) (any, error) {
	if len(path) == 0 {
		return unwrapValue(value), nil
	}
	if g, ok := path[0].(Group); ok {
		return assignGroup(level, g, path[1:], value, arrayPreferring)
	}
	return assignKey(level, path[0], path[1:], value, arrayPreferring)
}

// assignKey handles a single-key step: shallow-copy the current level and
// replace exactly one child with the recursive result.
func assignKey(level any, seg Segment, rest Path, value any, arrayPreferring bool) (any, error) {
	switch t := level.(type) {
	case []any:
		idx, ok := segmentIndex(seg)
		if !ok || idx < 0 {
			// A key that is not a valid position demotes the sequence to a
			// mapping keyed by element position; no element is dropped.
			return assignKey(sequenceToMapping(t), seg, rest, value, arrayPreferring)
		}
		return setSequenceIndex(t, idx, rest, value, arrayPreferring)
	case map[string]any:
		key := segmentKey(seg)
		child, err := assign(t[key], rest, value, arrayPreferring)
		if err != nil {
			return nil, err
		}
		next := make(map[string]any, len(t)+1)
		for k, v := range t {
			next[k] = v
		}
		next[key] = child
		return next, nil
	default:
		// Absent or scalar level: materialize a fresh container and retry.
		return assignKey(nextBase(arrayPreferring, seg), seg, rest, value, arrayPreferring)
	}
}

// setSequenceIndex writes the recursive result at idx in a copy of seq.
// Writing at idx == len appends; beyond that, the gap is padded with nil
// holes.
func setSequenceIndex(seq []any, idx int, rest Path, value any, arrayPreferring bool) (any, error) {
	var existing any
	if idx < len(seq) {
		existing = seq[idx]
	}
	child, err := assign(existing, rest, value, arrayPreferring)
	if err != nil {
		return nil, err
	}
	size := len(seq)
	if idx >= size {
		size = idx + 1
	}
	next := make([]any, size)
	copy(next, seq)
	next[idx] = child
	return next, nil
}

// assignGroup fans the update out across the group's members at this
// level. The value pairing is classified once here.
func assignGroup(level any, g Group, rest Path, value any, arrayPreferring bool) (any, error) {
	vals := classifyValues(value)
	switch t := level.(type) {
	case []any:
		return assignGroupSequence(t, g, rest, vals, arrayPreferring)
	case map[string]any:
		return assignGroupMapping(t, g, rest, vals, arrayPreferring)
	default:
		// Absent or scalar level: a group whose members are all numeric
		// grows a sequence regardless of array preference; anything else
		// grows a mapping.
		if groupIsNumeric(g) {
			return assignGroupSequence([]any{}, g, rest, vals, arrayPreferring)
		}
		return assignGroupMapping(map[string]any{}, g, rest, vals, arrayPreferring)
	}
}

// assignGroupSequence writes one group member per position into a copy of
// seq. Values must be positional here; member i pairs with value i.
func assignGroupSequence(seq []any, g Group, rest Path, vals any, arrayPreferring bool) (any, error) {
	if !groupIsNumeric(g) {
		// Non-positional members stop this level being a sequence at all;
		// demote it the same way a single string key would.
		return assignGroupMapping(sequenceToMapping(seq), g, rest, vals, arrayPreferring)
	}
	pos, ok := vals.(Positional)
	if !ok {
		return nil, fmt.Errorf("group %s paired with %s values: %w", Path{g}.String(), valuesKind(vals), ErrShapeMismatch)
	}
	next := make([]any, len(seq))
	copy(next, seq)
	for i, member := range g.Members {
		idx, _ := segmentIndex(member)
		var existing any
		if idx < len(seq) {
			existing = seq[idx]
		}
		child, err := assign(existing, rest, memberValue(pos, i, segmentKey(member)), arrayPreferring)
		if err != nil {
			return nil, err
		}
		if idx >= len(next) {
			grown := make([]any, idx+1)
			copy(grown, next)
			next = grown
		}
		next[idx] = child
	}
	return next, nil
}

// assignGroupMapping writes one group member per key into a copy of m.
// Positional, keyed, and single pairings are all accepted; each member
// reads its prior child from the original mapping.
func assignGroupMapping(m map[string]any, g Group, rest Path, vals any, arrayPreferring bool) (any, error) {
	next := make(map[string]any, len(m)+len(g.Members))
	for k, v := range m {
		next[k] = v
	}
	for i, member := range g.Members {
		key := segmentKey(member)
		child, err := assign(m[key], rest, memberValue(vals, i, key), arrayPreferring)
		if err != nil {
			return nil, err
		}
		next[key] = child
	}
	return next, nil
}

// groupIsNumeric reports whether every member of a non-empty group
// addresses a sequence position.
func groupIsNumeric(g Group) bool {
	if len(g.Members) == 0 {
		return false
	}
	for _, m := range g.Members {
		if !numericSegment(m) {
			return false
		}
	}
	return true
}

// sequenceToMapping rebuilds a sequence as a mapping keyed by the decimal
// form of each element's position.
func sequenceToMapping(seq []any) map[string]any {
	m := make(map[string]any, len(seq))
	for i, v := range seq {
		m[strconv.Itoa(i)] = v
	}
	return m
}
