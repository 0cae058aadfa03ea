package structured

import (
	"sort"
	"strconv"
	"strings"
)

// Suggest returns completions for a partially typed path against a
// document: the keys or indices available at the deepest level the
// partial's prefix resolves to, filtered by the trailing token and
// rendered as full canonical paths. Results are sorted; a prefix that
// does not resolve yields nil.
//
//	Suggest(doc, "spec.con") -> ["spec.containers", "spec.config"]
//	Suggest(doc, "items[")   -> ["items[0]", "items[1]", ...]
func Suggest(base any, partial string) []string {
	prefix, token := splitPartial(partial)
	segs := Parse(prefix)
	level := base
	for _, seg := range segs {
		child, ok := lookup(level, seg)
		if !ok {
			return nil
		}
		level = child
	}
	keys := levelKeys(level)
	if len(keys) == 0 {
		return nil
	}
	canonical := segs.String()
	var out []string
	for _, k := range keys {
		if !strings.HasPrefix(k, token) {
			continue
		}
		out = append(out, appendKey(canonical, k))
	}
	return out
}

// splitPartial divides a partial path at its last separator into the
// resolvable prefix and the token being completed. A trailing ']' on the
// token is dropped so "items[1]" completes like "items[1".
func splitPartial(partial string) (prefix, token string) {
	lastDot := strings.LastIndexByte(partial, '.')
	lastBracket := strings.LastIndexByte(partial, '[')
	sep := lastDot
	if lastBracket > sep {
		sep = lastBracket
	}
	if sep == -1 {
		return "", partial
	}
	return partial[:sep], strings.TrimSuffix(partial[sep+1:], "]")
}

// levelKeys lists the addressable children of a level: sorted mapping
// keys, or sequence positions in order.
func levelKeys(level any) []string {
	switch t := level.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return keys
	case []any:
		keys := make([]string, len(t))
		for i := range t {
			keys[i] = strconv.Itoa(i)
		}
		return keys
	default:
		return nil
	}
}

// appendKey extends a canonical path with one key, using bracket notation
// for numeric keys and dot notation otherwise.
func appendKey(canonical, key string) string {
	if isDigits(key) {
		return canonical + "[" + key + "]"
	}
	if canonical == "" {
		return key
	}
	return canonical + "." + key
}
