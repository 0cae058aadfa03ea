// Package limiter narrows command output to a window of records. The
// --limit, --offset, and --tail flags map onto Config, which windows
// sequences directly and mappings by sorted key.
package limiter

import (
	"fmt"
	"sort"
)

// Config holds the windowing parameters taken from the CLI flags.
type Config struct {
	Limit  int // keep at most this many records (0 = unlimited)
	Offset int // skip this many records from the front (0 = none)
	Tail   int // keep the last N records instead (0 = disabled)
}

// Validate rejects negative values and the Limit/Tail combination. Tail
// together with Offset is allowed; Tail simply wins.
func (c Config) Validate() error {
	for _, f := range []struct {
		flag  string
		value int
	}{
		{"--limit", c.Limit},
		{"--offset", c.Offset},
		{"--tail", c.Tail},
	} {
		if f.value < 0 {
			return fmt.Errorf("%s must be non-negative, got %d", f.flag, f.value)
		}
	}
	if c.Limit > 0 && c.Tail > 0 {
		return fmt.Errorf("--limit and --tail are mutually exclusive")
	}
	return nil
}

// IsActive reports whether any windowing is configured.
func (c Config) IsActive() bool {
	return c.Limit > 0 || c.Offset > 0 || c.Tail > 0
}

// Apply windows the given value. Documents are normalized on ingest, so
// only the canonical container forms reach here; scalars and anything else
// pass through unchanged.
func (c Config) Apply(data interface{}) interface{} {
	if !c.IsActive() {
		return data
	}
	switch v := data.(type) {
	case []interface{}:
		start, end := c.window(len(v))
		return v[start:end]
	case map[string]interface{}:
		return c.windowMap(v)
	default:
		return data
	}
}

// window returns the [start, end) interval the configuration selects from
// a collection of n elements. Tail counts from the end and overrides
// Offset; otherwise Offset and Limit count from the front. Both bounds are
// clamped so the interval is always valid for slicing.
func (c Config) window(n int) (int, int) {
	if c.Tail > 0 {
		start := n - c.Tail
		if start < 0 {
			start = 0
		}
		return start, n
	}
	start := c.Offset
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	end := n
	if c.Limit > 0 && start+c.Limit < n {
		end = start + c.Limit
	}
	return start, end
}

// windowMap picks the window out of a mapping by sorted key, so repeated
// runs over the same document select the same entries.
func (c Config) windowMap(m map[string]interface{}) map[string]interface{} {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	start, end := c.window(len(keys))
	picked := make(map[string]interface{}, end-start)
	for _, k := range keys[start:end] {
		picked[k] = m[k]
	}
	return picked
}
