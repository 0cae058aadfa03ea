package structured

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment represents one parsed step of a path.
// Path example: regions.asia.countries[0].cities[2]
type Segment interface{}

// Field addresses a mapping entry by name. A Field whose name is a run of
// digits also addresses a sequence element by that index.
type Field struct {
	Name string
}

// Index addresses a sequence element like [0]. Against a mapping it
// addresses the entry keyed by its decimal string.
type Index struct {
	N int
}

// Group fans an update out across several sibling keys at one level.
// Members hold Field and Index segments only.
type Group struct {
	Members []Segment
}

// Path is an ordered sequence of segments locating a value inside a
// nested document.
type Path []Segment

// Parse parses a path string into segments.
// Tokens are separated by '.'; any token may carry trailing bracketed
// numeric suffixes, each becoming its own Index segment after the token's
// field prefix: "a.b[0].c" parses to Field a, Field b, Index 0, Field c,
// and "[0]" alone yields Index 0. Bracket text that is not a run of digits
// stays part of the field name. Any string is accepted as a mapping key;
// no validation is performed.
func Parse(input string) Path {
	var segs Path
	if input == "" {
		return segs
	}
	for _, token := range strings.Split(input, ".") {
		if token == "" {
			continue
		}
		segs = append(segs, splitToken(token)...)
	}
	return segs
}

// splitToken peels trailing [n] suffixes off one dotted token, returning
// the field prefix (when non-empty) followed by the indices in order.
func splitToken(token string) []Segment {
	rest := token
	var indices []Segment
	for {
		open := strings.LastIndexByte(rest, '[')
		if open == -1 || !strings.HasSuffix(rest, "]") {
			break
		}
		inner := rest[open+1 : len(rest)-1]
		n, err := strconv.Atoi(inner)
		if !isDigits(inner) || err != nil {
			break
		}
		indices = append(indices, Index{N: n})
		rest = rest[:open]
	}
	// indices were collected right to left
	for i, j := 0, len(indices)-1; i < j; i, j = i+1, j-1 {
		indices[i], indices[j] = indices[j], indices[i]
	}
	segs := make([]Segment, 0, len(indices)+1)
	if rest != "" {
		segs = append(segs, Field{Name: rest})
	}
	return append(segs, indices...)
}

// isDigits reports whether s is a non-empty run of ASCII digits. The
// bracket grammar admits exactly that; signs and whitespace stay literal.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// String reconstructs the canonical textual form of the path: fields joined
// by dots, indices as bracket suffixes. Groups have no textual grammar and
// render as a brace-wrapped member list for display.
func (p Path) String() string {
	var b strings.Builder
	for idx, seg := range p {
		switch s := seg.(type) {
		case Field:
			if idx > 0 {
				b.WriteByte('.')
			}
			b.WriteString(s.Name)
		case Index:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(s.N))
			b.WriteByte(']')
		case Group:
			if idx > 0 {
				b.WriteByte('.')
			}
			b.WriteByte('{')
			for i, m := range s.Members {
				if i > 0 {
					b.WriteByte(',')
				}
				b.WriteString(segmentKey(m))
			}
			b.WriteByte('}')
		default:
			if idx > 0 {
				b.WriteByte('.')
			}
			b.WriteString(segmentKey(seg))
		}
	}
	return b.String()
}

// normalizePath turns the accepted path forms into a Path. A Path or
// []Segment passes through, a non-empty string is parsed, and a []any is
// coerced element-wise. Anything else, including the empty string, is "no
// path": the update degenerates to a top-level replace.
func normalizePath(path any) Path {
	switch t := path.(type) {
	case Path:
		return t
	case []Segment:
		return Path(t)
	case string:
		return Parse(t)
	case []any:
		return coerceSegments(t)
	default:
		return nil
	}
}

// coerceSegments converts plain values into segments: strings become
// fields, integer-valued numbers become indices, nested slices become
// groups, and anything else becomes a field of its printed form.
func coerceSegments(raw []any) Path {
	segs := make(Path, 0, len(raw))
	for _, v := range raw {
		segs = append(segs, coerceSegment(v))
	}
	return segs
}

func coerceSegment(v any) Segment {
	switch t := v.(type) {
	case Field, Index, Group:
		return t
	case string:
		return Field{Name: t}
	case []any:
		members := make([]Segment, 0, len(t))
		for _, m := range t {
			members = append(members, coerceSegment(m))
		}
		return Group{Members: members}
	default:
		if n, ok := intValue(v); ok && n >= 0 {
			return Index{N: n}
		}
		return Field{Name: fmt.Sprint(v)}
	}
}

// intValue extracts an integer from the numeric kinds decoded inputs carry
// (JSON numbers arrive as float64, YAML as int).
func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	case float32:
		if float32(int(n)) == n {
			return int(n), true
		}
	case float64:
		if float64(int(n)) == n {
			return int(n), true
		}
	}
	return 0, false
}

// segmentIndex reports the numeric index a segment addresses, when it
// addresses one. Digit-named fields count so that "items.0" and "items[0]"
// behave alike.
func segmentIndex(seg Segment) (int, bool) {
	switch s := seg.(type) {
	case Index:
		return s.N, true
	case Field:
		if !isDigits(s.Name) {
			return 0, false
		}
		n, err := strconv.Atoi(s.Name)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// segmentKey renders the mapping key a segment addresses: a field's name,
// or an index's decimal string.
func segmentKey(seg Segment) string {
	switch s := seg.(type) {
	case Field:
		return s.Name
	case Index:
		return strconv.Itoa(s.N)
	case Group:
		return ""
	default:
		return fmt.Sprint(seg)
	}
}

// numericSegment reports whether a segment addresses sequence positions,
// used by the container factory's sequence-vs-mapping choice.
func numericSegment(seg Segment) bool {
	n, ok := segmentIndex(seg)
	return ok && n >= 0
}
