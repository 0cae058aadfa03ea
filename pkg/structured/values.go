package structured

// Single wraps a value applied unchanged to every member of a group. Plain
// values that are neither []any nor map[string]any classify as Single
// automatically; the wrapper exists so callers can force that reading for
// a slice or mapping they want replicated as-is.
type Single struct {
	Value any
}

// Positional pairs group members with values by position: member i
// receives Items[i], and members beyond the collection receive nil.
type Positional struct {
	Items []any
}

// Keyed pairs group members with values by key: each member receives the
// entry under its canonical key, or nil when the entry is absent.
type Keyed struct {
	Items map[string]any
}

// classifyValues decides, once per group encounter, how a raw value pairs
// with the group's members. Explicit wrappers pass through untouched.
func classifyValues(v any) any {
	switch t := v.(type) {
	case Single, Positional, Keyed:
		return t
	case []any:
		return Positional{Items: t}
	case map[string]any:
		return Keyed{Items: t}
	default:
		return Single{Value: v}
	}
}

// memberValue returns the value paired with the group member at position i
// whose canonical key is key.
func memberValue(classified any, i int, key string) any {
	switch t := classified.(type) {
	case Positional:
		if i < len(t.Items) {
			return t.Items[i]
		}
		return nil
	case Keyed:
		return t.Items[key]
	case Single:
		return t.Value
	default:
		return classified
	}
}

// unwrapValue strips an explicit pairing wrapper when the path is
// exhausted, so wrappers never leak into documents.
func unwrapValue(v any) any {
	switch t := v.(type) {
	case Single:
		return t.Value
	case Positional:
		return t.Items
	case Keyed:
		return t.Items
	default:
		return v
	}
}

// valuesKind names a classified value pairing for error messages.
func valuesKind(classified any) string {
	switch classified.(type) {
	case Positional:
		return "positional"
	case Keyed:
		return "keyed"
	default:
		return "single"
	}
}
