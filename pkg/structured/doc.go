// Package structured implements immutable, path-addressed updates over
// JSON-like documents: nested mixes of map[string]any mappings, []any
// sequences, and opaque scalar leaves.
//
// The central operation is Set, which returns a new document with one value
// replaced and everything off the written path shared, by reference, with
// the original:
//
//	doc := map[string]any{"spec": map[string]any{"replicas": 2}}
//	next, err := structured.Set(doc, "spec.replicas", 3)
//
// The original document is never mutated, at any depth. Old and new
// versions coexist; sub-structures the path never touched are the same
// objects in both, which keeps updates cheap and makes "did anything
// change?" a pointer comparison.
//
// Paths are dotted keys with bracketed indices ("servers[0].port"). A path
// may also be given as a pre-built Path, or as a plain []any of keys. A
// Group segment fans one update out across several sibling keys in a
// single call, paired with positional ([]any), keyed (map[string]any), or
// single replicated values.
//
// Set never fails on missing structure: absent levels are created on the
// way down, and scalar values standing where a container is needed are
// replaced. The one hard error is ErrShapeMismatch, raised when a group
// addresses an ordered sequence but its values are not positional.
package structured
