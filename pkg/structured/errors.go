package structured

import "errors"

var (
	// ErrShapeMismatch is returned when a group segment addresses an ordered
	// sequence but the paired values are not a positional collection. This is
	// the only failure the setter produces; nothing is partially applied when
	// it surfaces.
	ErrShapeMismatch = errors.New("group over a sequence requires positional values")

	// ErrPathNotFound is returned by Get when a path step cannot be resolved
	// against the document.
	ErrPathNotFound = errors.New("path not found")
)
