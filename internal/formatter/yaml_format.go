package formatter

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAMLFormatOptions control YAML rendering.
type YAMLFormatOptions struct {
	// Indent is the number of spaces per nesting level, clamped to 1..8.
	// Zero means 2.
	Indent int
	// LiteralBlockStrings emits multi-line strings as literal blocks ("|")
	// so their newlines survive round-tripping.
	LiteralBlockStrings bool
	// ExpandEscapedNewlines turns "\n" escapes inside strings into real
	// line breaks before styling. Useful for values typed on a command
	// line where the shell delivers the backslash form.
	ExpandEscapedNewlines bool
}

// FormatYAML renders a document tree to YAML. It goes through yaml.Node so
// string styles can be adjusted before encoding.
func FormatYAML(v any, opts YAMLFormatOptions) (string, error) {
	var node yaml.Node
	if err := node.Encode(v); err != nil {
		return "", err
	}

	if opts.ExpandEscapedNewlines {
		visitStrings(&node, func(n *yaml.Node) {
			if strings.Contains(n.Value, "\\n") {
				n.Value = strings.ReplaceAll(n.Value, "\\n", "\n")
			}
		})
	}
	if opts.LiteralBlockStrings {
		visitStrings(&node, func(n *yaml.Node) {
			if strings.Contains(n.Value, "\n") {
				n.Style = yaml.LiteralStyle
			}
		})
	}

	indent := opts.Indent
	if indent <= 0 {
		indent = 2
	} else if indent > 8 {
		indent = 8
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(indent)
	if err := enc.Encode(&node); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// visitStrings walks every string scalar in the node tree.
func visitStrings(n *yaml.Node, fn func(*yaml.Node)) {
	if n == nil {
		return
	}
	if n.Kind == yaml.ScalarNode && n.Tag == "!!str" {
		fn(n)
	}
	for _, c := range n.Content {
		visitStrings(c, fn)
	}
}
