package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Format identifies an output serialization for Emit.
type Format string

const (
	// Auto resolves to the detected input format before emission.
	Auto   Format = "auto"
	JSON   Format = "json"
	YAML   Format = "yaml"
	TOML   Format = "toml"
	NDJSON Format = "ndjson"
	// Raw prints scalars as plain text and structures as compact JSON,
	// for piping single values into other tools.
	Raw Format = "raw"
)

// ParseFormat validates a --output flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case Auto:
		return Auto, nil
	case JSON:
		return JSON, nil
	case YAML, Format("yml"):
		return YAML, nil
	case TOML:
		return TOML, nil
	case NDJSON:
		return NDJSON, nil
	case Raw:
		return Raw, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want auto, json, yaml, toml, ndjson, or raw)", s)
	}
}

// DetectFormat decides what format the document arrived in, so Auto
// can emit it back the same way. The file extension wins; content sniffing
// covers stdin and extensionless files. Detection only shapes re-emission:
// input parsing does its own, stricter, detection.
func DetectFormat(path string, content []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON
	case ".yaml", ".yml":
		return YAML
	case ".toml":
		return TOML
	case ".ndjson", ".jsonl":
		return NDJSON
	}
	return sniffFormat(string(content))
}

var (
	tomlSectionPattern  = regexp.MustCompile(`^\s*\[{1,2}\s*[A-Za-z_"'][^\]]*\]{1,2}\s*$`)
	tomlKeyValuePattern = regexp.MustCompile(`^\s*[A-Za-z_"'][\w.\-"' ]*=\s*.+`)
)

// sniffFormat classifies content by shape, first line mostly. YAML is the
// fallback: every JSON document is valid YAML, and YAML is the friendliest
// form to hand-edit.
func sniffFormat(content string) Format {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return YAML
	}
	lines := strings.Split(trimmed, "\n")
	first := strings.TrimSpace(lines[0])

	if len(lines) > 1 && strings.HasPrefix(first, "{") {
		all := true
		for _, line := range lines {
			l := strings.TrimSpace(line)
			if l == "" {
				continue
			}
			if !strings.HasPrefix(l, "{") && !strings.HasPrefix(l, "[") {
				all = false
				break
			}
		}
		if all {
			return NDJSON
		}
	}
	if strings.HasPrefix(trimmed, "{") {
		return JSON
	}
	if strings.HasPrefix(trimmed, "[") {
		if tomlSectionPattern.MatchString(first) {
			return TOML
		}
		return JSON
	}
	if tomlKeyValuePattern.MatchString(first) {
		return TOML
	}
	return YAML
}

// Emit renders node in the given format. Auto must be resolved by the
// caller first; it is an error here.
func Emit(node any, f Format) ([]byte, error) {
	switch f {
	case JSON:
		out, err := json.MarshalIndent(node, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("cannot render JSON: %w", err)
		}
		return append(out, '\n'), nil
	case YAML:
		s, err := RenderYAML(node)
		if err != nil {
			return nil, fmt.Errorf("cannot render YAML: %w", err)
		}
		return []byte(s), nil
	case TOML:
		if _, ok := node.(map[string]any); !ok {
			return nil, fmt.Errorf("cannot render TOML: root must be a table, got %T", node)
		}
		out, err := toml.Marshal(node)
		if err != nil {
			return nil, fmt.Errorf("cannot render TOML: %w", err)
		}
		return out, nil
	case NDJSON:
		return emitNDJSON(node)
	case Raw:
		return emitRaw(node), nil
	case Auto:
		return nil, fmt.Errorf("auto format must be resolved before emission")
	default:
		return nil, fmt.Errorf("unknown output format %q", f)
	}
}

// RenderYAML renders a node with the emission defaults: two-space indent
// and literal blocks for multi-line strings.
func RenderYAML(node any) (string, error) {
	return FormatYAML(node, YAMLFormatOptions{Indent: 2, LiteralBlockStrings: true})
}

// emitNDJSON writes one compact JSON document per line. A list root emits
// one line per element, matching how NDJSON input loads; any other root
// emits a single line.
func emitNDJSON(node any) ([]byte, error) {
	docs, ok := node.([]any)
	if !ok {
		docs = []any{node}
	}
	var buf bytes.Buffer
	for _, doc := range docs {
		line, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("cannot render NDJSON: %w", err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// emitRaw prints a scalar as plain text with a trailing newline, and falls
// back to compact JSON for structures. Multi-line strings keep their line
// breaks so raw output pipes cleanly.
func emitRaw(node any) []byte {
	if node == nil {
		return []byte("\n")
	}
	return []byte(StringifyPreserveNewlines(node) + "\n")
}
