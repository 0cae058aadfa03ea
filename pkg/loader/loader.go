// Package loader turns raw document text into the plain map/slice/scalar
// tree the rest of kvset operates on. Callers hand over the bytes of a
// file or a stdin stream; the loader sniffs the format and parses
// accordingly, so the CLI never needs a --format flag on the input side.
package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// format is the sniffed wire format of an input.
type format int

const (
	formatYAML format = iota // fallback when nothing else matches
	formatJSON
	formatJSONLines
	formatYAMLStream
	formatTOML
)

// sniff classifies input without fully parsing it. Precedence is load
// bearing: a document separator beats everything, JSON lines beat TOML,
// and TOML beats JSON because "[server]" reads as a JSON array prefix.
func sniff(input string) format {
	if strings.HasPrefix(input, "---") || strings.Contains(input, "\n---") {
		return formatYAMLStream
	}
	if looksLikeJSONLines(input) {
		return formatJSONLines
	}
	if looksLikeTOML(input) {
		return formatTOML
	}
	if strings.HasPrefix(input, "{") || strings.HasPrefix(input, "[") {
		return formatJSON
	}
	return formatYAML
}

// LoadData parses input into one element per document. Single-document
// inputs (one JSON value, one YAML document, a TOML file) come back as a
// one-element slice; YAML streams and JSON lines come back one element
// per document or line.
func LoadData(input string) ([]interface{}, error) {
	input = normalizeNewlines(input)
	if input == "" {
		return nil, fmt.Errorf("empty input")
	}

	switch sniff(input) {
	case formatYAMLStream:
		return decodeYAMLStream(input)
	case formatJSONLines:
		return decodeJSONLines(input)
	case formatTOML:
		return decodeTOML(input)
	case formatJSON:
		return decodeJSON(input)
	default:
		return decodeYAML(input)
	}
}

// LoadRoot parses input into a single root node. Multi-document inputs
// become a slice root, so a path like "[1].name" addresses the second
// document.
func LoadRoot(input string) (interface{}, error) {
	docs, err := LoadData(input)
	if err != nil {
		return nil, err
	}
	if len(docs) == 1 {
		return docs[0], nil
	}
	return docs, nil
}

// LoadRootBytes parses input bytes into a single root node.
func LoadRootBytes(data []byte) (interface{}, error) {
	return LoadRoot(string(data))
}

// LoadFile reads a file and parses it into a single root node.
func LoadFile(path string) (interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadRootBytes(data)
}

// LoadObject accepts an already constructed Go value. Strings and byte
// slices go through the normal format detection; structs are converted to
// plain maps via a JSON round trip so struct tags pick the key names and
// both the setter and expressions see ordinary data.
func LoadObject(value any) (interface{}, error) {
	if value == nil {
		return nil, fmt.Errorf("object input is nil")
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return nil, fmt.Errorf("object input is nil")
		}
	}

	switch v := value.(type) {
	case string:
		return LoadRoot(v)
	case []byte:
		return LoadRootBytes(v)
	default:
		return toPlainValue(value)
	}
}

// toPlainValue converts an arbitrary Go value into loader-shaped data:
// scalars and maps pass through, slices are converted element by element,
// and structs take the JSON round trip. Values JSON cannot express (chans,
// funcs, complex numbers) fail.
func toPlainValue(value interface{}) (interface{}, error) {
	if value == nil {
		return nil, nil
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.String,
		reflect.Map:
		return rv.Interface(), nil
	case reflect.Slice, reflect.Array:
		out := make([]interface{}, rv.Len())
		for i := range out {
			elem, err := toPlainValue(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("element [%d]: %w", i, err)
			}
			out[i] = elem
		}
		return out, nil
	case reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return toPlainValue(rv.Elem().Interface())
	default:
		return jsonRoundTrip(rv.Interface())
	}
}

// jsonRoundTrip flattens a value through encoding/json. Struct fields keep
// their json tag names, which is the contract LoadObject documents.
func jsonRoundTrip(value interface{}) (interface{}, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("cannot convert %T to plain data: %w", value, err)
	}
	var out interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("cannot convert %T to plain data: %w", value, err)
	}
	return out, nil
}

// normalizeNewlines folds CRLF and bare CR into LF and trims surrounding
// whitespace. Progress-style output overwrites lines with bare \r, and
// Windows files arrive with \r\n; both would confuse line-based sniffing.
func normalizeNewlines(input string) string {
	input = strings.ReplaceAll(input, "\r\n", "\n")
	input = strings.ReplaceAll(input, "\r", "\n")
	return strings.TrimSpace(input)
}

func decodeJSON(input string) ([]interface{}, error) {
	var doc interface{}
	if err := json.Unmarshal([]byte(input), &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return []interface{}{doc}, nil
}

func decodeYAML(input string) ([]interface{}, error) {
	var doc interface{}
	if err := yaml.Unmarshal([]byte(input), &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	return []interface{}{doc}, nil
}

// decodeYAMLStream parses a ---separated YAML stream. Empty documents
// (a bare separator) are skipped.
func decodeYAMLStream(input string) ([]interface{}, error) {
	dec := yaml.NewDecoder(strings.NewReader(input))
	var docs []interface{}
	for {
		var doc interface{}
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid YAML stream: %w", err)
		}
		if doc != nil {
			docs = append(docs, doc)
		}
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents in YAML stream")
	}
	return docs, nil
}

// decodeJSONLines parses newline-delimited JSON. Lines that do not parse
// as JSON are kept as plain strings, so log-style output with the odd
// non-JSON line still loads.
func decodeJSONLines(input string) ([]interface{}, error) {
	var docs []interface{}
	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var doc interface{}
		if err := json.Unmarshal([]byte(line), &doc); err != nil {
			docs = append(docs, line)
			continue
		}
		docs = append(docs, doc)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no records in input")
	}
	return docs, nil
}

func decodeTOML(input string) ([]interface{}, error) {
	var doc interface{}
	if err := toml.Unmarshal([]byte(input), &doc); err != nil {
		return nil, fmt.Errorf("invalid TOML: %w", err)
	}
	return []interface{}{doc}, nil
}

// looksLikeJSONLines reports whether input reads as newline-delimited
// JSON: at least two non-empty lines, the majority of which start like a
// JSON object or array. The majority rule keeps YAML block sequences
// ("- name" lines) from being misread.
func looksLikeJSONLines(input string) bool {
	jsonish, nonEmpty := 0, 0
	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		nonEmpty++
		if strings.HasPrefix(line, "{") || strings.HasPrefix(line, "[") {
			jsonish++
		}
	}
	return nonEmpty > 1 && jsonish > nonEmpty/2
}

// TOML table headers and assignments. Bare, quoted, and dotted keys are
// all legal: [server], [[items]], ["table name"], [server."host.name"],
// database.host = "localhost". JSON arrays like [1, 2, 3] must not match.
var (
	tomlTableRe  = regexp.MustCompile(`^\s*\[{1,2}(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\]{1,2}\s*$`)
	tomlAssignRe = regexp.MustCompile(`^\s*(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\s*=\s*.+$`)
)

// looksLikeTOML reports whether input reads as TOML. Two signals count:
// a table header plus at least one more header or assignment, or a
// majority of key = value lines (key: value is YAML's spelling). Headers
// only count at column zero: an indented ["x"] line is a YAML flow
// sequence, not a table. A lone header is not enough, because a
// single-element JSON array like ["--verbose"] matches the header shape.
func looksLikeTOML(input string) bool {
	headers, assigns, topAssigns, nonEmpty := 0, 0, 0, 0
	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		nonEmpty++
		indented := line[0] == ' ' || line[0] == '\t'
		if !indented && tomlTableRe.MatchString(line) {
			headers++
			continue
		}
		if tomlAssignRe.MatchString(line) {
			assigns++
			if !indented {
				topAssigns++
			}
		}
	}
	if headers > 0 && headers+assigns > 1 {
		return true
	}
	return nonEmpty > 0 && topAssigns > nonEmpty/2
}
