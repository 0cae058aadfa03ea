package formatter

import (
	"encoding/json"
	"fmt"
	"image/color"
	"reflect"
	"sort"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
)

var (
	defaultHeaderFG  = lipgloss.Color("81")
	defaultHeaderBG  = lipgloss.Color("236")
	defaultKeyColor  = lipgloss.Color("81")
	defaultValue     = lipgloss.Color("246")
	defaultSeparator = lipgloss.Color("238")
	defaultStatus    = lipgloss.Color("81")

	headerStyle    lipgloss.Style
	keyStyle       lipgloss.Style
	valueStyle     lipgloss.Style
	separatorStyle lipgloss.Style
	statusStyle    lipgloss.Style
)

// TableColors controls the colors of RenderKVTable. Nil fields fall back to
// the built-in dark palette.
type TableColors struct {
	HeaderFG       color.Color
	HeaderBG       color.Color
	KeyColor       color.Color
	ValueColor     color.Color
	SeparatorColor color.Color
	StatusColor    color.Color
}

// SetTableTheme overrides the table styles. The editor calls this when its
// theme changes so CLI tables and the TUI stay in step.
func SetTableTheme(tc TableColors) {
	hfg, hbg := tc.HeaderFG, tc.HeaderBG
	kc, vc := tc.KeyColor, tc.ValueColor
	sep, st := tc.SeparatorColor, tc.StatusColor
	if hfg == nil {
		hfg = defaultHeaderFG
	}
	if hbg == nil {
		hbg = defaultHeaderBG
	}
	if kc == nil {
		kc = defaultKeyColor
	}
	if vc == nil {
		vc = defaultValue
	}
	if sep == nil {
		sep = defaultSeparator
	}
	if st == nil {
		st = defaultStatus
	}
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(hfg).Background(hbg)
	keyStyle = lipgloss.NewStyle().Foreground(kc)
	valueStyle = lipgloss.NewStyle().Foreground(vc)
	separatorStyle = lipgloss.NewStyle().Foreground(sep)
	statusStyle = lipgloss.NewStyle().Foreground(st)
}

//nolint:gochecknoinits // styles must exist before any render call
func init() {
	SetTableTheme(TableColors{})
}

// Stringify returns a compact single-line representation of a value for
// table cells and raw output. Containers render as compact JSON.
func Stringify(v any) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return escapeScalarString(t)
	case bool, int, int64, float64:
		return fmt.Sprint(t)
	case map[string]any, []any:
		if b, err := json.Marshal(t); err == nil {
			return string(b)
		}
		return fmt.Sprintf("%v", t)
	default:
		// Typed containers callers pass through (structs, []string,
		// map[string]int, ...) read better as JSON than as Go's fmt form.
		rv := reflect.ValueOf(v)
		switch rv.Kind() { //nolint:exhaustive // only container kinds need JSON
		case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
			if b, err := json.Marshal(v); err == nil {
				return string(b)
			}
		case reflect.Pointer:
			if !rv.IsNil() {
				return Stringify(rv.Elem().Interface())
			}
		}
		return fmt.Sprintf("%v", v)
	}
}

// StringifyPreserveNewlines is Stringify except scalar strings keep their
// real line breaks, for printing multi-line values with --output raw.
func StringifyPreserveNewlines(v any) string {
	if s, ok := v.(string); ok {
		return normalizeScalarString(s, false)
	}
	return Stringify(v)
}

// escapeScalarString flattens line breaks so table rows stay single-line.
func escapeScalarString(s string) string {
	return normalizeScalarString(s, true)
}

func normalizeScalarString(s string, escapeNewlines bool) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	if escapeNewlines {
		s = strings.ReplaceAll(s, "\n", "\\n")
	}
	return s
}

// Truncate shortens s to maxWidth display cells, appending an ellipsis when
// something was cut. Width is measured in terminal cells so CJK and other
// wide runes stay aligned.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 || runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth < 4 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// PadRight pads s with spaces to width display cells, truncating first when
// it is too long.
func PadRight(s string, width int) string {
	s = Truncate(s, width)
	if pad := width - runewidth.StringWidth(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}

// KVTableOptions control RenderKVTable.
type KVTableOptions struct {
	// Width caps the full table width in cells; 0 falls back to 120.
	Width int
	// NoColor disables all styling.
	NoColor bool
	// Title is centered in the top border, typically the binary name.
	Title string
	// Path labels the bottom border with where the node came from.
	Path string
}

// RenderKVTable renders a node as a bordered two-column KEY/VALUE table:
// sorted keys for a mapping, [i] rows for a sequence, a single (value) row
// for a scalar. The top border carries the title, the bottom border the
// path and a type/count label.
func RenderKVTable(node any, opts KVTableOptions) string {
	width := opts.Width
	if width <= 0 {
		width = 120
	}

	rows := nodeRows(node)

	// Size columns to content, bounded by the requested width.
	sepWidth := 2
	keyW, valW := 3, 5 // KEY / VALUE headers
	for _, row := range rows {
		if w := runewidth.StringWidth(row[0]); w > keyW {
			keyW = w
		}
		if w := runewidth.StringWidth(row[1]); w > valW {
			valW = w
		}
	}
	inner := keyW + sepWidth + valW
	maxInner := width - 2 // side borders
	if inner > maxInner {
		keyCap := maxInner * 30 / 100
		if keyCap < 5 {
			keyCap = 5
		}
		if keyW > keyCap {
			keyW = keyCap
		}
		valW = maxInner - sepWidth - keyW
		if valW < 5 {
			valW = 5
		}
		inner = keyW + sepWidth + valW
	}

	styled := func(st lipgloss.Style, s string) string {
		if opts.NoColor {
			return s
		}
		return st.Render(s)
	}

	var b strings.Builder
	sep := strings.Repeat(" ", sepWidth)

	b.WriteString(topBorder(opts.Title, inner, opts.NoColor))
	b.WriteByte('\n')

	header := styled(headerStyle, PadRight("KEY", keyW)) + sep + styled(headerStyle, PadRight("VALUE", valW))
	b.WriteString(sideBordered(header, inner, opts.NoColor))
	b.WriteByte('\n')
	b.WriteString(sideBordered(styled(separatorStyle, strings.Repeat("─", inner)), inner, opts.NoColor))
	b.WriteByte('\n')

	for _, row := range rows {
		line := styled(keyStyle, PadRight(row[0], keyW)) + sep + styled(valueStyle, PadRight(row[1], valW))
		b.WriteString(sideBordered(line, inner, opts.NoColor))
		b.WriteByte('\n')
	}

	b.WriteString(bottomBorder(opts.Path, nodeTypeLabel(node), len(rows), inner, opts.NoColor))
	b.WriteByte('\n')
	return b.String()
}

// nodeRows flattens one level of a node into [key, value] display pairs.
func nodeRows(node any) [][2]string {
	switch t := node.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		rows := make([][2]string, 0, len(keys))
		for _, k := range keys {
			rows = append(rows, [2]string{k, Stringify(t[k])})
		}
		return rows
	case []any:
		rows := make([][2]string, 0, len(t))
		for i, v := range t {
			rows = append(rows, [2]string{fmt.Sprintf("[%d]", i), Stringify(v)})
		}
		return rows
	default:
		return [][2]string{{"(value)", Stringify(node)}}
	}
}

// nodeTypeLabel names a node's shape for the footer.
func nodeTypeLabel(node any) string {
	switch node.(type) {
	case map[string]any:
		return "map"
	case []any:
		return "list"
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case int, int64:
		return "int"
	case float32, float64:
		return "double"
	default:
		return ""
	}
}

func topBorder(title string, inner int, noColor bool) string {
	title = strings.TrimSpace(title)
	var mid string
	if title == "" {
		mid = strings.Repeat("─", inner)
	} else {
		label := " " + title + " "
		dashes := inner - runewidth.StringWidth(label)
		if dashes < 2 {
			label = " " + Truncate(title, inner-4) + " "
			dashes = inner - runewidth.StringWidth(label)
		}
		left := dashes / 2
		mid = strings.Repeat("─", left) + label + strings.Repeat("─", dashes-left)
	}
	line := "╭" + mid + "╮"
	if noColor {
		return line
	}
	return separatorStyle.Render(line)
}

func bottomBorder(path, typeLabel string, count, inner int, noColor bool) string {
	left := ""
	if strings.TrimSpace(path) != "" {
		left = " " + path + " "
	}
	right := ""
	if typeLabel != "" {
		right = fmt.Sprintf(" %s: %d ", typeLabel, count)
	}
	dashes := inner - runewidth.StringWidth(left) - runewidth.StringWidth(right)
	if dashes < 0 {
		left = " " + Truncate(path, inner-runewidth.StringWidth(right)-3) + " "
		dashes = inner - runewidth.StringWidth(left) - runewidth.StringWidth(right)
		if dashes < 0 {
			dashes = 0
		}
	}
	if noColor {
		return "╰" + left + strings.Repeat("─", dashes) + right + "╯"
	}
	return separatorStyle.Render("╰") +
		statusStyle.Render(left) +
		separatorStyle.Render(strings.Repeat("─", dashes)) +
		statusStyle.Render(right) +
		separatorStyle.Render("╯")
}

func sideBordered(line string, inner int, noColor bool) string {
	if pad := inner - lipgloss.Width(line); pad > 0 {
		line += strings.Repeat(" ", pad)
	}
	if noColor {
		return "│" + line + "│"
	}
	edge := separatorStyle.Render("│")
	return edge + line + edge
}
