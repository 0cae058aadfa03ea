package tui

import (
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/kvset/internal/formatter"
	"github.com/oakwood-commons/kvset/pkg/loader"
	"github.com/oakwood-commons/kvset/pkg/structured"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusError
)

const (
	minBodyHeight = 3
	chromeHeight  = 6 // header, separator, path, value, status, footer
)

// Options configure a new Editor.
type Options struct {
	// AppName appears in the header band.
	AppName string
	// Source labels where the document came from (file name or "stdin").
	Source string
	// NoColor strips all styling.
	NoColor bool
	// Theme is the palette; a zero value falls back to DefaultTheme.
	Theme Theme
	// ArrayPreferring biases created containers toward sequences for
	// numeric segments, like the CLI's --arrays flag.
	ArrayPreferring bool
	// Safe enables the equality pre-check so redundant writes keep the
	// current document reference.
	Safe bool
	// HistoryLimit caps the undo stack; 0 keeps every edit.
	HistoryLimit int
	// YAMLIndent and LiteralBlockStrings shape the document view.
	YAMLIndent          int
	LiteralBlockStrings bool
	// Width and Height preset the window size until the first resize
	// message arrives.
	Width, Height int
}

// Editor is the interactive set-at-path screen: a YAML view of the
// document above a path input and a value input. Enter applies the write
// immutably, so undo is just a stack of previous roots.
type Editor struct {
	appName string
	source  string

	root    any
	history []any

	pathInput  textinput.Model
	valueInput textinput.Model
	focusValue bool
	rawString  bool
	expandView bool

	setOpts      []structured.Option
	yamlOpts     formatter.YAMLFormatOptions
	historyLimit int

	theme   Theme
	noColor bool

	width  int
	height int
	scroll int

	docLines []string
	suggests []string

	completeList []string
	completeIdx  int

	status     string
	statusKind statusKind

	showHelp bool
	accepted bool
	quitting bool
}

// New builds an editor over root. The document is not copied: every edit
// produces a new root via structural sharing and the original stays
// untouched on the history stack.
func New(root any, opts Options) *Editor {
	appName := strings.TrimSpace(opts.AppName)
	if appName == "" {
		appName = "kvset"
	}
	source := strings.TrimSpace(opts.Source)
	if source == "" {
		source = "stdin"
	}

	th := opts.Theme
	if th.KeyColor == nil {
		th = DefaultTheme()
	}

	pi := textinput.New()
	pi.Placeholder = "path (e.g. spec.containers[0].image)"
	pi.CharLimit = 500
	pi.SetWidth(64)
	pi.Prompt = ""
	pi.Focus()

	vi := textinput.New()
	vi.Placeholder = "value (scalar, JSON, or YAML)"
	vi.CharLimit = 2000
	vi.SetWidth(64)
	vi.Prompt = ""

	var setOpts []structured.Option
	if opts.ArrayPreferring {
		setOpts = append(setOpts, structured.WithArrayPreferring(true))
	}
	if opts.Safe {
		setOpts = append(setOpts,
			structured.WithSafe(true),
			structured.WithEquality(structured.Equivalent))
	}

	e := &Editor{
		appName:    appName,
		source:     source,
		root:       root,
		pathInput:  pi,
		valueInput: vi,
		setOpts:    setOpts,
		yamlOpts: formatter.YAMLFormatOptions{
			Indent:              opts.YAMLIndent,
			LiteralBlockStrings: opts.LiteralBlockStrings,
		},
		historyLimit: opts.HistoryLimit,
		theme:        th,
		noColor:      opts.NoColor,
		width:        opts.Width,
		height:       opts.Height,
	}
	if e.width <= 0 {
		e.width = 100
	}
	if e.height <= 0 {
		e.height = 30
	}
	th.Apply()
	e.applyLayout()
	e.refreshDoc()
	e.refreshSuggests()
	return e
}

// Root returns the current document, including every applied edit.
func (e *Editor) Root() any {
	return e.root
}

// Accepted reports whether the session ended with Esc (keep edits) rather
// than Ctrl+C (discard).
func (e *Editor) Accepted() bool {
	return e.accepted
}

// Edits returns how many applied writes can still be undone.
func (e *Editor) Edits() int {
	return len(e.history)
}

func (e *Editor) Init() tea.Cmd {
	return textinput.Blink
}

func (e *Editor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		e.width = msg.Width
		e.height = msg.Height
		e.applyLayout()
		e.clampScroll()
		return e, nil

	case tea.KeyMsg:
		keyStr := msg.String()
		if keyStr == "ctrl+c" || msg.Key().Code == 0x03 {
			e.accepted = false
			e.quitting = true
			return e, tea.Quit
		}

		if e.showHelp {
			switch keyStr {
			case "f1", "esc", "q", "enter":
				e.showHelp = false
			}
			return e, nil
		}

		switch keyStr {
		case "esc":
			e.accepted = true
			e.quitting = true
			return e, tea.Quit
		case "f1":
			e.showHelp = true
			return e, nil
		case "enter":
			e.applySet()
			return e, nil
		case "ctrl+z":
			e.undo()
			return e, nil
		case "ctrl+r":
			e.rawString = !e.rawString
			if e.rawString {
				e.setStatus("raw mode on: values stay strings", statusInfo)
			} else {
				e.setStatus("raw mode off: values parse as scalars or structures", statusInfo)
			}
			return e, nil
		case "ctrl+e":
			e.expandView = !e.expandView
			e.refreshDoc()
			if e.expandView {
				e.setStatus("expanded view: embedded JSON/YAML strings shown as structure", statusInfo)
			} else {
				e.setStatus("plain view", statusInfo)
			}
			return e, nil
		case "tab":
			e.completeOrCycle()
			return e, nil
		case "shift+tab":
			e.toggleFocus()
			return e, nil
		case "up":
			e.scrollBy(-1)
			return e, nil
		case "down":
			e.scrollBy(1)
			return e, nil
		case "pgup":
			e.scrollBy(-e.bodyHeight())
			return e, nil
		case "pgdown":
			e.scrollBy(e.bodyHeight())
			return e, nil
		case "ctrl+u":
			if e.focusValue {
				e.valueInput.SetValue("")
			} else {
				e.pathInput.SetValue("")
				e.refreshSuggests()
			}
			e.status = ""
			return e, nil
		}

		cmd := e.routeToInput(msg)
		return e, cmd

	default:
		cmd := e.routeToInput(msg)
		return e, cmd
	}
}

// routeToInput forwards a message to the focused text input and keeps the
// suggestion list in step with the path field.
func (e *Editor) routeToInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if e.focusValue {
		e.valueInput, cmd = e.valueInput.Update(msg)
		return cmd
	}
	before := e.pathInput.Value()
	e.pathInput, cmd = e.pathInput.Update(msg)
	if e.pathInput.Value() != before {
		e.refreshSuggests()
		e.completeList = nil
		e.status = ""
	}
	return cmd
}

// applySet performs the write described by the two inputs.
func (e *Editor) applySet() {
	path := strings.TrimSpace(e.pathInput.Value())
	if path == "" {
		e.setStatus("path required", statusError)
		return
	}

	raw := e.valueInput.Value()
	var value any = raw
	if !e.rawString {
		value = loader.ParseValue(raw)
	}

	next, err := structured.Set(e.root, path, value, e.setOpts...)
	if err != nil {
		e.setStatus(err.Error(), statusError)
		return
	}
	if structured.Identical(next, e.root) {
		// Safe-mode no-op: nothing changed, so nothing to undo.
		e.setStatus("value already in place", statusInfo)
		return
	}

	e.pushHistory(e.root)
	e.root = next
	e.refreshDoc()
	e.refreshSuggests()
	e.invalidateCompletion()
	e.setStatus("set "+structured.Parse(path).String(), statusSuccess)
}

func (e *Editor) pushHistory(prev any) {
	if e.historyLimit > 0 && len(e.history) >= e.historyLimit {
		copy(e.history, e.history[1:])
		e.history = e.history[:len(e.history)-1]
	}
	e.history = append(e.history, prev)
}

func (e *Editor) undo() {
	if len(e.history) == 0 {
		e.setStatus("nothing to undo", statusInfo)
		return
	}
	e.root = e.history[len(e.history)-1]
	e.history = e.history[:len(e.history)-1]
	e.refreshDoc()
	e.refreshSuggests()
	e.invalidateCompletion()
	e.setStatus("undo ("+strconv.Itoa(len(e.history))+" left)", statusInfo)
}

// completeOrCycle drives Tab: in the path field it completes against the
// document, cycling through the matches for the originally typed stem on
// repeated presses; with nothing to complete it moves focus to the value
// field. From the value field Tab moves focus back.
func (e *Editor) completeOrCycle() {
	if e.focusValue {
		e.toggleFocus()
		return
	}
	cur := e.pathInput.Value()
	if len(e.completeList) > 0 && cur == e.completeList[e.completeIdx] {
		e.completeIdx = (e.completeIdx + 1) % len(e.completeList)
		e.setPath(e.completeList[e.completeIdx])
		return
	}
	list := structured.Suggest(e.root, cur)
	if len(list) == 0 {
		e.toggleFocus()
		return
	}
	e.completeList = list
	e.completeIdx = 0
	e.setPath(list[0])
}

func (e *Editor) setPath(p string) {
	e.pathInput.SetValue(p)
	e.pathInput.SetCursor(len(p))
	e.refreshSuggests()
}

func (e *Editor) toggleFocus() {
	e.focusValue = !e.focusValue
	if e.focusValue {
		e.pathInput.Blur()
		e.valueInput.Focus()
	} else {
		e.valueInput.Blur()
		e.pathInput.Focus()
	}
}

func (e *Editor) setStatus(s string, kind statusKind) {
	e.status = s
	e.statusKind = kind
}

func (e *Editor) refreshSuggests() {
	e.suggests = structured.Suggest(e.root, e.pathInput.Value())
}

// invalidateCompletion drops the Tab cycling state after the document
// changes underneath it.
func (e *Editor) invalidateCompletion() {
	e.completeList = nil
	e.completeIdx = 0
}

// refreshDoc re-renders the YAML view after the root changes. The expanded
// view runs the display copy through RecursiveDecode; writes still target
// the unexpanded root.
func (e *Editor) refreshDoc() {
	view := e.root
	if e.expandView {
		view = loader.RecursiveDecode(view)
	}
	s, err := formatter.FormatYAML(view, e.yamlOpts)
	if err != nil {
		e.docLines = []string{"(unrenderable document: " + err.Error() + ")"}
		e.scroll = 0
		return
	}
	e.docLines = strings.Split(strings.TrimRight(s, "\n"), "\n")
	e.clampScroll()
}

func (e *Editor) applyLayout() {
	inputW := e.width - 10
	if inputW < 20 {
		inputW = 20
	}
	e.pathInput.SetWidth(inputW)
	e.valueInput.SetWidth(inputW)
}

func (e *Editor) bodyHeight() int {
	h := e.height - chromeHeight
	if h < minBodyHeight {
		h = minBodyHeight
	}
	return h
}

func (e *Editor) scrollBy(delta int) {
	e.scroll += delta
	e.clampScroll()
}

func (e *Editor) clampScroll() {
	max := len(e.docLines) - e.bodyHeight()
	if max < 0 {
		max = 0
	}
	if e.scroll > max {
		e.scroll = max
	}
	if e.scroll < 0 {
		e.scroll = 0
	}
}

func (e *Editor) View() tea.View {
	if e.quitting {
		return tea.NewView("")
	}

	var b strings.Builder
	b.WriteString(e.headerView())
	b.WriteByte('\n')
	if e.showHelp {
		b.WriteString(e.helpView())
	} else {
		b.WriteString(e.bodyView())
	}
	b.WriteByte('\n')
	b.WriteString(e.separatorView())
	b.WriteByte('\n')
	b.WriteString(e.inputView("path", &e.pathInput, !e.focusValue))
	b.WriteByte('\n')
	b.WriteString(e.inputView("value", &e.valueInput, e.focusValue))
	b.WriteByte('\n')
	b.WriteString(e.statusView())
	b.WriteByte('\n')
	b.WriteString(e.footerView())

	v := tea.NewView(b.String())
	v.AltScreen = true
	v.KeyboardEnhancements.ReportEventTypes = true
	return v
}

func (e *Editor) headerView() string {
	left := " " + e.appName + " · " + e.source
	right := ""
	if n := len(e.history); n == 1 {
		right = "1 edit "
	} else if n > 1 {
		right = strconv.Itoa(n) + " edits "
	}
	if e.rawString {
		right = "raw · " + right
	}
	gap := e.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		left = formatter.Truncate(left, e.width-lipgloss.Width(right)-1)
		gap = e.width - lipgloss.Width(left) - lipgloss.Width(right)
		if gap < 0 {
			gap = 0
		}
	}
	line := left + strings.Repeat(" ", gap) + right
	if e.noColor {
		return line
	}
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(e.theme.HeaderFG).
		Background(e.theme.HeaderBG).
		Render(line)
}

func (e *Editor) bodyView() string {
	h := e.bodyHeight()
	lines := make([]string, 0, h)
	for i := e.scroll; i < len(e.docLines) && len(lines) < h; i++ {
		lines = append(lines, e.docLine(e.docLines[i]))
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// docLine styles one YAML line, coloring the key before a ":" separator.
func (e *Editor) docLine(line string) string {
	line = formatter.Truncate(line, e.width)
	if e.noColor {
		return line
	}
	keyStyle := lipgloss.NewStyle().Foreground(e.theme.KeyColor)
	valStyle := lipgloss.NewStyle().Foreground(e.theme.ValueColor)
	idx := strings.Index(line, ": ")
	if idx < 0 {
		if strings.HasSuffix(line, ":") {
			return keyStyle.Render(line)
		}
		return valStyle.Render(line)
	}
	return keyStyle.Render(line[:idx+1]) + valStyle.Render(line[idx+1:])
}

func (e *Editor) separatorView() string {
	line := strings.Repeat("─", maxInt(e.width, 1))
	if e.noColor {
		return line
	}
	return lipgloss.NewStyle().Foreground(e.theme.SeparatorColor).Render(line)
}

func (e *Editor) inputView(label string, input *textinput.Model, focused bool) string {
	marker := "$"
	if focused {
		marker = "❯"
	}
	prefix := " " + formatter.PadRight(label, 5) + " " + marker + " "
	if !e.noColor {
		st := lipgloss.NewStyle().Foreground(e.theme.InputFG)
		if focused {
			st = st.Bold(true)
		}
		prefix = st.Render(prefix)
	}
	return prefix + input.View()
}

func (e *Editor) statusView() string {
	if e.status != "" {
		line := " " + formatter.Truncate(e.status, e.width-1)
		if e.noColor {
			return line
		}
		st := lipgloss.NewStyle().Foreground(e.theme.StatusColor)
		switch e.statusKind {
		case statusError:
			st = lipgloss.NewStyle().Foreground(e.theme.StatusError)
		case statusSuccess:
			st = lipgloss.NewStyle().Foreground(e.theme.StatusSuccess)
		}
		return st.Render(line)
	}

	if !e.focusValue && len(e.suggests) > 0 {
		shown := e.suggests
		if len(shown) > 4 {
			shown = shown[:4]
		}
		hint := " tab: " + strings.Join(shown, "  ")
		if len(e.suggests) > len(shown) {
			hint += "  …"
		}
		hint = formatter.Truncate(hint, e.width-1)
		if e.noColor {
			return hint
		}
		return lipgloss.NewStyle().Foreground(e.theme.ValueColor).Render(hint)
	}
	return ""
}

func (e *Editor) helpView() string {
	lines := []string{
		"",
		"  kvset editor",
		"",
		"  enter       apply the write at path",
		"  tab         complete the path against the document, or switch fields",
		"  shift+tab   switch between path and value",
		"  ctrl+z      undo the last write",
		"  ctrl+r      toggle raw mode (values stay strings)",
		"  ctrl+e      toggle expanded view of embedded JSON/YAML strings",
		"  ctrl+u      clear the focused field",
		"  up/down     scroll the document",
		"  f1          close this help",
		"  esc         finish and keep edits",
		"  ctrl+c      abort and discard edits",
	}
	h := e.bodyHeight()
	for len(lines) < h {
		lines = append(lines, "")
	}
	if len(lines) > h {
		lines = lines[:h]
	}
	st := lipgloss.NewStyle().Foreground(e.theme.ValueColor)
	for i, l := range lines {
		l = formatter.Truncate(l, e.width)
		if !e.noColor {
			l = st.Render(l)
		}
		lines[i] = l
	}
	return strings.Join(lines, "\n")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
