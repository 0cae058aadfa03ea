// Package tui exposes the interactive set-at-path editor for embedding.
// Host applications hand it a document root and get back the edited
// document; the original is never mutated, so the caller can diff or
// discard freely.
package tui

import (
	"io"
	"os"
	"strconv"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"

	"github.com/oakwood-commons/kvset/internal/config"
	itui "github.com/oakwood-commons/kvset/internal/tui"
)

// defaultFallbackTermWidth is used when terminal size cannot be detected.
const defaultFallbackTermWidth = 120

// DetectTerminalSize returns the best-effort terminal width and height by
// probing stdout, stderr, and stdin, then falling back to the COLUMNS
// environment variable. If detection fails completely it returns generous
// defaults (120, 24) to avoid overly narrow output in CI or non-TTY
// environments.
func DetectTerminalSize() (width int, height int) {
	fds := []uintptr{os.Stdout.Fd(), os.Stderr.Fd(), os.Stdin.Fd()}
	for _, fd := range fds {
		if w, h, err := term.GetSize(int(fd)); err == nil && (w > 0 || h > 0) {
			return w, h
		}
	}
	if col := os.Getenv("COLUMNS"); col != "" {
		if w, err := strconv.Atoi(col); err == nil && w > 0 {
			return w, 0
		}
	}
	return defaultFallbackTermWidth, 24
}

// Options configure an editor session.
type Options struct {
	// AppName appears in the editor header; empty defaults to "kvset".
	AppName string
	// Source labels where the document came from (a file name, "stdin").
	Source string
	// NoColor strips all styling.
	NoColor bool
	// Theme names a palette from the configuration; empty uses the
	// configured default.
	Theme string
	// ConfigPath points at an explicit config file; empty resolves the
	// standard locations and falls back to the embedded defaults.
	ConfigPath string
	// ArrayPreferring biases created containers toward sequences for
	// numeric path segments.
	ArrayPreferring bool
	// Safe skips writes whose value is already in place.
	Safe bool
	// Width and Height preset the window; zero auto-detects.
	Width, Height int
}

// Run opens the editor over root and blocks until the session ends. It
// returns the resulting document and whether the user kept their edits
// (Esc) or discarded them (Ctrl+C). The input root is returned unchanged
// on error or discard.
func Run(root any, opts Options, progOpts ...tea.ProgramOption) (any, bool, error) {
	cfg, err := config.Load(config.ResolvePath(opts.ConfigPath))
	if err != nil {
		return root, false, err
	}
	theme, err := itui.NamedTheme(cfg, opts.Theme)
	if err != nil {
		return root, false, err
	}

	width, height := opts.Width, opts.Height
	if width <= 0 || height <= 0 {
		w, h := DetectTerminalSize()
		if width <= 0 {
			width = w
		}
		if height <= 0 {
			height = h
		}
	}

	editor := itui.New(root, itui.Options{
		AppName:             opts.AppName,
		Source:              opts.Source,
		NoColor:             opts.NoColor,
		Theme:               theme,
		ArrayPreferring:     opts.ArrayPreferring,
		Safe:                opts.Safe,
		HistoryLimit:        cfg.HistoryLimitOrDefault(),
		YAMLIndent:          cfg.YAMLIndentOrDefault(),
		LiteralBlockStrings: cfg.LiteralBlocksOrDefault(),
		Width:               width,
		Height:              height,
	})

	prog := tea.NewProgram(editor, progOpts...)
	final, err := prog.Run()
	if err != nil {
		return root, false, err
	}
	if fe, ok := final.(*itui.Editor); ok && fe != nil && fe.Accepted() {
		return fe.Root(), true, nil
	}
	return root, false, nil
}

// WithIO returns tea.ProgramOptions to set custom input/output.
func WithIO(in io.Reader, out io.Writer) []tea.ProgramOption {
	opts := []tea.ProgramOption{}
	if in != nil {
		opts = append(opts, tea.WithInput(in))
	}
	if out != nil {
		opts = append(opts, tea.WithOutput(out))
	}
	return opts
}
