// Package config holds the kvset configuration schema and the embedded
// defaults it is merged with. A user file never has to be complete: every
// field it omits keeps the embedded value.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

var (
	embeddedOnce sync.Once
	embedded     File
	embeddedErr  error
)

// File is the full configuration tree, mirroring default_config.yaml.
type File struct {
	App      AppConfig              `yaml:"app"`
	Defaults DefaultsConfig         `yaml:"defaults"`
	Editor   EditorConfig           `yaml:"editor"`
	Themes   map[string]ThemeConfig `yaml:"themes"`
}

// AppConfig carries tool metadata shown in help and the editor header.
type AppConfig struct {
	About AboutConfig `yaml:"about"`
}

type AboutConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// DefaultsConfig sets the out-of-the-box behavior of a plain kvset run.
// Pointer fields distinguish "absent from the user file" from an explicit
// false/zero during the merge.
type DefaultsConfig struct {
	// Output is the emission format when --output is not given:
	// auto, json, yaml, toml, ndjson, or raw.
	Output *string `yaml:"output"`
	// Arrays enables array-preferring container creation (see --arrays).
	Arrays *bool `yaml:"arrays"`
	// Safe enables the no-op pre-check on every write (see --safe).
	Safe *bool `yaml:"safe"`
}

// EditorConfig shapes the interactive editor.
type EditorConfig struct {
	// Theme names the palette from Themes the editor starts with.
	Theme *string `yaml:"theme"`
	// YAMLIndent is the indent width of the document pane.
	YAMLIndent *int `yaml:"yaml_indent"`
	// LiteralBlockStrings renders multi-line strings as YAML literal blocks.
	LiteralBlockStrings *bool `yaml:"literal_block_strings"`
	// HistoryLimit caps the undo stack; 0 means unlimited. Old roots off
	// the stack share their unchanged sub-structures with newer ones, so
	// even a deep stack stays cheap.
	HistoryLimit *int `yaml:"history_limit"`
}

// ThemeConfig is one named palette. Colors are lipgloss-compatible values:
// ANSI codes ("81") or hex ("#5fd7ff"). Empty fields fall back to the
// default theme's value.
type ThemeConfig struct {
	KeyColor       string `yaml:"key_color"`
	ValueColor     string `yaml:"value_color"`
	HeaderFG       string `yaml:"header_fg"`
	HeaderBG       string `yaml:"header_bg"`
	SeparatorColor string `yaml:"separator_color"`
	InputFG        string `yaml:"input_fg"`
	InputBG        string `yaml:"input_bg"`
	StatusColor    string `yaml:"status_color"`
	StatusError    string `yaml:"status_error"`
	StatusSuccess  string `yaml:"status_success"`
	FooterFG       string `yaml:"footer_fg"`
	FooterBG       string `yaml:"footer_bg"`
}

// DefaultYAML returns a copy of the embedded default config bytes, for
// `kvset config` style introspection that wants the commented original.
func DefaultYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// Default parses and returns the embedded default configuration.
func Default() (File, error) {
	embeddedOnce.Do(func() {
		if len(embeddedDefaultConfig) == 0 {
			embeddedErr = fmt.Errorf("embedded default config is empty")
			return
		}
		if err := yaml.Unmarshal(embeddedDefaultConfig, &embedded); err != nil {
			embeddedErr = fmt.Errorf("decode embedded default config: %w", err)
		}
	})
	return embedded, embeddedErr
}

// Load reads the config file at path and merges it over the embedded
// defaults. An empty path returns the defaults unchanged.
func Load(path string) (File, error) {
	base, err := Default()
	if err != nil {
		return File{}, err
	}
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read config file: %w", err)
	}
	var user File
	if err := yaml.Unmarshal(data, &user); err != nil {
		return base, fmt.Errorf("decode config file %s: %w", path, err)
	}
	return merge(base, user), nil
}

// ResolvePath picks the config file to load: an explicit flag value wins,
// else the XDG location, else ~/.config/kvset/config.yaml. Returns "" when
// no file exists, which Load treats as defaults-only.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		p := filepath.Join(dir, "kvset", "config.yaml")
		if fileExists(p) {
			return p
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, ".config", "kvset", "config.yaml")
		if fileExists(p) {
			return p
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// merge lays user over base field by field. Scalars replace only when the
// user set them; theme maps merge per named theme so a user file can
// override a single color of a built-in palette.
func merge(base, user File) File {
	out := base

	if user.App.About.Name != "" {
		out.App.About.Name = user.App.About.Name
	}
	if user.App.About.Description != "" {
		out.App.About.Description = user.App.About.Description
	}

	if user.Defaults.Output != nil {
		out.Defaults.Output = user.Defaults.Output
	}
	if user.Defaults.Arrays != nil {
		out.Defaults.Arrays = user.Defaults.Arrays
	}
	if user.Defaults.Safe != nil {
		out.Defaults.Safe = user.Defaults.Safe
	}

	if user.Editor.Theme != nil {
		out.Editor.Theme = user.Editor.Theme
	}
	if user.Editor.YAMLIndent != nil {
		out.Editor.YAMLIndent = user.Editor.YAMLIndent
	}
	if user.Editor.LiteralBlockStrings != nil {
		out.Editor.LiteralBlockStrings = user.Editor.LiteralBlockStrings
	}
	if user.Editor.HistoryLimit != nil {
		out.Editor.HistoryLimit = user.Editor.HistoryLimit
	}

	if len(user.Themes) > 0 {
		themes := make(map[string]ThemeConfig, len(base.Themes)+len(user.Themes))
		for name, th := range base.Themes {
			themes[name] = th
		}
		for name, th := range user.Themes {
			themes[name] = overlayTheme(themes[name], th)
		}
		out.Themes = themes
	}

	return out
}

func overlayTheme(base, user ThemeConfig) ThemeConfig {
	pick := func(b, u string) string {
		if u != "" {
			return u
		}
		return b
	}
	return ThemeConfig{
		KeyColor:       pick(base.KeyColor, user.KeyColor),
		ValueColor:     pick(base.ValueColor, user.ValueColor),
		HeaderFG:       pick(base.HeaderFG, user.HeaderFG),
		HeaderBG:       pick(base.HeaderBG, user.HeaderBG),
		SeparatorColor: pick(base.SeparatorColor, user.SeparatorColor),
		InputFG:        pick(base.InputFG, user.InputFG),
		InputBG:        pick(base.InputBG, user.InputBG),
		StatusColor:    pick(base.StatusColor, user.StatusColor),
		StatusError:    pick(base.StatusError, user.StatusError),
		StatusSuccess:  pick(base.StatusSuccess, user.StatusSuccess),
		FooterFG:       pick(base.FooterFG, user.FooterFG),
		FooterBG:       pick(base.FooterBG, user.FooterBG),
	}
}

// OutputOrDefault returns the configured default output format, or "auto".
func (f File) OutputOrDefault() string {
	if f.Defaults.Output != nil && *f.Defaults.Output != "" {
		return *f.Defaults.Output
	}
	return "auto"
}

// ArraysOrDefault returns the configured array-preferring default.
func (f File) ArraysOrDefault() bool {
	return f.Defaults.Arrays != nil && *f.Defaults.Arrays
}

// SafeOrDefault returns the configured safe-mode default.
func (f File) SafeOrDefault() bool {
	return f.Defaults.Safe != nil && *f.Defaults.Safe
}

// ThemeOrDefault returns the configured editor theme name, or "dark".
func (f File) ThemeOrDefault() string {
	if f.Editor.Theme != nil && *f.Editor.Theme != "" {
		return *f.Editor.Theme
	}
	return "dark"
}

// YAMLIndentOrDefault returns the configured editor indent, or 2.
func (f File) YAMLIndentOrDefault() int {
	if f.Editor.YAMLIndent != nil && *f.Editor.YAMLIndent > 0 {
		return *f.Editor.YAMLIndent
	}
	return 2
}

// LiteralBlocksOrDefault reports whether multi-line strings render as
// literal blocks; defaults to true.
func (f File) LiteralBlocksOrDefault() bool {
	if f.Editor.LiteralBlockStrings != nil {
		return *f.Editor.LiteralBlockStrings
	}
	return true
}

// HistoryLimitOrDefault returns the undo-stack cap, or 0 for unlimited.
func (f File) HistoryLimitOrDefault() int {
	if f.Editor.HistoryLimit != nil && *f.Editor.HistoryLimit >= 0 {
		return *f.Editor.HistoryLimit
	}
	return 0
}
