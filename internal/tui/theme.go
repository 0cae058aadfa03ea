package tui

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/kvset/internal/config"
	"github.com/oakwood-commons/kvset/internal/formatter"
)

// Theme holds the editor palette. Zero fields fall back to DefaultTheme
// when applied.
type Theme struct {
	KeyColor       color.Color
	ValueColor     color.Color
	HeaderFG       color.Color
	HeaderBG       color.Color
	SeparatorColor color.Color
	InputFG        color.Color
	InputBG        color.Color
	StatusColor    color.Color
	StatusError    color.Color
	StatusSuccess  color.Color
	FooterFG       color.Color
	FooterBG       color.Color
}

// DefaultTheme is the hard-coded dark palette, kept in sync with the
// embedded default configuration so the editor looks the same whether or
// not the config file loads.
func DefaultTheme() Theme {
	return Theme{
		KeyColor:       lipgloss.Color("81"),
		ValueColor:     lipgloss.Color("246"),
		HeaderFG:       lipgloss.Color("81"),
		HeaderBG:       lipgloss.Color("236"),
		SeparatorColor: lipgloss.Color("238"),
		InputFG:        lipgloss.Color("252"),
		InputBG:        lipgloss.Color("236"),
		StatusColor:    lipgloss.Color("81"),
		StatusError:    lipgloss.Color("203"),
		StatusSuccess:  lipgloss.Color("114"),
		FooterFG:       lipgloss.Color("244"),
		FooterBG:       lipgloss.Color("236"),
	}
}

// ThemeFromConfig builds a Theme from its configuration form. Empty color
// tokens keep the default palette's value.
func ThemeFromConfig(tc config.ThemeConfig) Theme {
	th := DefaultTheme()
	set := func(val string, dst *color.Color) {
		if strings.TrimSpace(val) != "" {
			*dst = lipgloss.Color(val)
		}
	}
	set(tc.KeyColor, &th.KeyColor)
	set(tc.ValueColor, &th.ValueColor)
	set(tc.HeaderFG, &th.HeaderFG)
	set(tc.HeaderBG, &th.HeaderBG)
	set(tc.SeparatorColor, &th.SeparatorColor)
	set(tc.InputFG, &th.InputFG)
	set(tc.InputBG, &th.InputBG)
	set(tc.StatusColor, &th.StatusColor)
	set(tc.StatusError, &th.StatusError)
	set(tc.StatusSuccess, &th.StatusSuccess)
	set(tc.FooterFG, &th.FooterFG)
	set(tc.FooterBG, &th.FooterBG)
	return th
}

// NamedTheme resolves a theme by name from the merged configuration.
// Unknown names return an error listing what is available.
func NamedTheme(cfg config.File, name string) (Theme, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = cfg.ThemeOrDefault()
	}
	if tc, ok := cfg.Themes[name]; ok {
		return ThemeFromConfig(tc), nil
	}
	if len(cfg.Themes) == 0 {
		return Theme{}, fmt.Errorf("no themes configured")
	}
	names := make([]string, 0, len(cfg.Themes))
	for n := range cfg.Themes {
		names = append(names, n)
	}
	sort.Strings(names)
	return Theme{}, fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(names, ", "))
}

// Apply pushes the palette into the formatter so CLI tables rendered
// outside the editor use the same colors.
func (t Theme) Apply() {
	formatter.SetTableTheme(formatter.TableColors{
		HeaderFG:       t.HeaderFG,
		HeaderBG:       t.HeaderBG,
		KeyColor:       t.KeyColor,
		ValueColor:     t.ValueColor,
		SeparatorColor: t.SeparatorColor,
		StatusColor:    t.StatusColor,
	})
}
