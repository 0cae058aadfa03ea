package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/kvset/internal/config"
	itui "github.com/oakwood-commons/kvset/internal/tui"
	"github.com/oakwood-commons/kvset/pkg/settings"
)

// cliVersionString builds a human-readable version string for CLI output and Cobra's --version flag.
func cliVersionString() string {
	cfg, _ := config.Load(config.ResolvePath(""))
	name := appName(cfg)
	return fmt.Sprintf("%s %s (commit %s, go %s)",
		name,
		settings.VersionInformation.BuildVersion,
		settings.VersionInformation.Commit,
		runtime.Version())
}

func cliShortHelp() string {
	return fmt.Sprintf("%s - set values in YAML/JSON/TOML documents without disturbing the rest", settings.CliBinaryName)
}

func cliLongHelp() string {
	return fmt.Sprintf(`%s writes a value at a dotted path inside a YAML, JSON, TOML, or NDJSON
document and prints the result, leaving every untouched branch exactly as it was.
Missing intermediate levels are created on the way down; numeric segments index
into sequences that already exist and, with --arrays, create new ones.

The document comes from a file argument or from stdin. Values decode the way the
source format would read them (42 is a number, "42" stays a string); use --string
to force a literal, or --expr to compute the value with a CEL expression where
'_' is the loaded document.

Reads use --get, which prints the value at a path, as raw text for scalars or in
the document's format for maps and sequences; -o table renders a bordered
key/value view instead.`, settings.CliBinaryName)
}

// appName returns the display name from config, falling back to the binary name.
func appName(cfg config.File) string {
	if name := cfg.App.About.Name; name != "" {
		return name
	}
	return settings.CliBinaryName
}

// applyThemeByName resolves a theme against the merged config and installs it
// as the package-level style set used by table rendering.
func applyThemeByName(cfg config.File, name string) error {
	theme, err := itui.NamedTheme(cfg, name)
	if err != nil {
		return err
	}
	theme.Apply()
	return nil
}

// stdinPiped reports whether the command's input carries piped data. Readers
// injected by tests are not files and always count as piped.
func stdinPiped(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return true
	}
	st, err := f.Stat()
	if err != nil {
		return false
	}
	return (st.Mode() & os.ModeCharDevice) == 0
}

// writeInPlace rewrites path with data, keeping the file's permission bits.
func writeInPlace(path string, data []byte) error {
	perm := os.FileMode(0o644)
	if st, err := os.Stat(path); err == nil {
		perm = st.Mode().Perm()
	}
	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return nil
}

// runThemesList prints the available themes from merged configuration.
func runThemesList(w io.Writer) error {
	cfg, err := config.Load(config.ResolvePath(configFile))
	if err != nil {
		return err
	}
	names := make([]string, 0, len(cfg.Themes))
	for name := range cfg.Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintf(w, "Available themes (default: %s):\n", cfg.ThemeOrDefault())
	for _, name := range names {
		fmt.Fprintf(w, " - %s\n", name)
	}
	return nil
}

// runConfigView prints the configuration honoring --output. It prefers the
// user's config file verbatim, preserving comments. If no user config is
// found, it falls back to the embedded default, also verbatim.
func runConfigView(cmd *cobra.Command) error {
	resolved := config.ResolvePath(configFile)
	var raw []byte
	if resolved != "" {
		var err error
		raw, err = os.ReadFile(resolved)
		if err != nil {
			return fmt.Errorf("failed to read config file %s: %w", resolved, err)
		}
	} else {
		raw = config.DefaultYAML()
	}

	switch configOutput {
	case "yaml", "raw":
		if len(raw) == 0 || raw[len(raw)-1] != '\n' {
			raw = append(raw, '\n')
		}
		_, err := cmd.OutOrStdout().Write(raw)
		return err
	case "json":
		var obj interface{}
		if err := yaml.Unmarshal(raw, &obj); err != nil {
			return fmt.Errorf("failed to decode config for json view: %w", err)
		}
		data, err := json.MarshalIndent(obj, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	default:
		return fmt.Errorf("unknown config output format %q (want yaml or json)", configOutput)
	}
}
