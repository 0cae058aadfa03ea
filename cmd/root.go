package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/kvset/internal/cel"
	"github.com/oakwood-commons/kvset/internal/config"
	"github.com/oakwood-commons/kvset/internal/formatter"
	"github.com/oakwood-commons/kvset/internal/limiter"
	"github.com/oakwood-commons/kvset/pkg/loader"
	"github.com/oakwood-commons/kvset/pkg/logger"
	"github.com/oakwood-commons/kvset/pkg/settings"
	"github.com/oakwood-commons/kvset/pkg/structured"
	"github.com/oakwood-commons/kvset/pkg/tui"
)

// errShowHelp is returned by readInput when no input is provided and help should be shown.
var errShowHelp = errors.New("no input provided")

var (
	interactive   bool
	output        string
	expression    string
	rawString     bool
	setPairs      []string
	getMode       bool
	inPlace       bool
	arraysFlag    bool
	safeFlag      bool
	limitRecords  int
	offsetRecords int
	tailRecords   int
	tableWidth    int
	themeName     string
	configFile    string
	noColor       bool
	debug         bool
	logLevel      int8

	rootCtx = context.Background()
)

// inputDoc is the document under edit plus the positional args left after
// the optional file name has been consumed.
type inputDoc struct {
	data      []byte
	path      string // file path; empty when reading stdin
	source    string // display label: the file name or "stdin"
	fromStdin bool
	rest      []string
}

// write is one pending set operation.
type write struct {
	path  string
	value interface{}
}

var rootCmd = &cobra.Command{
	Use:   "kvset [flags] [file] PATH [VALUE]",
	Short: cliShortHelp(),
	Long:  cliLongHelp(),
	Example: "\n  kvset config.yaml spec.replicas 5\n" +
		"  kvset config.json spec '{\"replicas\": 3}'\n" +
		"  cat config.yaml | kvset spec.replicas 5\n" +
		"  kvset -w config.toml server.port 9090\n" +
		"  kvset --set a.b=1 --set 'items[0]=first' config.yaml\n" +
		"  kvset config.yaml spec.replicas -e '_.spec.replicas * 2'\n" +
		"  kvset --get config.yaml spec -o table\n" +
		"  kvset -i config.yaml\n",
	Args:          cobra.MaximumNArgs(3),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		// Map the CLI debug flag to the log level: --debug wins over --log-level.
		level := logLevel
		if debug {
			level = -1
		}
		lgr := logger.Get(level)
		lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())

		params := settings.NewCliParams()
		params.MinLogLevel = level
		params.NoColor = noColor
		rootCtx = settings.IntoContext(logger.WithLogger(context.Background(), lgr), params)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		lgr := logger.FromContext(rootCtx)

		limits := limiter.Config{Limit: limitRecords, Offset: offsetRecords, Tail: tailRecords}
		if err := limits.Validate(); err != nil {
			return err
		}
		if limits.IsActive() && !getMode {
			return errors.New("--limit, --offset, and --tail apply to --get output only")
		}
		if output == "table" && !getMode {
			return errors.New("table output is only available with --get")
		}
		if expression != "" && rawString {
			return errors.New("--string and --expr are mutually exclusive")
		}
		if getMode && (len(setPairs) > 0 || expression != "") {
			return errors.New("--get reads a value; it does not combine with --set or --expr")
		}

		cfg, err := config.Load(config.ResolvePath(configFile))
		if err != nil {
			return err
		}
		// Flags fall back to configured defaults when not set on the command line.
		outputFormat := output
		if !cmd.Flags().Changed("output") {
			outputFormat = cfg.OutputOrDefault()
		}
		arrayPreferring := arraysFlag
		if !cmd.Flags().Changed("arrays") {
			arrayPreferring = cfg.ArraysOrDefault()
		}
		safeMode := safeFlag
		if !cmd.Flags().Changed("safe") {
			safeMode = cfg.SafeOrDefault()
		}

		in, err := readInput(cmd, args)
		if err != nil {
			if errors.Is(err, errShowHelp) {
				return cmd.Help()
			}
			return err
		}
		if inPlace && in.path == "" {
			return errors.New("in-place editing requires a file argument")
		}
		if params, ok := settings.FromContext(rootCtx); ok {
			params.Input = settings.InputSettings{
				FromStdin: in.fromStdin,
				FromFile:  !in.fromStdin,
				Path:      in.path,
				InPlace:   inPlace,
			}
		}

		root, err := loader.LoadRootBytes(in.data)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", in.source, err)
		}
		detected := formatter.DetectFormat(in.path, in.data)
		lgr.V(1).Info("document loaded", logger.SourceKey, in.source, logger.FormatKey, string(detected))

		if interactive {
			return runInteractive(cmd, cfg, root, in, outputFormat, detected, arrayPreferring, safeMode)
		}
		if getMode {
			return runGet(cmd, cfg, root, in.rest, limits, outputFormat, detected)
		}

		writes, err := collectWrites(in.rest, root)
		if err != nil {
			return err
		}
		result := root
		for _, wr := range writes {
			result, err = structured.Set(result, wr.path, wr.value,
				structured.WithArrayPreferring(arrayPreferring),
				structured.WithSafe(safeMode),
				structured.WithEquality(structured.Equivalent))
			if err != nil {
				return fmt.Errorf("cannot set %q: %w", wr.path, err)
			}
			lgr.V(1).Info("value written", logger.PathKey, wr.path)
		}
		if inPlace && safeMode && len(writes) > 0 && structured.Identical(result, root) {
			lgr.V(1).Info("no change, file left untouched", logger.SourceKey, in.source)
			return nil
		}
		return emitResult(cmd, result, outputFormat, detected, in)
	},
}

// readInput decides where the document comes from. A first positional that
// names an existing file wins; otherwise piped stdin is the document and
// every positional is a PATH or VALUE. No file and no pipe means help.
func readInput(cmd *cobra.Command, args []string) (inputDoc, error) {
	stdin := cmd.InOrStdin()
	piped := stdinPiped(stdin)

	if len(args) > 0 {
		useFile := !piped
		if piped {
			if st, err := os.Stat(args[0]); err == nil && !st.IsDir() {
				useFile = true
			}
		}
		if useFile {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return inputDoc{}, fmt.Errorf("failed to read file %s: %w", args[0], err)
			}
			return inputDoc{data: data, path: args[0], source: args[0], rest: args[1:]}, nil
		}
	}

	if !piped {
		return inputDoc{}, errShowHelp
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return inputDoc{}, fmt.Errorf("failed to read from stdin: %w", err)
	}
	if len(data) == 0 {
		data = []byte("{}")
	}
	return inputDoc{data: data, source: "stdin", fromStdin: true, rest: args}, nil
}

// collectWrites turns the positional PATH/VALUE or the --set pairs into the
// ordered list of writes to apply.
func collectWrites(rest []string, root interface{}) ([]write, error) {
	if len(setPairs) > 0 {
		if len(rest) > 0 {
			return nil, errors.New("use positional PATH VALUE or --set pairs, not both")
		}
		if expression != "" {
			return nil, errors.New("--expr computes a single value; it does not combine with --set")
		}
		writes := make([]write, 0, len(setPairs))
		for _, pair := range setPairs {
			path, raw, ok := strings.Cut(pair, "=")
			if !ok || path == "" {
				return nil, fmt.Errorf("invalid --set %q (want PATH=VALUE)", pair)
			}
			writes = append(writes, write{path: path, value: decodeValue(raw)})
		}
		return writes, nil
	}

	switch len(rest) {
	case 0:
		// No writes: the document is re-emitted as-is, which converts
		// between formats with -o.
		return nil, nil
	case 1:
		if expression == "" {
			return nil, fmt.Errorf("missing VALUE for path %q (pass a value, --expr, or --get)", rest[0])
		}
		val, err := evalExpression(expression, root)
		if err != nil {
			return nil, err
		}
		return []write{{path: rest[0], value: val}}, nil
	case 2:
		if expression != "" {
			return nil, errors.New("--expr replaces VALUE; drop the positional value")
		}
		return []write{{path: rest[0], value: decodeValue(rest[1])}}, nil
	default:
		return nil, fmt.Errorf("unexpected arguments: %v", rest[2:])
	}
}

func decodeValue(raw string) interface{} {
	if rawString {
		return raw
	}
	return loader.ParseValue(raw)
}

func evalExpression(expr string, root interface{}) (interface{}, error) {
	eval, err := cel.NewEvaluator()
	if err != nil {
		return nil, err
	}
	out, err := eval.Evaluate(expr, root)
	if err != nil {
		return nil, fmt.Errorf("cannot evaluate expression: %w", err)
	}
	return out, nil
}

func runGet(cmd *cobra.Command, cfg config.File, root interface{}, rest []string, limits limiter.Config, outputFormat string, detected formatter.Format) error {
	if len(rest) == 0 {
		return errors.New("--get requires a PATH argument")
	}
	if len(rest) > 1 {
		return fmt.Errorf("unexpected arguments after path: %v", rest[1:])
	}
	path := rest[0]
	node, err := structured.Get(root, path)
	if err != nil {
		return fmt.Errorf("cannot read %q: %w", path, err)
	}
	node = limits.Apply(node)

	if outputFormat == "table" {
		if err := applyThemeByName(cfg, themeName); err != nil {
			return err
		}
		width := tableWidth
		if width <= 0 {
			width, _ = tui.DetectTerminalSize()
		}
		tbl := formatter.RenderKVTable(node, formatter.KVTableOptions{
			Width:   width,
			NoColor: noColor,
			Title:   appName(cfg),
			Path:    structured.Parse(path).String(),
		})
		fmt.Fprint(cmd.OutOrStdout(), tbl)
		return nil
	}

	f, err := formatter.ParseFormat(outputFormat)
	if err != nil {
		return err
	}
	if f == formatter.Auto {
		f = detected
		// A scalar leaf prints raw under auto, so reads pipe cleanly.
		if !structured.IsStructural(node) {
			f = formatter.Raw
		}
	}
	out, err := formatter.Emit(node, f)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func runInteractive(cmd *cobra.Command, cfg config.File, root interface{}, in inputDoc, outputFormat string, detected formatter.Format, arrayPreferring, safeMode bool) error {
	if len(in.rest) > 0 || len(setPairs) > 0 {
		return errors.New("interactive mode edits in the TUI; drop the PATH/VALUE arguments")
	}
	if in.fromStdin {
		return errors.New("interactive mode requires a file argument (stdin is the document, not a terminal)")
	}
	edited, accepted, err := tui.Run(root, tui.Options{
		AppName:         appName(cfg),
		Source:          in.source,
		NoColor:         noColor,
		Theme:           themeName,
		ConfigPath:      configFile,
		ArrayPreferring: arrayPreferring,
		Safe:            safeMode,
	})
	if err != nil {
		return err
	}
	if !accepted {
		return nil
	}
	return emitResult(cmd, edited, outputFormat, detected, in)
}

func emitResult(cmd *cobra.Command, root interface{}, outputFormat string, detected formatter.Format, in inputDoc) error {
	f, err := formatter.ParseFormat(outputFormat)
	if err != nil {
		return err
	}
	if f == formatter.Auto {
		f = detected
	}
	out, err := formatter.Emit(root, f)
	if err != nil {
		return err
	}
	if params, ok := settings.FromContext(rootCtx); ok && params.Input.InPlace {
		return writeInPlace(in.path, out)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print kvset version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), cliVersionString())
		return nil
	},
}

// configCmd groups configuration-related subcommands similar to gh-style CLIs.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage kvset configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Show help when invoked without a subcommand (gh-style UX)
		return cmd.Help()
	},
}

var configOutput string

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show merged configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runConfigView(cmd)
	},
}

var configThemesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List available themes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runThemesList(cmd.OutOrStdout())
	},
}

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List available themes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runThemesList(cmd.OutOrStdout())
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() { //nolint:gochecknoinits
	rootCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "edit the document in the interactive editor")
	rootCmd.Flags().StringVarP(&output, "output", "o", "auto", "output format: auto|json|yaml|toml|ndjson|raw (and table with --get)")
	rootCmd.Flags().StringVarP(&expression, "expr", "e", "", "compute the value with a CEL expression; '_' is the loaded document")
	rootCmd.Flags().BoolVar(&rawString, "string", false, "treat VALUE as a literal string (skip decoding)")
	rootCmd.Flags().StringArrayVar(&setPairs, "set", nil, "write PATH=VALUE (repeatable, applied left to right)")
	rootCmd.Flags().BoolVar(&getMode, "get", false, "read the value at PATH instead of writing")
	rootCmd.Flags().BoolVarP(&inPlace, "in-place", "w", false, "rewrite the input file instead of printing")
	rootCmd.Flags().BoolVar(&arraysFlag, "arrays", false, "create sequences for numeric path segments in missing levels")
	rootCmd.Flags().BoolVar(&safeFlag, "safe", false, "skip writes whose value is already in place")
	rootCmd.Flags().IntVar(&limitRecords, "limit", 0, "show only this many entries of a --get collection")
	rootCmd.Flags().IntVar(&offsetRecords, "offset", 0, "skip the first N entries of a --get collection")
	rootCmd.Flags().IntVar(&tailRecords, "tail", 0, "show the last N entries (mutually exclusive with --limit)")
	rootCmd.Flags().IntVar(&tableWidth, "width", 0, "output width for --get tables (0 = detect)")
	rootCmd.Flags().StringVar(&themeName, "theme", "", "theme name (default from config; see 'kvset themes')")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a YAML config file (defaults, themes)")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "disable color output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().Int8Var(&logLevel, "log-level", 0, "minimum log level (zap levels; negative is more verbose)")
	rootCmd.Version = cliVersionString()

	configGetCmd.Flags().StringVarP(&configOutput, "output", "o", "yaml", "config output format: yaml|json")
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configThemesCmd)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(themesCmd)
}
