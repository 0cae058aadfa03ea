package core

import (
	"fmt"

	"github.com/oakwood-commons/kvset/internal/cel"
	"github.com/oakwood-commons/kvset/internal/formatter"
	"github.com/oakwood-commons/kvset/pkg/loader"
	"github.com/oakwood-commons/kvset/pkg/structured"
)

// Updater applies immutable set-at-path writes and path reads.
type Updater interface {
	Set(base, path, value interface{}, arrayPreferring, safe bool) (interface{}, error)
	Get(base, path interface{}) (interface{}, error)
}

// Evaluator evaluates expressions against a root node.
type Evaluator interface {
	Evaluate(expr string, root interface{}) (interface{}, error)
}

// Renderer defines output rendering behavior.
type Renderer interface {
	Render(node interface{}, format string) ([]byte, error)
	Table(node interface{}, width int, noColor bool) string
	Stringify(node interface{}) string
}

// Engine provides a minimal shared API for loading, updating, and rendering data.
type Engine struct {
	Updater   Updater
	Evaluator Evaluator
	Renderer  Renderer
	// ArrayPreferring biases fresh containers toward sequences for numeric
	// path segments.
	ArrayPreferring bool
	// Safe skips writes whose value is already in place, returning the
	// base unchanged.
	Safe bool
}

// Option configures the Engine.
type Option func(*Engine)

// WithUpdater sets a custom updater.
func WithUpdater(u Updater) Option {
	return func(e *Engine) {
		e.Updater = u
	}
}

// WithEvaluator sets a custom evaluator.
func WithEvaluator(ev Evaluator) Option {
	return func(e *Engine) {
		e.Evaluator = ev
	}
}

// WithRenderer sets a custom renderer.
func WithRenderer(r Renderer) Option {
	return func(e *Engine) {
		e.Renderer = r
	}
}

// WithArrayPreferring sets the container preference for numeric segments.
func WithArrayPreferring(enabled bool) Option {
	return func(e *Engine) {
		e.ArrayPreferring = enabled
	}
}

// WithSafe enables the equality pre-check on writes.
func WithSafe(enabled bool) Option {
	return func(e *Engine) {
		e.Safe = enabled
	}
}

// New creates an Engine with defaults.
func New(opts ...Option) (*Engine, error) {
	engine := &Engine{}
	for _, opt := range opts {
		opt(engine)
	}
	if engine.Evaluator == nil {
		eval, err := cel.NewEvaluator()
		if err != nil {
			return nil, err
		}
		engine.Evaluator = eval
	}
	if engine.Updater == nil {
		engine.Updater = defaultUpdater{}
	}
	if engine.Renderer == nil {
		engine.Renderer = defaultRenderer{}
	}
	return engine, nil
}

// LoadRoot parses input into a single root node; multi-doc inputs return a slice.
func LoadRoot(input string) (interface{}, error) {
	return loader.LoadRoot(input)
}

// LoadRootBytes parses input bytes into a single root node.
func LoadRootBytes(data []byte) (interface{}, error) {
	return loader.LoadRootBytes(data)
}

// LoadFile reads a file and parses it into a single root node.
func LoadFile(path string) (interface{}, error) {
	return loader.LoadFile(path)
}

// LoadObject accepts an already parsed object and returns it directly.
// Strings and byte slices are parsed using the shared loader to preserve auto-detection.
func LoadObject(value interface{}) (interface{}, error) {
	return loader.LoadObject(value)
}

// ParseValue decodes a command-line value the way the CLI does: structured
// literals become containers, YAML scalar rules apply otherwise, and
// anything ambiguous stays a string.
func ParseValue(raw string) interface{} {
	return loader.ParseValue(raw)
}

// Functions returns the callable function names the default expression
// environment exposes, sorted. Hosts embedding the Engine can feed the list
// into their own completion.
func Functions() ([]string, error) {
	return cel.FunctionNames()
}

// Set writes value at path in base and returns the new root. The base is
// never mutated; unchanged siblings are shared between old and new roots.
func (e *Engine) Set(base, path, value interface{}) (interface{}, error) {
	e.ensureUpdater()
	if e == nil || e.Updater == nil {
		return nil, fmt.Errorf("updater is not configured")
	}
	return e.Updater.Set(base, path, value, e.ArrayPreferring, e.Safe)
}

// Get reads the value at path in base.
func (e *Engine) Get(base, path interface{}) (interface{}, error) {
	e.ensureUpdater()
	if e == nil || e.Updater == nil {
		return nil, fmt.Errorf("updater is not configured")
	}
	return e.Updater.Get(base, path)
}

// Evaluate runs the evaluator against the provided root node.
func (e *Engine) Evaluate(expr string, root interface{}) (interface{}, error) {
	if e == nil || e.Evaluator == nil {
		return nil, fmt.Errorf("evaluator is not configured")
	}
	return e.Evaluator.Evaluate(expr, root)
}

// Render serializes node in the named format ("json", "yaml", "toml",
// "ndjson", "raw").
func (e *Engine) Render(node interface{}, format string) ([]byte, error) {
	e.ensureRenderer()
	if e == nil || e.Renderer == nil {
		return nil, fmt.Errorf("renderer is not configured")
	}
	return e.Renderer.Render(node, format)
}

// Table renders a two-column KEY/VALUE table for the node.
func (e *Engine) Table(node interface{}, width int, noColor bool) string {
	e.ensureRenderer()
	if e == nil || e.Renderer == nil {
		return ""
	}
	return e.Renderer.Table(node, width, noColor)
}

// Stringify renders a node into a display string.
func (e *Engine) Stringify(node interface{}) string {
	e.ensureRenderer()
	if e == nil || e.Renderer == nil {
		return ""
	}
	return e.Renderer.Stringify(node)
}

type defaultUpdater struct{}

func (defaultUpdater) Set(base, path, value interface{}, arrayPreferring, safe bool) (interface{}, error) {
	return structured.Set(base, path, value,
		structured.WithArrayPreferring(arrayPreferring),
		structured.WithSafe(safe),
		structured.WithEquality(structured.Equivalent))
}

func (defaultUpdater) Get(base, path interface{}) (interface{}, error) {
	return structured.Get(base, path)
}

type defaultRenderer struct{}

func (defaultRenderer) Render(node interface{}, format string) ([]byte, error) {
	f, err := formatter.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return formatter.Emit(node, f)
}

func (defaultRenderer) Table(node interface{}, width int, noColor bool) string {
	return formatter.RenderKVTable(node, formatter.KVTableOptions{Width: width, NoColor: noColor})
}

func (defaultRenderer) Stringify(node interface{}) string {
	return formatter.Stringify(node)
}

func (e *Engine) ensureUpdater() {
	if e == nil {
		return
	}
	if e.Updater == nil {
		e.Updater = defaultUpdater{}
	}
}

func (e *Engine) ensureRenderer() {
	if e == nil {
		return
	}
	if e.Renderer == nil {
		e.Renderer = defaultRenderer{}
	}
}
