// Package cel evaluates the CEL programs behind --expr. An expression
// computes the replacement value for a write: it sees the loaded document
// as the variable "_" and its result is converted back to plain Go data
// before the setter runs.
package cel

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
	celext "github.com/google/cel-go/ext"
)

// Evaluator compiles and runs CEL expressions against a document root.
type Evaluator struct {
	env *cel.Env
}

// NewEvaluator builds an evaluator over the standard environment.
func NewEvaluator() (*Evaluator, error) {
	env, err := standardEnv()
	if err != nil {
		return nil, fmt.Errorf("cel environment: %w", err)
	}
	return &Evaluator{env: env}, nil
}

// Env exposes the underlying environment for embedders that compile their
// own programs.
func (e *Evaluator) Env() *cel.Env {
	return e.env
}

// standardEnv declares "_" as a dynamic variable and enables the string,
// encoder, list, and math extension libraries.
func standardEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("_", cel.DynType),
		celext.Strings(),
		celext.Encoders(),
		celext.Lists(),
		celext.Math(),
	)
}

// Evaluate compiles expr, binds root to "_", runs the program, and
// converts the result to plain Go data. Example expressions:
//
//	_.spec.replicas * 2
//	_.hosts.filter(h, h.endsWith(".internal"))
//	{"cpu": "100m", "memory": "64Mi"}
func (e *Evaluator) Evaluate(expr string, root interface{}) (interface{}, error) {
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("invalid expression: %w", issues.Err())
	}

	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program: %w", err)
	}

	out, _, err := prg.Eval(map[string]interface{}{"_": root})
	if err != nil {
		return nil, fmt.Errorf("evaluation failed: %w", err)
	}
	return toGo(out), nil
}

// toGo converts a CEL value into the plain form the setter works with:
// scalars to their Go equivalents, lists to []interface{}, maps to
// map[string]interface{} with stringified keys.
func toGo(val ref.Val) interface{} {
	if val == nil {
		return nil
	}

	switch v := val.(type) {
	case types.Bool:
		return bool(v)
	case types.Int:
		return int64(v)
	case types.Uint:
		return uint64(v)
	case types.Double:
		return float64(v)
	case types.String:
		return string(v)
	case types.Bytes:
		return []byte(v)
	case types.Null:
		return nil
	}

	if lister, ok := val.(traits.Lister); ok {
		return listToGo(lister)
	}
	if mapper, ok := val.(traits.Mapper); ok {
		return mapToGo(mapper)
	}

	// Timestamps, durations, and other opaque values keep their native
	// representation.
	return val.Value()
}

func listToGo(lister traits.Lister) []interface{} {
	size, _ := lister.Size().Value().(int64)
	out := make([]interface{}, 0, size)
	for i := int64(0); i < size; i++ {
		out = append(out, toGo(lister.Get(types.Int(i))))
	}
	return out
}

func mapToGo(mapper traits.Mapper) map[string]interface{} {
	out := make(map[string]interface{})
	it := mapper.Iterator()
	for it.HasNext() == types.True {
		key := it.Next()
		val, found := mapper.Find(key)
		if !found {
			continue
		}
		out[keyString(key)] = toGo(val)
	}
	return out
}

// keyString renders a map key. CEL map literals allow int and bool keys;
// document maps are string-keyed, so everything flattens to strings.
func keyString(key ref.Val) string {
	if s, ok := toGo(key).(string); ok {
		return s
	}
	return fmt.Sprintf("%v", key.Value())
}

// FunctionNames returns the callable function and macro names the standard
// environment exposes, sorted. Embedders list these for their own
// completion, so extension functions surface without manual updates.
func FunctionNames() ([]string, error) {
	env, err := standardEnv()
	if err != nil {
		return nil, fmt.Errorf("cel environment: %w", err)
	}

	seen := map[string]struct{}{}
	var names []string
	add := func(name string) {
		if isOperator(name) {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	for _, fn := range env.Functions() {
		add(fn.Name())
	}
	for _, m := range env.Macros() {
		add(m.Function())
	}
	sort.Strings(names)
	return names, nil
}

// isOperator filters out operator spellings and internal declarations
// (anything with an "@", like math.@max) that are not callable by name.
func isOperator(name string) bool {
	if strings.Contains(name, "@") {
		return true
	}
	switch name {
	case "!_", "-_", "_[_]":
		return true
	}
	return strings.HasPrefix(name, "_") && strings.HasSuffix(name, "_")
}
