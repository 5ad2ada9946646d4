package runtime

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tcmartin/promptflow/pkg/scripting"
)

// TransformFunc applies a named pure function to a resolved input value.
// Transforms take a single input and produce a single output; richer data
// shaping goes through the "expression" transform.
type TransformFunc func(input any, args map[string]any) (any, error)

// TransformRegistry maps function names to their implementations.
type TransformRegistry struct {
	funcs map[string]TransformFunc
}

// NewTransformRegistry creates a registry populated with the built-in
// transform functions. The expression evaluator backs the "expression"
// transform; a nil evaluator leaves it unregistered.
func NewTransformRegistry(evaluator scripting.ExpressionEvaluator) *TransformRegistry {
	r := &TransformRegistry{funcs: make(map[string]TransformFunc)}

	r.Register("uppercase", func(input any, _ map[string]any) (any, error) {
		return strings.ToUpper(fmt.Sprintf("%v", input)), nil
	})
	r.Register("lowercase", func(input any, _ map[string]any) (any, error) {
		return strings.ToLower(fmt.Sprintf("%v", input)), nil
	})
	r.Register("trim", func(input any, _ map[string]any) (any, error) {
		return strings.TrimSpace(fmt.Sprintf("%v", input)), nil
	})
	r.Register("concat", transformConcat)
	r.Register("json_extract", transformJSONExtract)

	if evaluator != nil {
		r.Register("expression", func(input any, args map[string]any) (any, error) {
			script, ok := args["script"].(string)
			if !ok || script == "" {
				return nil, fmt.Errorf("expression transform requires a %q argument", "script")
			}
			return evaluator.Evaluate(script, map[string]any{
				"input": input,
				"args":  args,
			})
		})
	}

	return r
}

// Register adds or replaces a transform function.
func (r *TransformRegistry) Register(name string, fn TransformFunc) {
	r.funcs[name] = fn
}

// Apply runs the named function on the input. Unknown names return an
// UnknownTransformError, which fails the owning node rather than the run.
func (r *TransformRegistry) Apply(name string, input any, args map[string]any) (any, error) {
	fn, ok := r.funcs[name]
	if !ok {
		return nil, &UnknownTransformError{Function: name}
	}
	out, err := fn(input, args)
	if err != nil {
		return nil, &transformError{function: name, err: err}
	}
	return out, nil
}

// transformConcat appends the "with" argument to the input's string form,
// separated by the optional "separator" argument.
func transformConcat(input any, args map[string]any) (any, error) {
	with, ok := args["with"]
	if !ok {
		return nil, fmt.Errorf("concat transform requires a %q argument", "with")
	}
	separator := ""
	if s, ok := args["separator"].(string); ok {
		separator = s
	}
	return fmt.Sprintf("%v%s%v", input, separator, with), nil
}

// transformJSONExtract reads the dotted "field" path out of the input,
// decoding the input from JSON first when it arrives as a string.
func transformJSONExtract(input any, args map[string]any) (any, error) {
	field, ok := args["field"].(string)
	if !ok || field == "" {
		return nil, fmt.Errorf("json_extract transform requires a %q argument", "field")
	}

	current := input
	if text, ok := input.(string); ok {
		var decoded any
		if err := json.Unmarshal([]byte(text), &decoded); err != nil {
			return nil, fmt.Errorf("input is not valid JSON: %w", err)
		}
		current = decoded
	}

	for _, part := range strings.Split(field, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field path %q does not exist in input", field)
		}
		current, ok = m[part]
		if !ok {
			return nil, fmt.Errorf("field path %q does not exist in input", field)
		}
	}

	return current, nil
}
