package scripting

import (
	"fmt"

	"github.com/dop251/goja"
)

// JSExpressionEvaluator is an ExpressionEvaluator backed by the goja
// JavaScript engine. Each Evaluate call runs in a fresh VM so scripts from
// concurrent batch rows cannot observe each other's globals.
type JSExpressionEvaluator struct{}

// NewJSExpressionEvaluator creates a new JSExpressionEvaluator.
func NewJSExpressionEvaluator() *JSExpressionEvaluator {
	return &JSExpressionEvaluator{}
}

// Evaluate runs the script with the context values bound as globals. The
// script is wrapped in a function so it may use return statements.
func (e *JSExpressionEvaluator) Evaluate(script string, context map[string]any) (any, error) {
	vm := goja.New()

	for key, value := range context {
		if err := vm.Set(key, value); err != nil {
			return nil, fmt.Errorf("failed to bind %q into script context: %w", key, err)
		}
	}

	wrapped := "(function() {\n" + script + "\n})()"

	result, err := vm.RunString(wrapped)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate script: %w", err)
	}

	return result.Export(), nil
}
