// Package scripting provides JavaScript execution capabilities for flows.
package scripting

// ExpressionEvaluator evaluates a script snippet against a context of named
// values and returns the script's result as a Go value.
type ExpressionEvaluator interface {
	// Evaluate runs the script with the given context bound as globals
	Evaluate(script string, context map[string]any) (any, error)
}
