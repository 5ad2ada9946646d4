package runtime

import (
	"errors"
	"fmt"

	"github.com/tcmartin/promptflow/pkg/condition"
	"github.com/tcmartin/promptflow/pkg/providers"
	"github.com/tcmartin/promptflow/pkg/scope"
)

// UnknownTransformError reports a transform node referencing a function
// name the registry does not know. It fails the owning node, never the run.
type UnknownTransformError struct {
	Function string
}

func (e *UnknownTransformError) Error() string {
	return fmt.Sprintf("unknown transform function %q", e.Function)
}

// variableError marks a variable node failure (missing required value or a
// declared-type mismatch).
type variableError struct {
	err error
}

func (e *variableError) Error() string { return e.err.Error() }
func (e *variableError) Unwrap() error { return e.err }

// classifyError maps a node execution error onto the typed taxonomy
// recorded in NodeExecution.Error.
func classifyError(err error) *ErrorDetail {
	var unresolved *scope.UnresolvedReferenceError
	if errors.As(err, &unresolved) {
		return &ErrorDetail{Type: ErrTypeUnresolvedReference, Message: err.Error()}
	}

	var evaluation *condition.EvaluationError
	if errors.As(err, &evaluation) {
		return &ErrorDetail{Type: ErrTypeEvaluation, Message: err.Error()}
	}

	var provider *providers.ProviderError
	if errors.As(err, &provider) {
		if provider.Timeout {
			return &ErrorDetail{Type: ErrTypeTimeout, Message: err.Error()}
		}
		return &ErrorDetail{Type: ErrTypeProvider, Message: err.Error()}
	}

	var unknownTransform *UnknownTransformError
	if errors.As(err, &unknownTransform) {
		return &ErrorDetail{Type: ErrTypeUnknownTransform, Message: err.Error()}
	}

	var variable *variableError
	if errors.As(err, &variable) {
		return &ErrorDetail{Type: ErrTypeVariable, Message: err.Error()}
	}

	var transform *transformError
	if errors.As(err, &transform) {
		return &ErrorDetail{Type: ErrTypeTransform, Message: err.Error()}
	}

	return &ErrorDetail{Type: ErrTypeInternal, Message: err.Error()}
}

// transformError marks a known transform function that failed on its input.
type transformError struct {
	function string
	err      error
}

func (e *transformError) Error() string {
	return fmt.Sprintf("transform %q: %v", e.function, e.err)
}

func (e *transformError) Unwrap() error { return e.err }
