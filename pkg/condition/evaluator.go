// Package condition evaluates boolean conditions over resolved flow
// variables for conditional-branch nodes.
package condition

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/tcmartin/promptflow/pkg/scope"
)

// Operator is one of the supported condition operators.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpContains    Operator = "contains"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
	OpExists      Operator = "exists"
)

// Condition is a single comparison over the scope. Left is always a
// reference. The right operand is RightRef (a reference) when set,
// otherwise the Right literal.
type Condition struct {
	Left     string
	Operator Operator
	Right    any
	RightRef string
}

// EvaluationError reports a condition that could not be evaluated: an
// unknown operator, a non-numeric operand under a numeric operator, or an
// operand reference that failed to resolve. Resolution failures propagate
// as errors rather than being treated as false.
type EvaluationError struct {
	Operator Operator
	Reason   string
	Err      error
}

func (e *EvaluationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("condition %s: %s: %v", e.Operator, e.Reason, e.Err)
	}
	return fmt.Sprintf("condition %s: %s", e.Operator, e.Reason)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

// Evaluator evaluates conditions against a scope. It is stateless and safe
// for concurrent use.
type Evaluator struct{}

// NewEvaluator creates a condition evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Evaluate resolves both operands and applies the operator. The result is
// the boolean used by the engine to pick the taken branch.
func (e *Evaluator) Evaluate(cond Condition, sc *scope.Scope) (bool, error) {
	if cond.Operator == OpExists {
		_, ok := scope.ResolveLenient(cond.Left, sc)
		return ok, nil
	}

	left, err := scope.Resolve(cond.Left, sc)
	if err != nil {
		return false, &EvaluationError{Operator: cond.Operator, Reason: "left operand", Err: err}
	}

	right := cond.Right
	if cond.RightRef != "" {
		right, err = scope.Resolve(cond.RightRef, sc)
		if err != nil {
			return false, &EvaluationError{Operator: cond.Operator, Reason: "right operand", Err: err}
		}
	}

	switch cond.Operator {
	case OpEquals:
		return equalValues(left, right), nil
	case OpNotEquals:
		return !equalValues(left, right), nil
	case OpContains:
		return contains(cond.Operator, left, right)
	case OpGreaterThan, OpLessThan:
		return compareNumeric(cond.Operator, left, right)
	default:
		return false, &EvaluationError{Operator: cond.Operator, Reason: "unknown operator"}
	}
}

// equalValues compares numerically when both operands coerce to numbers
// (so "5" equals 5), and as opaque values otherwise.
func equalValues(left, right any) bool {
	lf, lok := scope.ToNumber(left)
	rf, rok := scope.ToNumber(right)
	if lok && rok {
		return lf == rf
	}
	return reflect.DeepEqual(left, right)
}

func contains(op Operator, left, right any) (bool, error) {
	switch container := left.(type) {
	case string:
		return strings.Contains(container, fmt.Sprintf("%v", right)), nil
	case []any:
		for _, item := range container {
			if equalValues(item, right) {
				return true, nil
			}
		}
		return false, nil
	case map[string]any:
		key, ok := right.(string)
		if !ok {
			key = fmt.Sprintf("%v", right)
		}
		_, exists := container[key]
		return exists, nil
	default:
		return false, &EvaluationError{
			Operator: op,
			Reason:   fmt.Sprintf("left operand of type %T is not a string or collection", left),
		}
	}
}

func compareNumeric(op Operator, left, right any) (bool, error) {
	lf, lok := scope.ToNumber(left)
	rf, rok := scope.ToNumber(right)
	if !lok || !rok {
		return false, &EvaluationError{
			Operator: op,
			Reason:   fmt.Sprintf("non-numeric operands (%T, %T)", left, right),
		}
	}
	if op == OpGreaterThan {
		return lf > rf, nil
	}
	return lf < rf, nil
}
