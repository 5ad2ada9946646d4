package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcmartin/promptflow/pkg/scope"
)

func newScope(t *testing.T, input map[string]any) *scope.Scope {
	t.Helper()
	return scope.NewScope(input, nil)
}

func TestEvaluateEquals(t *testing.T) {
	e := NewEvaluator()

	t.Run("string match", func(t *testing.T) {
		sc := newScope(t, map[string]any{"x": "5"})
		got, err := e.Evaluate(Condition{Left: "x", Operator: OpEquals, Right: "5"}, sc)
		require.NoError(t, err)
		assert.True(t, got)
	})

	t.Run("string mismatch", func(t *testing.T) {
		sc := newScope(t, map[string]any{"x": "6"})
		got, err := e.Evaluate(Condition{Left: "x", Operator: OpEquals, Right: "5"}, sc)
		require.NoError(t, err)
		assert.False(t, got)
	})

	t.Run("numeric string equals number", func(t *testing.T) {
		sc := newScope(t, map[string]any{"x": "5"})
		got, err := e.Evaluate(Condition{Left: "x", Operator: OpEquals, Right: 5}, sc)
		require.NoError(t, err)
		assert.True(t, got)
	})

	t.Run("opaque equality for non-numeric values", func(t *testing.T) {
		sc := newScope(t, map[string]any{"x": "hello"})
		got, err := e.Evaluate(Condition{Left: "x", Operator: OpEquals, Right: "hello"}, sc)
		require.NoError(t, err)
		assert.True(t, got)
	})

	t.Run("missing operand is an error, not false", func(t *testing.T) {
		sc := newScope(t, nil)
		_, err := e.Evaluate(Condition{Left: "x", Operator: OpEquals, Right: "5"}, sc)
		require.Error(t, err)

		var evalErr *EvaluationError
		assert.ErrorAs(t, err, &evalErr)
	})
}

func TestEvaluateNotEquals(t *testing.T) {
	e := NewEvaluator()
	sc := newScope(t, map[string]any{"x": "5"})

	got, err := e.Evaluate(Condition{Left: "x", Operator: OpNotEquals, Right: "6"}, sc)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestEvaluateContains(t *testing.T) {
	e := NewEvaluator()

	t.Run("substring", func(t *testing.T) {
		sc := newScope(t, map[string]any{"text": "hello world"})
		got, err := e.Evaluate(Condition{Left: "text", Operator: OpContains, Right: "world"}, sc)
		require.NoError(t, err)
		assert.True(t, got)
	})

	t.Run("collection membership", func(t *testing.T) {
		sc := newScope(t, map[string]any{"tags": []any{"urgent", "billing"}})
		got, err := e.Evaluate(Condition{Left: "tags", Operator: OpContains, Right: "urgent"}, sc)
		require.NoError(t, err)
		assert.True(t, got)

		got, err = e.Evaluate(Condition{Left: "tags", Operator: OpContains, Right: "spam"}, sc)
		require.NoError(t, err)
		assert.False(t, got)
	})

	t.Run("map key membership", func(t *testing.T) {
		sc := newScope(t, map[string]any{"user": map[string]any{"email": "a@b.c"}})
		got, err := e.Evaluate(Condition{Left: "user", Operator: OpContains, Right: "email"}, sc)
		require.NoError(t, err)
		assert.True(t, got)
	})

	t.Run("unsupported container", func(t *testing.T) {
		sc := newScope(t, map[string]any{"n": 42})
		_, err := e.Evaluate(Condition{Left: "n", Operator: OpContains, Right: "4"}, sc)
		require.Error(t, err)
	})
}

func TestEvaluateNumericComparison(t *testing.T) {
	e := NewEvaluator()

	t.Run("greater than with numeric strings", func(t *testing.T) {
		sc := newScope(t, map[string]any{"score": "10"})
		got, err := e.Evaluate(Condition{Left: "score", Operator: OpGreaterThan, Right: "9"}, sc)
		require.NoError(t, err)
		assert.True(t, got)
	})

	t.Run("less than", func(t *testing.T) {
		sc := newScope(t, map[string]any{"score": 3})
		got, err := e.Evaluate(Condition{Left: "score", Operator: OpLessThan, Right: 5}, sc)
		require.NoError(t, err)
		assert.True(t, got)
	})

	t.Run("non-numeric operand", func(t *testing.T) {
		sc := newScope(t, map[string]any{"score": "high"})
		_, err := e.Evaluate(Condition{Left: "score", Operator: OpGreaterThan, Right: 5}, sc)
		require.Error(t, err)

		var evalErr *EvaluationError
		require.ErrorAs(t, err, &evalErr)
		assert.Equal(t, OpGreaterThan, evalErr.Operator)
	})
}

func TestEvaluateExists(t *testing.T) {
	e := NewEvaluator()
	sc := newScope(t, map[string]any{"x": "anything"})

	got, err := e.Evaluate(Condition{Left: "x", Operator: OpExists}, sc)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = e.Evaluate(Condition{Left: "y", Operator: OpExists}, sc)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestEvaluateRightRef(t *testing.T) {
	e := NewEvaluator()
	sc := newScope(t, map[string]any{"a": "5", "b": 5})

	got, err := e.Evaluate(Condition{Left: "a", Operator: OpEquals, RightRef: "b"}, sc)
	require.NoError(t, err)
	assert.True(t, got)

	_, err = e.Evaluate(Condition{Left: "a", Operator: OpEquals, RightRef: "missing"}, sc)
	require.Error(t, err)
}

func TestEvaluateUnknownOperator(t *testing.T) {
	e := NewEvaluator()
	sc := newScope(t, map[string]any{"x": 1})

	_, err := e.Evaluate(Condition{Left: "x", Operator: "matches", Right: 1}, sc)
	require.Error(t, err)

	var evalErr *EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Contains(t, evalErr.Error(), "unknown operator")
}
