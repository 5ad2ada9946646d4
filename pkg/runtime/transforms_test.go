package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcmartin/promptflow/pkg/scripting"
)

func testRegistry() *TransformRegistry {
	return NewTransformRegistry(scripting.NewJSExpressionEvaluator())
}

func TestTransformBuiltins(t *testing.T) {
	r := testRegistry()

	t.Run("uppercase", func(t *testing.T) {
		out, err := r.Apply("uppercase", "hello", nil)
		require.NoError(t, err)
		assert.Equal(t, "HELLO", out)
	})

	t.Run("lowercase", func(t *testing.T) {
		out, err := r.Apply("lowercase", "HELLO", nil)
		require.NoError(t, err)
		assert.Equal(t, "hello", out)
	})

	t.Run("trim", func(t *testing.T) {
		out, err := r.Apply("trim", "  padded  ", nil)
		require.NoError(t, err)
		assert.Equal(t, "padded", out)
	})

	t.Run("concat", func(t *testing.T) {
		out, err := r.Apply("concat", "hello", map[string]any{"with": "world", "separator": " "})
		require.NoError(t, err)
		assert.Equal(t, "hello world", out)
	})

	t.Run("concat requires with", func(t *testing.T) {
		_, err := r.Apply("concat", "hello", nil)
		require.Error(t, err)
	})
}

func TestTransformJSONExtract(t *testing.T) {
	r := testRegistry()

	t.Run("from JSON string", func(t *testing.T) {
		out, err := r.Apply("json_extract", `{"user":{"name":"Ada"}}`, map[string]any{"field": "user.name"})
		require.NoError(t, err)
		assert.Equal(t, "Ada", out)
	})

	t.Run("from map input", func(t *testing.T) {
		out, err := r.Apply("json_extract", map[string]any{"score": 7.0}, map[string]any{"field": "score"})
		require.NoError(t, err)
		assert.Equal(t, 7.0, out)
	})

	t.Run("missing field", func(t *testing.T) {
		_, err := r.Apply("json_extract", `{"a":1}`, map[string]any{"field": "b"})
		require.Error(t, err)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := r.Apply("json_extract", "not json", map[string]any{"field": "a"})
		require.Error(t, err)
	})
}

func TestTransformExpression(t *testing.T) {
	r := testRegistry()

	out, err := r.Apply("expression", "hello", map[string]any{
		"script": `return input.split("").reverse().join("")`,
	})
	require.NoError(t, err)
	assert.Equal(t, "olleh", out)

	_, err = r.Apply("expression", "x", map[string]any{})
	require.Error(t, err)
}

func TestTransformUnknownFunction(t *testing.T) {
	r := testRegistry()

	_, err := r.Apply("frobnicate", "x", nil)
	require.Error(t, err)

	var unknown *UnknownTransformError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "frobnicate", unknown.Function)
}
