package scripting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSExpressionEvaluator(t *testing.T) {
	e := NewJSExpressionEvaluator()

	t.Run("returns computed value", func(t *testing.T) {
		result, err := e.Evaluate(`return input.toUpperCase() + "!"`, map[string]any{
			"input": "hello",
		})
		require.NoError(t, err)
		assert.Equal(t, "HELLO!", result)
	})

	t.Run("builds objects", func(t *testing.T) {
		result, err := e.Evaluate(`return { doubled: n * 2 }`, map[string]any{"n": 21})
		require.NoError(t, err)

		m, ok := result.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, int64(42), m["doubled"])
	})

	t.Run("syntax error", func(t *testing.T) {
		_, err := e.Evaluate(`return {{`, map[string]any{})
		require.Error(t, err)
	})

	t.Run("fresh VM per call", func(t *testing.T) {
		_, err := e.Evaluate(`leak = "value"; return leak`, map[string]any{})
		require.NoError(t, err)

		// The previous call's global must not be visible here
		result, err := e.Evaluate(`return typeof leak`, map[string]any{})
		require.NoError(t, err)
		assert.Equal(t, "undefined", result)
	})
}
