package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcmartin/promptflow/pkg/scope"
)

func TestRenderTemplate(t *testing.T) {
	t.Run("resolves placeholders", func(t *testing.T) {
		sc := scope.NewScope(map[string]any{"name": "Ada"}, nil)

		rendered, err := RenderTemplate("Hello {{name}}", sc)
		require.NoError(t, err)
		assert.Equal(t, "Hello Ada", rendered)
	})

	t.Run("resolves node output references", func(t *testing.T) {
		sc := scope.NewScope(nil, nil)
		require.NoError(t, sc.Bind("summarize.text", "a short summary"))

		rendered, err := RenderTemplate("Refine: {{summarize.text}}", sc)
		require.NoError(t, err)
		assert.Equal(t, "Refine: a short summary", rendered)
	})

	t.Run("whitespace inside braces", func(t *testing.T) {
		sc := scope.NewScope(map[string]any{"name": "Ada"}, nil)

		rendered, err := RenderTemplate("Hello {{ name }}", sc)
		require.NoError(t, err)
		assert.Equal(t, "Hello Ada", rendered)
	})

	t.Run("missing placeholder fails, never renders literally", func(t *testing.T) {
		sc := scope.NewScope(nil, nil)

		_, err := RenderTemplate("Hello {{name}}", sc)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unresolved placeholder")

		var unresolved *scope.UnresolvedReferenceError
		assert.ErrorAs(t, err, &unresolved)
	})

	t.Run("no placeholders", func(t *testing.T) {
		sc := scope.NewScope(nil, nil)

		rendered, err := RenderTemplate("static prompt", sc)
		require.NoError(t, err)
		assert.Equal(t, "static prompt", rendered)
	})
}

func TestTemplatePlaceholders(t *testing.T) {
	refs := TemplatePlaceholders("{{a}} then {{b.text}} then {{a}}")
	assert.Equal(t, []string{"a", "b.text"}, refs)
}
