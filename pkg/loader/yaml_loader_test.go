package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcmartin/promptflow/pkg/graph"
)

const validFlowYAML = `
id: greeting-flow
name: Greeting Flow
version: "1.0"
nodes:
  - id: name
    kind: variable
    variable:
      name: name
      required: true
  - id: check
    kind: conditional
    conditional:
      left: name
      operator: exists
  - id: greet
    kind: prompt
    prompt:
      template: "Hello {{name}}"
      provider: openai
      model: gpt-4o-mini
      temperature: 0.7
  - id: shout
    kind: transform
    transform:
      function: uppercase
      input: name
  - id: done
    kind: output
    output:
      source: greet.text
edges:
  - source: name
    target: check
  - source: check
    target: greet
    branch: "true"
  - source: check
    target: shout
    branch: "false"
  - source: greet
    target: done
`

func TestParseValidFlow(t *testing.T) {
	g, err := NewYAMLLoader().Parse(validFlowYAML)
	require.NoError(t, err)

	assert.Equal(t, "greeting-flow", g.ID)
	require.Len(t, g.Nodes, 5)
	require.Len(t, g.Edges, 4)

	greet := g.NodeByID("greet")
	require.NotNil(t, greet)
	assert.Equal(t, graph.KindPrompt, greet.Kind)
	require.NotNil(t, greet.Prompt)
	assert.Equal(t, "Hello {{name}}", greet.Prompt.Template)
	assert.Equal(t, "gpt-4o-mini", greet.Prompt.Model)
	assert.InDelta(t, 0.7, greet.Prompt.Temperature, 1e-9)

	check := g.NodeByID("check")
	require.NotNil(t, check)
	require.NotNil(t, check.Conditional)
	assert.Equal(t, "exists", check.Conditional.Operator)
}

func TestParseRejectsMissingID(t *testing.T) {
	_, err := NewYAMLLoader().Parse(`
nodes:
  - id: done
    kind: output
    output:
      source: x
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no id")
}

func TestParseRejectsUnknownKind(t *testing.T) {
	_, err := NewYAMLLoader().Parse(`
id: bad
nodes:
  - id: mail
    kind: email
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown node kind "email"`)
}

func TestParseRejectsUnknownBranchLabel(t *testing.T) {
	_, err := NewYAMLLoader().Parse(`
id: bad
nodes:
  - id: check
    kind: conditional
    conditional:
      left: x
      operator: exists
  - id: a
    kind: output
    output:
      source: x
edges:
  - source: check
    target: a
    branch: maybe
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown branch label")
}

func TestParseRejectsStructuralViolations(t *testing.T) {
	_, err := NewYAMLLoader().Parse(`
id: bad
nodes:
  - id: greet
    kind: prompt
    prompt:
      template: hi
edges:
  - source: greet
    target: missing
`)
	require.Error(t, err)

	var report *graph.ValidationReport
	assert.ErrorAs(t, err, &report)
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := NewYAMLLoader().Parse("id: [unclosed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}
