// Package loader converts YAML flow definitions into validated flow graphs.
// The execution engine itself consumes already-built graphs; this package
// is the front door for flows authored as files.
package loader

import (
	"github.com/tcmartin/promptflow/pkg/graph"
)

// FlowDefinition is the top-level YAML schema for a flow.
type FlowDefinition struct {
	// ID identifies the flow
	ID string `yaml:"id"`

	// Name is a human-readable flow name
	Name string `yaml:"name,omitempty"`

	// Description documents the flow's purpose
	Description string `yaml:"description,omitempty"`

	// Version is the flow definition version
	Version string `yaml:"version,omitempty"`

	// Nodes are the flow's typed nodes
	Nodes []NodeDefinition `yaml:"nodes"`

	// Edges connect the nodes
	Edges []graph.Edge `yaml:"edges"`
}

// NodeDefinition is the YAML schema for one node. Exactly one of the
// kind-specific sections must be present, matching Kind.
type NodeDefinition struct {
	ID   string         `yaml:"id"`
	Kind graph.NodeKind `yaml:"kind"`

	Prompt      *graph.PromptConfig      `yaml:"prompt,omitempty"`
	Variable    *graph.VariableConfig    `yaml:"variable,omitempty"`
	Conditional *graph.ConditionalConfig `yaml:"conditional,omitempty"`
	Transform   *graph.TransformConfig   `yaml:"transform,omitempty"`
	Output      *graph.OutputConfig      `yaml:"output,omitempty"`
}

// knownKinds is the closed set of node kinds the loader accepts.
var knownKinds = map[graph.NodeKind]bool{
	graph.KindPrompt:      true,
	graph.KindVariable:    true,
	graph.KindConditional: true,
	graph.KindTransform:   true,
	graph.KindOutput:      true,
}
