// Package graph defines the in-memory model of a prompt flow: typed nodes,
// directed edges with optional branch labels, and structural validation.
//
// A FlowGraph is an immutable validated snapshot. Callers that hold a
// mutable graph (an editor, a loader) should build a fresh FlowGraph and
// validate it before every run; the execution engine never observes a graph
// under edit.
package graph

// NodeKind identifies the closed set of node types a flow may contain.
type NodeKind string

const (
	// KindPrompt invokes the external model with a rendered template.
	KindPrompt NodeKind = "prompt"

	// KindVariable binds a named input value or its default into the scope.
	KindVariable NodeKind = "variable"

	// KindConditional evaluates a condition and selects a branch.
	KindConditional NodeKind = "conditional"

	// KindTransform applies a named pure function to a resolved input.
	KindTransform NodeKind = "transform"

	// KindOutput surfaces an upstream value as the flow's final result.
	KindOutput NodeKind = "output"
)

// Branch labels carried by outgoing edges of conditional nodes. Edges with
// an empty branch label are unconditional.
const (
	BranchTrue  = "true"
	BranchFalse = "false"
)

// PromptConfig is the configuration payload for a prompt node.
type PromptConfig struct {
	// Template is the prompt text with {{name}} placeholders
	Template string `json:"template" yaml:"template"`

	// Provider selects the model provider (e.g. "openai")
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty"`

	// Model is the model identifier passed to the provider
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	// Temperature is the sampling temperature
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`

	// MaxTokens caps the response length (0 means provider default)
	MaxTokens int `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
}

// VariableConfig is the configuration payload for a variable node.
type VariableConfig struct {
	// Name is the variable name looked up in the batch-row input
	Name string `json:"name" yaml:"name"`

	// Type is the declared value type: "string", "number", "boolean" or
	// empty for any
	Type string `json:"type,omitempty" yaml:"type,omitempty"`

	// Default is used when the input row carries no value for Name
	Default any `json:"default,omitempty" yaml:"default,omitempty"`

	// Required makes the node fail when neither a value nor a default exists
	Required bool `json:"required,omitempty" yaml:"required,omitempty"`
}

// ConditionalConfig is the configuration payload for a conditional node.
type ConditionalConfig struct {
	// Left is a reference resolved against the scope
	Left string `json:"left" yaml:"left"`

	// Operator is one of the condition operators ("equals", "contains", ...)
	Operator string `json:"operator" yaml:"operator"`

	// Right is a literal right operand
	Right any `json:"right,omitempty" yaml:"right,omitempty"`

	// RightRef, when set, is a reference resolved against the scope and
	// takes precedence over Right
	RightRef string `json:"right_ref,omitempty" yaml:"right_ref,omitempty"`
}

// TransformConfig is the configuration payload for a transform node.
type TransformConfig struct {
	// Function names the pure function applied to the input
	Function string `json:"function" yaml:"function"`

	// Input is a reference to the value the function receives
	Input string `json:"input" yaml:"input"`

	// Args are extra function arguments (e.g. a field path, a script)
	Args map[string]any `json:"args,omitempty" yaml:"args,omitempty"`
}

// OutputConfig is the configuration payload for an output node.
type OutputConfig struct {
	// Source is a reference to the upstream value surfaced as the flow result
	Source string `json:"source" yaml:"source"`
}

// Node is one typed unit of work in a flow. Exactly one configuration
// payload must be set, and it must match Kind.
type Node struct {
	// ID uniquely identifies the node within its graph
	ID string `json:"id" yaml:"id"`

	// Kind selects which configuration payload applies
	Kind NodeKind `json:"kind" yaml:"kind"`

	Prompt      *PromptConfig      `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	Variable    *VariableConfig    `json:"variable,omitempty" yaml:"variable,omitempty"`
	Conditional *ConditionalConfig `json:"conditional,omitempty" yaml:"conditional,omitempty"`
	Transform   *TransformConfig   `json:"transform,omitempty" yaml:"transform,omitempty"`
	Output      *OutputConfig      `json:"output,omitempty" yaml:"output,omitempty"`
}

// Edge is a directed connection between two nodes. Branch is empty for
// unconditional edges and "true"/"false" on the outgoing edges of a
// conditional node.
type Edge struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	Branch string `json:"branch,omitempty" yaml:"branch,omitempty"`
}

// FlowGraph is the validated snapshot of a flow consumed by the planner and
// the execution engine.
type FlowGraph struct {
	// ID identifies the flow this graph was built from
	ID string `json:"id" yaml:"id"`

	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// NodeByID returns the node with the given id, or nil if it does not exist.
func (g *FlowGraph) NodeByID(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// Outgoing returns all edges whose source is the given node.
func (g *FlowGraph) Outgoing(nodeID string) []Edge {
	var edges []Edge
	for _, e := range g.Edges {
		if e.Source == nodeID {
			edges = append(edges, e)
		}
	}
	return edges
}

// Inbound returns all edges whose target is the given node.
func (g *FlowGraph) Inbound(nodeID string) []Edge {
	var edges []Edge
	for _, e := range g.Edges {
		if e.Target == nodeID {
			edges = append(edges, e)
		}
	}
	return edges
}

// EntryNodes returns the ids of all nodes with no inbound edges.
func (g *FlowGraph) EntryNodes() []string {
	hasInbound := make(map[string]bool)
	for _, e := range g.Edges {
		hasInbound[e.Target] = true
	}

	var entries []string
	for _, n := range g.Nodes {
		if !hasInbound[n.ID] {
			entries = append(entries, n.ID)
		}
	}
	return entries
}
