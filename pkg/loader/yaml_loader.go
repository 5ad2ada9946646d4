package loader

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/tcmartin/promptflow/pkg/graph"
)

// YAMLLoader parses YAML flow definitions into validated flow graphs.
type YAMLLoader interface {
	// Parse converts a YAML document into a validated FlowGraph
	Parse(yamlContent string) (*graph.FlowGraph, error)
}

// DefaultYAMLLoader implements the YAMLLoader interface.
type DefaultYAMLLoader struct{}

// NewYAMLLoader creates a new YAML loader.
func NewYAMLLoader() YAMLLoader {
	return &DefaultYAMLLoader{}
}

// Parse converts a YAML document into a FlowGraph and validates it. Unknown
// node kinds, malformed branch labels, and structural violations are all
// rejected here so a loaded graph is always ready to run.
func (l *DefaultYAMLLoader) Parse(yamlContent string) (*graph.FlowGraph, error) {
	var def FlowDefinition
	if err := yaml.Unmarshal([]byte(yamlContent), &def); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if def.ID == "" {
		return nil, fmt.Errorf("flow definition has no id")
	}

	g := &graph.FlowGraph{
		ID:    def.ID,
		Nodes: make([]graph.Node, 0, len(def.Nodes)),
		Edges: def.Edges,
	}

	for _, nd := range def.Nodes {
		if !knownKinds[nd.Kind] {
			return nil, fmt.Errorf("unknown node kind %q in node %q", nd.Kind, nd.ID)
		}
		g.Nodes = append(g.Nodes, graph.Node{
			ID:          nd.ID,
			Kind:        nd.Kind,
			Prompt:      nd.Prompt,
			Variable:    nd.Variable,
			Conditional: nd.Conditional,
			Transform:   nd.Transform,
			Output:      nd.Output,
		})
	}

	for _, e := range g.Edges {
		switch e.Branch {
		case "", graph.BranchTrue, graph.BranchFalse:
		default:
			return nil, fmt.Errorf("edge %s -> %s has unknown branch label %q", e.Source, e.Target, e.Branch)
		}
	}

	if report := graph.Validate(g); !report.Valid() {
		return nil, report
	}

	return g, nil
}
