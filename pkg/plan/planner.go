// Package plan computes deterministic execution orders for flow graphs.
package plan

import (
	"fmt"
	"sort"

	"github.com/tcmartin/promptflow/pkg/graph"
)

// CycleError reports that a graph cannot be ordered because it contains a
// cycle. NodeID names one node on the cycle.
type CycleError struct {
	NodeID string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("flow graph contains a cycle through node %q", e.NodeID)
}

// Plan produces a topological execution order for the graph using Kahn's
// algorithm. Nodes whose in-degree reaches zero are dequeued in lexical
// node-id order, so the order is deterministic across repeated calls on the
// same graph.
//
// Both branches of a conditional node are included: the plan is a superset
// ordering, and the branch actually taken is decided at run time by the
// engine. Plan is a pure function and safe for concurrent use.
func Plan(g *graph.FlowGraph) ([]string, error) {
	inDegree := make(map[string]int, len(g.Nodes))
	successors := make(map[string][]string, len(g.Nodes))
	for _, n := range g.Nodes {
		inDegree[n.ID] = 0
	}
	for _, e := range g.Edges {
		if _, ok := inDegree[e.Source]; !ok {
			continue
		}
		if _, ok := inDegree[e.Target]; !ok {
			continue
		}
		successors[e.Source] = append(successors[e.Source], e.Target)
		inDegree[e.Target]++
	}

	ready := make([]string, 0, len(g.Nodes))
	for id, d := range inDegree {
		if d == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(g.Nodes))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		released := false
		for _, succ := range successors[id] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				ready = append(ready, succ)
				released = true
			}
		}
		if released {
			sort.Strings(ready)
		}
	}

	// Compare against the distinct id count: duplicate ids collapse into one
	// inDegree entry and are a validation concern, not a cycle.
	if len(order) != len(inDegree) {
		remaining := make([]string, 0)
		for id, d := range inDegree {
			if d > 0 {
				remaining = append(remaining, id)
			}
		}
		sort.Strings(remaining)
		return nil, &CycleError{NodeID: remaining[0]}
	}

	return order, nil
}
