package graph

import (
	"fmt"
	"sort"
	"strings"
)

// Violation codes reported by Validate.
const (
	ViolationDuplicateNodeID  = "duplicate_node_id"
	ViolationDanglingEdge     = "dangling_edge"
	ViolationPayloadMismatch  = "payload_mismatch"
	ViolationMissingBranch    = "missing_branch"
	ViolationDuplicateBranch  = "duplicate_branch"
	ViolationUnexpectedBranch = "unexpected_branch"
	ViolationNoEntryPoint     = "no_entry_point"
	ViolationOrphanNode       = "orphan_node"
	ViolationCycle            = "cycle"
)

// Violation is one named structural problem found in a graph.
type Violation struct {
	// Code is one of the Violation* constants
	Code string `json:"code"`

	// NodeID is the offending node, when the violation is node-specific
	NodeID string `json:"node_id,omitempty"`

	// Message describes the problem
	Message string `json:"message"`
}

// ValidationReport collects every structural violation found in a graph, so
// callers can display all problems at once instead of fixing them one by
// one. It implements error for use as a structural failure.
type ValidationReport struct {
	Violations []Violation `json:"violations"`
}

// Valid reports whether the graph passed validation.
func (r *ValidationReport) Valid() bool {
	return len(r.Violations) == 0
}

// Error summarizes the report as a single error string.
func (r *ValidationReport) Error() string {
	if r.Valid() {
		return "graph is valid"
	}
	msgs := make([]string, len(r.Violations))
	for i, v := range r.Violations {
		msgs[i] = v.Message
	}
	return fmt.Sprintf("invalid flow graph: %s", strings.Join(msgs, "; "))
}

func (r *ValidationReport) add(code, nodeID, format string, args ...any) {
	r.Violations = append(r.Violations, Violation{
		Code:    code,
		NodeID:  nodeID,
		Message: fmt.Sprintf(format, args...),
	})
}

// Validate checks the structural invariants of a flow graph and returns a
// report of zero or more violations. It is side-effect-free and never
// panics on malformed input.
func Validate(g *FlowGraph) *ValidationReport {
	report := &ValidationReport{}

	// Unique node ids
	seen := make(map[string]bool)
	for _, n := range g.Nodes {
		if n.ID == "" {
			report.add(ViolationDuplicateNodeID, n.ID, "node with empty id")
			continue
		}
		if seen[n.ID] {
			report.add(ViolationDuplicateNodeID, n.ID, "duplicate node id %q", n.ID)
		}
		seen[n.ID] = true
	}

	// Every node must carry exactly the payload matching its kind
	for _, n := range g.Nodes {
		validatePayload(report, n)
	}

	// Every edge must reference existing nodes
	for _, e := range g.Edges {
		if !seen[e.Source] {
			report.add(ViolationDanglingEdge, e.Source, "edge references unknown source node %q", e.Source)
		}
		if !seen[e.Target] {
			report.add(ViolationDanglingEdge, e.Target, "edge references unknown target node %q", e.Target)
		}
	}

	// Branch labels: conditionals need exactly one true and one false edge,
	// everything else must not carry branch labels
	for _, n := range g.Nodes {
		validateBranches(report, g, n)
	}

	// At least one entry point
	if len(g.Nodes) > 0 && len(g.EntryNodes()) == 0 {
		report.add(ViolationNoEntryPoint, "", "graph has no entry point (every node has inbound edges)")
	}

	// Every non-entry node must be reachable from an entry point
	for _, id := range unreachableNodes(g) {
		report.add(ViolationOrphanNode, id, "node %q is not reachable from any entry point", id)
	}

	// Cycle pre-flight. The planner performs the authoritative check; this
	// surfaces the same problem before a run is attempted.
	if nodeID, cyclic := findCycle(g); cyclic {
		report.add(ViolationCycle, nodeID, "graph contains a cycle through node %q", nodeID)
	}

	return report
}

func validatePayload(report *ValidationReport, n Node) {
	payloads := 0
	if n.Prompt != nil {
		payloads++
	}
	if n.Variable != nil {
		payloads++
	}
	if n.Conditional != nil {
		payloads++
	}
	if n.Transform != nil {
		payloads++
	}
	if n.Output != nil {
		payloads++
	}

	if payloads != 1 {
		report.add(ViolationPayloadMismatch, n.ID, "node %q must carry exactly one configuration payload, has %d", n.ID, payloads)
		return
	}

	var ok bool
	switch n.Kind {
	case KindPrompt:
		ok = n.Prompt != nil
	case KindVariable:
		ok = n.Variable != nil
	case KindConditional:
		ok = n.Conditional != nil
	case KindTransform:
		ok = n.Transform != nil
	case KindOutput:
		ok = n.Output != nil
	default:
		report.add(ViolationPayloadMismatch, n.ID, "node %q has unknown kind %q", n.ID, n.Kind)
		return
	}

	if !ok {
		report.add(ViolationPayloadMismatch, n.ID, "node %q of kind %q carries a mismatched configuration payload", n.ID, n.Kind)
	}
}

func validateBranches(report *ValidationReport, g *FlowGraph, n Node) {
	counts := make(map[string]int)
	for _, e := range g.Outgoing(n.ID) {
		counts[e.Branch]++
	}

	if n.Kind == KindConditional {
		// A missing branch is an error, not an implicit no-op
		if counts[BranchTrue] == 0 {
			report.add(ViolationMissingBranch, n.ID, "conditional node %q has no %q branch", n.ID, BranchTrue)
		}
		if counts[BranchFalse] == 0 {
			report.add(ViolationMissingBranch, n.ID, "conditional node %q has no %q branch", n.ID, BranchFalse)
		}
		for _, branch := range []string{BranchTrue, BranchFalse} {
			if counts[branch] > 1 {
				report.add(ViolationDuplicateBranch, n.ID, "conditional node %q has %d %q branches", n.ID, counts[branch], branch)
			}
		}
		if counts[""] > 0 {
			report.add(ViolationUnexpectedBranch, n.ID, "conditional node %q has unlabelled outgoing edges", n.ID)
		}
		return
	}

	for branch, count := range counts {
		if branch != "" && count > 0 {
			report.add(ViolationUnexpectedBranch, n.ID, "node %q of kind %q has a %q branch label", n.ID, n.Kind, branch)
		}
	}
}

// unreachableNodes returns the ids of nodes that cannot be reached from any
// entry point, in lexical order.
func unreachableNodes(g *FlowGraph) []string {
	reached := make(map[string]bool)
	queue := g.EntryNodes()
	for _, id := range queue {
		reached[id] = true
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, e := range g.Outgoing(id) {
			if !reached[e.Target] {
				reached[e.Target] = true
				queue = append(queue, e.Target)
			}
		}
	}

	var orphans []string
	for _, n := range g.Nodes {
		if !reached[n.ID] {
			orphans = append(orphans, n.ID)
		}
	}
	sort.Strings(orphans)
	return orphans
}

// findCycle runs a Kahn-style elimination and, when nodes remain, returns
// the lexically smallest node still trapped in a cycle.
func findCycle(g *FlowGraph) (string, bool) {
	inDegree := make(map[string]int, len(g.Nodes))
	for _, n := range g.Nodes {
		inDegree[n.ID] = 0
	}
	for _, e := range g.Edges {
		if _, ok := inDegree[e.Target]; ok && g.NodeByID(e.Source) != nil {
			inDegree[e.Target]++
		}
	}

	// Duplicate ids collapse into one inDegree entry, so count distinct
	// nodes rather than len(g.Nodes).
	total := len(inDegree)

	queue := make([]string, 0, total)
	for id, d := range inDegree {
		if d == 0 {
			queue = append(queue, id)
		}
	}

	removed := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		removed++
		for _, e := range g.Outgoing(id) {
			if _, ok := inDegree[e.Target]; !ok {
				continue
			}
			inDegree[e.Target]--
			if inDegree[e.Target] == 0 {
				queue = append(queue, e.Target)
			}
		}
		delete(inDegree, id)
	}

	if removed == total {
		return "", false
	}

	remaining := make([]string, 0, len(inDegree))
	for id, d := range inDegree {
		if d > 0 {
			remaining = append(remaining, id)
		}
	}
	if len(remaining) == 0 {
		return "", false
	}
	sort.Strings(remaining)
	return remaining[0], true
}
