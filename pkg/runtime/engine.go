package runtime

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tcmartin/promptflow/pkg/graph"
	"github.com/tcmartin/promptflow/pkg/logging"
	"github.com/tcmartin/promptflow/pkg/plan"
	"github.com/tcmartin/promptflow/pkg/scope"
)

// Engine orchestrates the planner and the node executor across one flow
// run. A run is single-threaded: nodes execute strictly in planned order,
// which keeps the single-assignment scope invariant trivial. The engine
// itself is stateless between runs and safe to share across batch workers.
type Engine struct {
	executor *NodeExecutor
	logger   logging.Logger
}

// NewEngine creates a flow execution engine.
func NewEngine(executor *NodeExecutor, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Engine{executor: executor, logger: logger}
}

// Run validates and plans the graph, then executes it against one set of
// input variables. Structural problems (validation violations, cycles) are
// returned as an error before any node runs; once planning succeeds the run
// always returns a full FlowExecutionResult, so partial successes stay
// inspectable. Cancellation is cooperative: the context is checked between
// node executions, and in-flight model calls are cancelled best-effort
// through their call context.
func (e *Engine) Run(ctx context.Context, g *graph.FlowGraph, input map[string]any) (*FlowExecutionResult, error) {
	// Initialized → Planning
	if report := graph.Validate(g); !report.Valid() {
		return nil, report
	}
	order, err := plan.Plan(g)
	if err != nil {
		return nil, err
	}

	// Planning → Executing
	executionID := uuid.New().String()
	started := time.Now()
	sc := scope.NewScope(input, nil)

	e.logger.LogFlowExecution(g.ID, executionID, "started", map[string]any{
		"nodes": len(order),
	})

	result := &FlowExecutionResult{
		ExecutionID: executionID,
		FlowID:      g.ID,
		Nodes:       make([]NodeExecution, len(order)),
	}
	for i, nodeID := range order {
		result.Nodes[i] = NodeExecution{
			NodeID: nodeID,
			Kind:   g.NodeByID(nodeID).Kind,
			Status: NodePending,
		}
	}

	run := &runState{
		statuses:    make(map[string]NodeStatus, len(order)),
		skipReasons: make(map[string]string, len(order)),
		branches:    make(map[string]bool),
	}

	cancelled := false
	outputCompleted := false

	for i, nodeID := range order {
		exec := &result.Nodes[i]
		node := g.NodeByID(nodeID)

		if ctx.Err() != nil {
			cancelled = true
			e.skip(g, executionID, exec, run, SkipCancelled)
			continue
		}

		if live, reason := admissible(g, nodeID, run); !live {
			e.skip(g, executionID, exec, run, reason)
			continue
		}

		exec.Status = NodeRunning
		exec.StartTime = time.Now()

		nodeResult, execErr := e.executor.Execute(ctx, node, sc)
		exec.EndTime = time.Now()
		if nodeResult != nil {
			exec.Input = nodeResult.Input
		}

		if execErr != nil {
			exec.Status = NodeFailed
			exec.Error = classifyError(execErr)
			run.statuses[nodeID] = NodeFailed
			e.logger.LogNodeExecution(g.ID, executionID, nodeID, "failed", map[string]any{
				"error_type": exec.Error.Type,
				"error":      exec.Error.Message,
			})
			continue
		}

		if bindErr := bindAll(sc, nodeResult.Bindings); bindErr != nil {
			exec.Status = NodeFailed
			exec.Error = &ErrorDetail{Type: ErrTypeInternal, Message: bindErr.Error()}
			run.statuses[nodeID] = NodeFailed
			e.logger.LogNodeExecution(g.ID, executionID, nodeID, "failed", map[string]any{
				"error": bindErr.Error(),
			})
			continue
		}

		exec.Status = NodeCompleted
		exec.Output = nodeResult.Value
		exec.Metrics = nodeResult.Metrics
		run.statuses[nodeID] = NodeCompleted

		if nodeResult.Branch != nil {
			run.branches[nodeID] = *nodeResult.Branch
		}
		if node.Kind == graph.KindOutput {
			result.Output = nodeResult.Value
			outputCompleted = true
		}
		if nodeResult.Metrics != nil {
			result.Metrics.TokensUsed += nodeResult.Metrics.TokensUsed
			result.Metrics.CostEstimate += nodeResult.Metrics.CostEstimate
			result.Metrics.ProviderLatencyMs += nodeResult.Metrics.LatencyMs
		}

		e.logger.LogNodeExecution(g.ID, executionID, nodeID, "completed", nil)
	}

	result.Duration = time.Since(started)
	result.Status = terminalStatus(result.Nodes, cancelled, outputCompleted)

	e.logger.LogFlowExecution(g.ID, executionID, "finished", map[string]any{
		"status":   string(result.Status),
		"duration": result.Duration.String(),
	})

	return result, nil
}

// runState is the per-run bookkeeping threaded through the execution loop.
// It is never shared across runs, so concurrent batch rows cannot interfere.
type runState struct {
	statuses    map[string]NodeStatus
	skipReasons map[string]string
	branches    map[string]bool
}

func (e *Engine) skip(g *graph.FlowGraph, executionID string, exec *NodeExecution, run *runState, reason string) {
	exec.Status = NodeSkipped
	exec.SkipReason = reason
	run.statuses[exec.NodeID] = NodeSkipped
	run.skipReasons[exec.NodeID] = reason
	e.logger.LogNodeExecution(g.ID, executionID, exec.NodeID, "skipped", map[string]any{
		"reason": reason,
	})
}

// admissible decides whether a node may run: every inbound edge must be
// taken, meaning its source completed and, for branch-labelled edges, the
// conditional chose that branch. Entry nodes are always admissible.
func admissible(g *graph.FlowGraph, nodeID string, run *runState) (bool, string) {
	upstreamFailure := false
	untaken := false

	for _, edge := range g.Inbound(nodeID) {
		switch run.statuses[edge.Source] {
		case NodeCompleted:
			if edge.Branch == "" {
				continue
			}
			taken, decided := run.branches[edge.Source]
			if !decided {
				// Branch label on a non-conditional source; validation
				// rejects this, so treat the edge as not taken.
				untaken = true
				continue
			}
			if (edge.Branch == graph.BranchTrue) != taken {
				untaken = true
			}
		case NodeFailed:
			upstreamFailure = true
		case NodeSkipped:
			if run.skipReasons[edge.Source] == SkipUpstreamFailure {
				upstreamFailure = true
			} else {
				untaken = true
			}
		default:
			// Pending or running predecessors mean a malformed plan; the
			// planner orders predecessors first, so treat as not taken.
			untaken = true
		}
	}

	if upstreamFailure {
		return false, SkipUpstreamFailure
	}
	if untaken {
		return false, SkipUntakenBranch
	}
	return true, ""
}

func bindAll(sc *scope.Scope, bindings map[string]any) error {
	for name, value := range bindings {
		if err := sc.Bind(name, value); err != nil {
			return err
		}
	}
	return nil
}

// terminalStatus derives the run-level status: cancellation wins; a failed
// node yields failed when it blocked the final output and partially_failed
// when the output node still completed; otherwise the run completed.
func terminalStatus(nodes []NodeExecution, cancelled, outputCompleted bool) RunStatus {
	if cancelled {
		return RunCancelled
	}

	anyFailed := false
	for i := range nodes {
		if nodes[i].Status == NodeFailed {
			anyFailed = true
			break
		}
	}

	switch {
	case anyFailed && outputCompleted:
		return RunPartiallyFailed
	case anyFailed:
		return RunFailed
	default:
		return RunCompleted
	}
}
