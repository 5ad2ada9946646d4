// Package runtime executes validated flow graphs: it dispatches individual
// nodes, orchestrates whole runs, and drives batches of runs across input
// rows.
package runtime

import (
	"time"

	"github.com/tcmartin/promptflow/pkg/graph"
)

// NodeStatus represents the lifecycle state of one node execution
type NodeStatus string

const (
	NodePending   NodeStatus = "pending"
	NodeRunning   NodeStatus = "running"
	NodeCompleted NodeStatus = "completed"
	NodeFailed    NodeStatus = "failed"
	NodeSkipped   NodeStatus = "skipped"
)

// Skip reasons recorded on skipped node executions.
const (
	SkipUntakenBranch   = "untaken branch"
	SkipUpstreamFailure = "upstream failure"
	SkipCancelled       = "cancelled"
)

// RunStatus represents the terminal state of a flow run
type RunStatus string

const (
	// RunCompleted means every reachable node completed or was skipped via
	// an untaken conditional branch
	RunCompleted RunStatus = "completed"

	// RunPartiallyFailed means some node failed but the flow's output node
	// still completed through an unaffected path
	RunPartiallyFailed RunStatus = "partially_failed"

	// RunFailed means a failed node blocked the flow's final output
	RunFailed RunStatus = "failed"

	// RunCancelled means the run was cancelled before completion
	RunCancelled RunStatus = "cancelled"
)

// Error type tags recorded on failed node executions.
const (
	ErrTypeUnresolvedReference = "unresolved_reference"
	ErrTypeEvaluation          = "evaluation"
	ErrTypeProvider            = "provider"
	ErrTypeTimeout             = "timeout"
	ErrTypeUnknownTransform    = "unknown_transform"
	ErrTypeVariable            = "variable"
	ErrTypeTransform           = "transform"
	ErrTypeInternal            = "internal"
)

// ErrorDetail is the typed error carried by a failed node execution.
type ErrorDetail struct {
	// Type is one of the ErrType* tags
	Type string `json:"type"`

	// Message is the underlying error text
	Message string `json:"message"`
}

// NodeMetrics are the raw metrics a model invocation reported.
type NodeMetrics struct {
	TokensUsed   int     `json:"tokens_used"`
	CostEstimate float64 `json:"cost_estimate"`
	LatencyMs    int64   `json:"latency_ms"`
}

// NodeExecution records one node's execution within a run.
type NodeExecution struct {
	// NodeID identifies the executed node
	NodeID string `json:"node_id"`

	// Kind is the node's kind
	Kind graph.NodeKind `json:"kind"`

	// Status is the node's lifecycle state
	Status NodeStatus `json:"status"`

	// StartTime is when execution started (zero for skipped nodes)
	StartTime time.Time `json:"start_time,omitempty"`

	// EndTime is when execution reached a terminal state
	EndTime time.Time `json:"end_time,omitempty"`

	// Input is a snapshot of the node's resolved inputs
	Input map[string]any `json:"input,omitempty"`

	// Output is the node's result value
	Output any `json:"output,omitempty"`

	// Error carries the typed failure detail for failed nodes
	Error *ErrorDetail `json:"error,omitempty"`

	// SkipReason explains why a node was skipped
	SkipReason string `json:"skip_reason,omitempty"`

	// Metrics are set on prompt nodes when the provider reported them
	Metrics *NodeMetrics `json:"metrics,omitempty"`
}

// RunMetrics aggregates provider-reported metrics across a run.
type RunMetrics struct {
	TokensUsed        int     `json:"tokens_used"`
	CostEstimate      float64 `json:"cost_estimate"`
	ProviderLatencyMs int64   `json:"provider_latency_ms"`
}

// FlowExecutionResult is the complete record of one flow run. It is owned
// by the run that produced it and never mutated after being returned.
type FlowExecutionResult struct {
	// ExecutionID uniquely identifies the run
	ExecutionID string `json:"execution_id"`

	// FlowID is the id of the executed flow graph
	FlowID string `json:"flow_id"`

	// Status is the run's terminal state
	Status RunStatus `json:"status"`

	// Nodes lists every node execution in planned order
	Nodes []NodeExecution `json:"nodes"`

	// Output is the value surfaced by the flow's output node
	Output any `json:"output,omitempty"`

	// Duration is the total wall-clock run time
	Duration time.Duration `json:"duration"`

	// Metrics aggregates provider-reported cost and latency
	Metrics RunMetrics `json:"metrics"`
}

// NodeExecution returns the execution record for the given node id, or nil.
func (r *FlowExecutionResult) NodeExecution(nodeID string) *NodeExecution {
	for i := range r.Nodes {
		if r.Nodes[i].NodeID == nodeID {
			return &r.Nodes[i]
		}
	}
	return nil
}

// RowResult pairs one batch row with its run result or row-level error.
type RowResult struct {
	// Row is the zero-based input row index
	Row int `json:"row"`

	// Result is the run result, nil when the row never ran
	Result *FlowExecutionResult `json:"result,omitempty"`

	// Err is a row-level error (e.g. cancellation before the row started)
	Err error `json:"-"`
}

// BatchExecutionResult aggregates per-row results for one batch invocation.
// Rows appear in input order regardless of completion order. Created once
// per batch and immutable afterward.
type BatchExecutionResult struct {
	// BatchID uniquely identifies the batch invocation
	BatchID string `json:"batch_id"`

	// FlowID is the id of the executed flow graph
	FlowID string `json:"flow_id"`

	// Rows holds one entry per input row, in input order
	Rows []RowResult `json:"rows"`

	// Successes counts rows whose run completed
	Successes int `json:"successes"`

	// Failures counts rows that failed, were cancelled, or never ran
	Failures int `json:"failures"`
}
