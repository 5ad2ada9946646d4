package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/tcmartin/promptflow/pkg/condition"
	"github.com/tcmartin/promptflow/pkg/graph"
	"github.com/tcmartin/promptflow/pkg/logging"
	"github.com/tcmartin/promptflow/pkg/providers"
	"github.com/tcmartin/promptflow/pkg/scope"
)

// NodeResult is the outcome of executing a single node.
type NodeResult struct {
	// Value is the node's primary output
	Value any

	// Bindings are the scope entries to write on successful completion
	Bindings map[string]any

	// Branch is the conditional outcome, nil for other kinds
	Branch *bool

	// Metrics are provider-reported metrics, set on prompt nodes
	Metrics *NodeMetrics

	// Input snapshots the node's resolved inputs
	Input map[string]any
}

// NodeExecutor executes one node given its resolved inputs, dispatching by
// node kind. It is the only component that calls the model-invocation
// collaborator. Node-level failures are returned as errors and classified
// by the engine; they never panic and never abort other branches.
type NodeExecutor struct {
	provider     providers.ModelInvoker
	transforms   *TransformRegistry
	conditions   *condition.Evaluator
	logger       logging.Logger
	modelTimeout time.Duration
}

// NewNodeExecutor creates a node executor. modelTimeout bounds each model
// invocation; zero disables the per-call timeout.
func NewNodeExecutor(provider providers.ModelInvoker, transforms *TransformRegistry, logger logging.Logger, modelTimeout time.Duration) *NodeExecutor {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &NodeExecutor{
		provider:     provider,
		transforms:   transforms,
		conditions:   condition.NewEvaluator(),
		logger:       logger,
		modelTimeout: modelTimeout,
	}
}

// Execute dispatches the node by kind. On failure the returned result may
// still carry the input snapshot gathered before the failing step.
func (x *NodeExecutor) Execute(ctx context.Context, node *graph.Node, sc *scope.Scope) (*NodeResult, error) {
	switch node.Kind {
	case graph.KindVariable:
		return x.executeVariable(node, sc)
	case graph.KindPrompt:
		return x.executePrompt(ctx, node, sc)
	case graph.KindConditional:
		return x.executeConditional(node, sc)
	case graph.KindTransform:
		return x.executeTransform(node, sc)
	case graph.KindOutput:
		return x.executeOutput(node, sc)
	default:
		return nil, fmt.Errorf("unknown node kind %q", node.Kind)
	}
}

func (x *NodeExecutor) executeVariable(node *graph.Node, sc *scope.Scope) (*NodeResult, error) {
	cfg := node.Variable

	value, found := sc.Lookup(cfg.Name)
	if !found {
		if cfg.Default != nil {
			value = cfg.Default
		} else if cfg.Required {
			return nil, &variableError{err: fmt.Errorf("required variable %q has no value and no default", cfg.Name)}
		} else {
			value = nil
		}
	}

	if value != nil && cfg.Type != "" {
		coerced, err := coerceType(value, cfg.Type)
		if err != nil {
			return nil, &variableError{err: fmt.Errorf("variable %q: %w", cfg.Name, err)}
		}
		value = coerced
	}

	return &NodeResult{
		Value: value,
		Input: map[string]any{"name": cfg.Name, "from_default": !found},
		Bindings: map[string]any{
			cfg.Name:           value,
			node.ID + ".value": value,
		},
	}, nil
}

func (x *NodeExecutor) executePrompt(ctx context.Context, node *graph.Node, sc *scope.Scope) (*NodeResult, error) {
	cfg := node.Prompt

	prompt, err := RenderTemplate(cfg.Template, sc)
	if err != nil {
		return nil, err
	}

	input := map[string]any{"prompt": prompt, "model": cfg.Model}

	callCtx := ctx
	if x.modelTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, x.modelTimeout)
		defer cancel()
	}

	resp, err := x.provider.Invoke(callCtx, prompt, providers.ModelConfig{
		Provider:    cfg.Provider,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})
	if err != nil {
		return &NodeResult{Input: input}, err
	}

	return &NodeResult{
		Value: resp.Text,
		Input: input,
		Metrics: &NodeMetrics{
			TokensUsed:   resp.TokensUsed,
			CostEstimate: resp.CostEstimate,
			LatencyMs:    resp.LatencyMs,
		},
		Bindings: map[string]any{
			node.ID + ".text": resp.Text,
		},
	}, nil
}

func (x *NodeExecutor) executeConditional(node *graph.Node, sc *scope.Scope) (*NodeResult, error) {
	cfg := node.Conditional

	outcome, err := x.conditions.Evaluate(condition.Condition{
		Left:     cfg.Left,
		Operator: condition.Operator(cfg.Operator),
		Right:    cfg.Right,
		RightRef: cfg.RightRef,
	}, sc)
	if err != nil {
		return &NodeResult{Input: map[string]any{"left": cfg.Left, "operator": cfg.Operator}}, err
	}

	// A false condition is a completed node; only evaluation errors fail it.
	return &NodeResult{
		Value:  outcome,
		Branch: &outcome,
		Input:  map[string]any{"left": cfg.Left, "operator": cfg.Operator},
		Bindings: map[string]any{
			node.ID + ".result": outcome,
		},
	}, nil
}

func (x *NodeExecutor) executeTransform(node *graph.Node, sc *scope.Scope) (*NodeResult, error) {
	cfg := node.Transform

	input, err := scope.Resolve(cfg.Input, sc)
	if err != nil {
		return nil, err
	}

	snapshot := map[string]any{"function": cfg.Function, "input": input}

	output, err := x.transforms.Apply(cfg.Function, input, cfg.Args)
	if err != nil {
		return &NodeResult{Input: snapshot}, err
	}

	return &NodeResult{
		Value: output,
		Input: snapshot,
		Bindings: map[string]any{
			node.ID + ".value": output,
		},
	}, nil
}

func (x *NodeExecutor) executeOutput(node *graph.Node, sc *scope.Scope) (*NodeResult, error) {
	cfg := node.Output

	value, err := scope.Resolve(cfg.Source, sc)
	if err != nil {
		return nil, err
	}

	return &NodeResult{
		Value: value,
		Input: map[string]any{"source": cfg.Source},
		Bindings: map[string]any{
			node.ID + ".value": value,
		},
	}, nil
}

// coerceType enforces a variable node's declared type.
func coerceType(value any, declared string) (any, error) {
	switch declared {
	case "string":
		return fmt.Sprintf("%v", value), nil
	case "number":
		if n, ok := scope.ToNumber(value); ok {
			return n, nil
		}
		return nil, fmt.Errorf("value %v is not a number", value)
	case "boolean":
		if b, ok := scope.ToBool(value); ok {
			return b, nil
		}
		return nil, fmt.Errorf("value %v is not a boolean", value)
	default:
		return nil, fmt.Errorf("unknown declared type %q", declared)
	}
}
