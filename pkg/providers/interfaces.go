// Package providers defines the model-invocation capability consumed by
// prompt nodes, together with the adapters that implement it.
//
// The execution engine only ever sees the ModelInvoker interface: retry
// policy, connection handling and pricing belong to the implementation.
package providers

import (
	"context"
	"fmt"
)

// ModelConfig selects a model and its sampling parameters for one call.
type ModelConfig struct {
	// Provider names the provider to use (informational for adapters that
	// serve a single provider)
	Provider string `json:"provider,omitempty"`

	// Model is the provider-specific model identifier
	Model string `json:"model,omitempty"`

	// Temperature is the sampling temperature
	Temperature float64 `json:"temperature,omitempty"`

	// MaxTokens caps the response length (0 means provider default)
	MaxTokens int `json:"max_tokens,omitempty"`
}

// ModelResponse is the result of one model invocation, including whatever
// raw metrics the provider reported.
type ModelResponse struct {
	// Text is the model's response text
	Text string `json:"text"`

	// TokensUsed is the total token count reported by the provider
	TokensUsed int `json:"tokens_used"`

	// CostEstimate is the provider-reported cost, 0 when not reported
	CostEstimate float64 `json:"cost_estimate"`

	// LatencyMs is the wall-clock duration of the call in milliseconds
	LatencyMs int64 `json:"latency_ms"`
}

// ModelInvoker sends prompt text to a model and returns its response. The
// supplied context carries the per-call timeout; implementations should
// cancel in-flight work best-effort when it expires.
type ModelInvoker interface {
	Invoke(ctx context.Context, prompt string, cfg ModelConfig) (*ModelResponse, error)
}

// ProviderError reports a failed model invocation. Timeout distinguishes
// deadline expiry from other provider failures so the engine can record a
// Timeout reason on the failed node.
type ProviderError struct {
	Provider string
	Timeout  bool
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("provider %s: call timed out: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
