package providers

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// MockProvider is a scripted ModelInvoker for tests and local runs.
// Responses and errors are matched by prompt substring; unmatched prompts
// fall back to a generated mock response.
type MockProvider struct {
	// Responses maps a prompt substring to the response text returned
	Responses map[string]string

	// Errors maps a prompt substring to the error returned instead
	Errors map[string]error

	// Latency is simulated before each response, honoring the call context
	Latency time.Duration

	// TokensPerCall is reported as TokensUsed on every response
	TokensPerCall int

	// CostPerCall is reported as CostEstimate on every response
	CostPerCall float64

	mu    sync.Mutex
	calls []string
}

// Invoke records the prompt, simulates latency, and returns the scripted
// response or error. Context expiry during the simulated latency is
// surfaced as a ProviderError with the Timeout flag set.
func (p *MockProvider) Invoke(ctx context.Context, prompt string, cfg ModelConfig) (*ModelResponse, error) {
	p.mu.Lock()
	p.calls = append(p.calls, prompt)
	p.mu.Unlock()

	start := time.Now()
	if p.Latency > 0 {
		select {
		case <-time.After(p.Latency):
		case <-ctx.Done():
			return nil, &ProviderError{Provider: "mock", Timeout: true, Err: ctx.Err()}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, &ProviderError{Provider: "mock", Timeout: true, Err: err}
	}

	for substring, err := range p.Errors {
		if strings.Contains(prompt, substring) {
			return nil, &ProviderError{Provider: "mock", Err: err}
		}
	}

	text := fmt.Sprintf("mock response for %q", prompt)
	for substring, scripted := range p.Responses {
		if strings.Contains(prompt, substring) {
			text = scripted
			break
		}
	}

	return &ModelResponse{
		Text:         text,
		TokensUsed:   p.TokensPerCall,
		CostEstimate: p.CostPerCall,
		LatencyMs:    time.Since(start).Milliseconds(),
	}, nil
}

// Calls returns a copy of every prompt the provider has received, in order.
func (p *MockProvider) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.calls))
	copy(out, p.calls)
	return out
}
