package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider is a ModelInvoker backed by the OpenAI chat-completion
// API. Any OpenAI-compatible endpoint can be targeted through BaseURL.
type OpenAIProvider struct {
	client       *openai.Client
	defaultModel string
}

// NewOpenAIProvider creates an OpenAI-backed provider. baseURL may be empty
// to use the public API; defaultModel is used when a prompt node does not
// select one.
func NewOpenAIProvider(apiKey, baseURL, defaultModel string) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if defaultModel == "" {
		defaultModel = openai.GPT4oMini
	}
	return &OpenAIProvider{
		client:       openai.NewClientWithConfig(cfg),
		defaultModel: defaultModel,
	}
}

// Invoke sends the prompt as a single user message and returns the first
// choice. Errors are wrapped as ProviderError; deadline expiry sets the
// Timeout flag.
func (p *OpenAIProvider) Invoke(ctx context.Context, prompt string, cfg ModelConfig) (*ModelResponse, error) {
	model := cfg.Model
	if model == "" {
		model = p.defaultModel
	}

	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: float32(cfg.Temperature),
		MaxTokens:   cfg.MaxTokens,
	}

	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, req)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return nil, &ProviderError{
			Provider: "openai",
			Timeout:  errors.Is(err, context.DeadlineExceeded),
			Err:      err,
		}
	}

	if len(resp.Choices) == 0 {
		return nil, &ProviderError{
			Provider: "openai",
			Err:      fmt.Errorf("model %s returned an empty choice list", model),
		}
	}

	return &ModelResponse{
		Text:       resp.Choices[0].Message.Content,
		TokensUsed: resp.Usage.TotalTokens,
		LatencyMs:  latency,
	}, nil
}
