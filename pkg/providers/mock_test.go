package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockProviderScriptedResponses(t *testing.T) {
	p := &MockProvider{
		Responses:     map[string]string{"weather": "It is sunny."},
		TokensPerCall: 12,
		CostPerCall:   0.002,
	}

	resp, err := p.Invoke(context.Background(), "What is the weather like?", ModelConfig{})
	require.NoError(t, err)
	assert.Equal(t, "It is sunny.", resp.Text)
	assert.Equal(t, 12, resp.TokensUsed)
	assert.Equal(t, 0.002, resp.CostEstimate)
}

func TestMockProviderDefaultResponse(t *testing.T) {
	p := &MockProvider{}

	resp, err := p.Invoke(context.Background(), "anything", ModelConfig{})
	require.NoError(t, err)
	assert.Contains(t, resp.Text, "anything")
}

func TestMockProviderScriptedErrors(t *testing.T) {
	boom := errors.New("rate limited")
	p := &MockProvider{
		Errors: map[string]error{"fail": boom},
	}

	_, err := p.Invoke(context.Background(), "please fail now", ModelConfig{})
	require.Error(t, err)

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.False(t, provErr.Timeout)
	assert.ErrorIs(t, err, boom)
}

func TestMockProviderTimeout(t *testing.T) {
	p := &MockProvider{Latency: 500 * time.Millisecond}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Invoke(ctx, "slow prompt", ModelConfig{})
	require.Error(t, err)

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.True(t, provErr.Timeout)
}

func TestMockProviderRecordsCalls(t *testing.T) {
	p := &MockProvider{}

	_, err := p.Invoke(context.Background(), "first", ModelConfig{})
	require.NoError(t, err)
	_, err = p.Invoke(context.Background(), "second", ModelConfig{})
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, p.Calls())
}
