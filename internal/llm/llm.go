package llm

import (
	"context"
	"errors"
)

// Client sends a prompt to a generative model and returns its raw text reply.
type Client interface {
	Generate(ctx context.Context, prompt string, cfg GenerationConfig) (string, error)
}

// GenerationConfig carries sampling parameters. Providers ignore fields they do not support.
type GenerationConfig struct {
	Temperature     float64
	TopK            int
	TopP            float64
	MaxOutputTokens int
}

// DefaultGenerationConfig keeps output close to deterministic.
var DefaultGenerationConfig = GenerationConfig{
	Temperature:     0.1,
	TopK:            32,
	TopP:            0.95,
	MaxOutputTokens: 8192,
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("AI provider not configured")

// PlaceholderClient is used when no provider is configured.
type PlaceholderClient struct{}

// Generate returns ErrNotConfigured.
func (PlaceholderClient) Generate(ctx context.Context, prompt string, cfg GenerationConfig) (string, error) {
	_ = ctx
	_ = prompt
	_ = cfg
	return "", ErrNotConfigured
}
