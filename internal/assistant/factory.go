package assistant

import (
	"context"
	"fmt"
	"time"
)

// FactoryConfig holds the parameters needed to create a Provider. It is
// defined here so that the assistant package does not import config.
type FactoryConfig struct {
	// Provider is "anthropic", "openai" or "vertex". Empty disables the assistant.
	Provider    string
	Temperature float64
	Timeout     time.Duration
	MaxRetries  int
	Anthropic   AnthropicConfig
	OpenAI      OpenAIConfig
	Vertex      VertexConfig
}

// NewProvider creates the configured Provider. It returns ErrNotConfigured
// when the provider is empty or its credentials are missing.
func NewProvider(ctx context.Context, cfg FactoryConfig) (Provider, error) {
	switch cfg.Provider {
	case "":
		return nil, ErrNotConfigured
	case "anthropic":
		if cfg.Anthropic.APIKey == "" {
			return nil, fmt.Errorf("anthropic: missing API key: %w", ErrNotConfigured)
		}
		return NewAnthropicProvider(cfg.Anthropic, cfg.Temperature, cfg.Timeout, cfg.MaxRetries), nil
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("openai: missing API key: %w", ErrNotConfigured)
		}
		return NewOpenAIProvider(cfg.OpenAI, cfg.Temperature, cfg.Timeout, cfg.MaxRetries), nil
	case "vertex":
		if cfg.Vertex.ProjectID == "" {
			return nil, fmt.Errorf("vertex: missing project ID: %w", ErrNotConfigured)
		}
		return NewVertexProvider(ctx, cfg.Vertex, cfg.Temperature)
	default:
		return nil, fmt.Errorf("unsupported assistant provider: %q", cfg.Provider)
	}
}
