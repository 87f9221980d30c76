package quizstream

import (
	"context"
	"fmt"
)

// TextGenerator is the external model: one prompt in, raw text out.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)

	// Name identifies the provider and model in logs.
	Name() string
}

// ProviderConfig holds the settings of every supported model provider.
type ProviderConfig struct {
	// Provider selects the backend: gemini, openai, anthropic or mock.
	Provider string `mapstructure:"provider"`

	// Model overrides the provider's default model when set.
	Model string `mapstructure:"model"`

	GeminiAPIKey    string `mapstructure:"-"`
	GeminiBaseURL   string `mapstructure:"-"`
	OpenAIAPIKey    string `mapstructure:"-"`
	OpenAIBaseURL   string `mapstructure:"-"`
	AnthropicAPIKey string `mapstructure:"-"`
}

// Default models per provider.
const (
	DefaultGeminiModel    = "gemini-1.5-flash"
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-haiku-4-5-20251001"
)

// NewTextGenerator builds the provider named in cfg.
func NewTextGenerator(ctx context.Context, cfg ProviderConfig) (TextGenerator, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiBaseURL, modelOr(cfg.Model, DefaultGeminiModel))
	case "openai":
		return NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, modelOr(cfg.Model, DefaultOpenAIModel))
	case "anthropic":
		return NewAnthropicGenerator(cfg.AnthropicAPIKey, modelOr(cfg.Model, DefaultAnthropicModel))
	case "mock":
		return NewMockGenerator(MockResponse{Text: SampleResponse}), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
}

func modelOr(model, fallback string) string {
	if model != "" {
		return model
	}
	return fallback
}
