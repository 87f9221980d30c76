package quizstream

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = "You are an expert quiz question generator. Generate high-quality multiple choice questions with exactly 4 options each. Reply with JSON only."

// OpenAIGenerator generates text with the OpenAI chat completions API, or any
// compatible API when a base URL is given.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator creates a new generator with OpenAI client
func NewOpenAIGenerator(apiKey, baseURL, model string) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}, nil
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: g.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate questions: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response: %w", ErrEmptyResponse)
	}

	text := resp.Choices[0].Message.Content
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (g *OpenAIGenerator) Name() string {
	return "openai/" + g.model
}
