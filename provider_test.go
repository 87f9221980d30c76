package quizstream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTextGenerator(t *testing.T) {
	ctx := context.Background()

	g, err := NewTextGenerator(ctx, ProviderConfig{Provider: "mock"})
	require.NoError(t, err)
	assert.Equal(t, "mock", g.Name())

	g, err = NewTextGenerator(ctx, ProviderConfig{Provider: "openai", OpenAIAPIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "openai/"+DefaultOpenAIModel, g.Name())

	g, err = NewTextGenerator(ctx, ProviderConfig{Provider: "anthropic", AnthropicAPIKey: "k", Model: "claude-test"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic/claude-test", g.Name())

	g, err = NewTextGenerator(ctx, ProviderConfig{Provider: "gemini", GeminiAPIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "gemini/"+DefaultGeminiModel, g.Name())

	_, err = NewTextGenerator(ctx, ProviderConfig{Provider: "gemini"})
	assert.Error(t, err)

	_, err = NewTextGenerator(ctx, ProviderConfig{Provider: "palm"})
	assert.Error(t, err)
}

func TestOpenAIGenerator(t *testing.T) {
	var got openai.ChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "[]"}, "finish_reason": "stop"}]
		}`)
	}))
	defer server.Close()

	g, err := NewOpenAIGenerator("sk-test", server.URL+"/v1", "gpt-4o-mini")
	require.NoError(t, err)

	text, err := g.Generate(context.Background(), "make questions")
	require.NoError(t, err)
	assert.Equal(t, "[]", text)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, "make questions", got.Messages[1].Content)
}

func TestOpenAIGenerator_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"error": {"message": "slow down", "type": "rate_limit_error"}}`)
	}))
	defer server.Close()

	g, err := NewOpenAIGenerator("sk-test", server.URL+"/v1", "gpt-4o-mini")
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), "p")
	var apiErr *openai.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.HTTPStatusCode)
}

func TestOpenAIGenerator_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id": "chatcmpl-1", "object": "chat.completion", "choices": []}`)
	}))
	defer server.Close()

	g, err := NewOpenAIGenerator("sk-test", server.URL+"/v1", "gpt-4o-mini")
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), "p")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestAnthropicGenerator(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant-test", r.Header.Get("X-Api-Key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-test",
			"content": [{"type": "text", "text": "[{\"question\":\"Q1\"}]"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`)
	}))
	defer server.Close()

	g, err := NewAnthropicGenerator("sk-ant-test", "claude-test",
		option.WithBaseURL(server.URL), option.WithMaxRetries(0))
	require.NoError(t, err)

	text, err := g.Generate(context.Background(), "make questions")
	require.NoError(t, err)
	assert.Equal(t, `[{"question":"Q1"}]`, text)

	assert.Equal(t, "claude-test", body["model"])
	assert.EqualValues(t, anthropicMaxTokens, body["max_tokens"])
}

func TestAnthropicGenerator_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"type": "error", "error": {"type": "invalid_request_error", "message": "bad model"}}`)
	}))
	defer server.Close()

	g, err := NewAnthropicGenerator("sk-ant-test", "claude-test",
		option.WithBaseURL(server.URL), option.WithMaxRetries(0))
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create message")
}

func TestGeminiGenerator(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-test:generateContent"), r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"candidates": [{
				"content": {"role": "model", "parts": [{"text": "[]"}]},
				"finishReason": "STOP"
			}]
		}`)
	}))
	defer server.Close()

	g, err := NewGeminiGenerator(context.Background(), "gm-test", server.URL, "gemini-test")
	require.NoError(t, err)

	text, err := g.Generate(context.Background(), "make questions")
	require.NoError(t, err)
	assert.Equal(t, "[]", text)
	assert.Contains(t, body, "systemInstruction")
}

func TestGeminiGenerator_EmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"candidates": []}`)
	}))
	defer server.Close()

	g, err := NewGeminiGenerator(context.Background(), "gm-test", server.URL, "gemini-test")
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), "p")
	assert.True(t, errors.Is(err, ErrEmptyResponse))
}
