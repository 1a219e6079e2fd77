package analysis

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// Client is the minimal surface needed to call a chat model. It mirrors the
// go-openai method so any OpenAI-compatible backend, including local ones,
// can be plugged in.
type Client interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// NewClient returns a chat client for the configured backend. baseURL may
// point at any OpenAI-compatible endpoint; empty means the default API.
func NewClient(apiKey, baseURL string) Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}
