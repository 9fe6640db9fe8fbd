package infrastructure

import (
	"context"
	"fmt"

	"sattbot/application"

	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
)

// OpenRouterClient implements the AIClient interface against the
// OpenRouter chat completion API, which speaks the OpenAI wire format.
type OpenRouterClient struct {
	client       *openai.Client
	defaultModel string
}

// NewOpenRouterClient creates a new client. An empty API key yields a
// client whose calls fail with ErrAIUnavailable, so callers can wire
// it unconditionally.
func NewOpenRouterClient(apiKey, baseURL, defaultModel string) *OpenRouterClient {
	if apiKey == "" {
		log.Warn("No OpenRouter API key configured, AI features disabled")
		return &OpenRouterClient{defaultModel: defaultModel}
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL
	return &OpenRouterClient{
		client:       openai.NewClientWithConfig(config),
		defaultModel: defaultModel,
	}
}

// Complete runs a single-turn completion. model may be empty to use
// the configured default.
func (c *OpenRouterClient) Complete(ctx context.Context, model, system, prompt string) (string, error) {
	if c.client == nil {
		return "", application.ErrAIUnavailable
	}
	if model == "" {
		model = c.defaultModel
	}

	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		log.WithFields(log.Fields{
			"model": model,
			"error": err,
		}).Error("AI completion failed")
		return "", fmt.Errorf("%w: %v", application.ErrAIUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", application.ErrAIUnavailable)
	}

	return resp.Choices[0].Message.Content, nil
}
