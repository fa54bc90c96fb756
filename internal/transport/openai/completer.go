package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/civic-ai/lawdex/internal/domain"
)

const defaultSystemPrompt = "You are an assistant for municipal government staff. Answer accurately and clearly."

// Completer is a text-completion provider using the OpenAI-compatible chat API.
type Completer struct {
	client       *openai.Client
	model        string
	systemPrompt string
	logger       *zap.Logger
}

// CompleterConfig holds the completion provider settings.
type CompleterConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	SystemPrompt string
	Logger       *zap.Logger
}

// NewCompleter creates an OpenAI-compatible completion provider.
func NewCompleter(cfg *CompleterConfig) *Completer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	system := cfg.SystemPrompt
	if system == "" {
		system = defaultSystemPrompt
	}

	return &Completer{
		client:       openai.NewClientWithConfig(clientCfg),
		model:        cfg.Model,
		systemPrompt: system,
		logger:       cfg.Logger,
	}
}

// Complete implements domain.Completer via a single chat turn.
func (c *Completer) Complete(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", wrapCompletionError(err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response: %w", domain.ErrCompletionProviderError)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func wrapCompletionError(err error) error {
	wrap := domain.ErrCompletionProviderError

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("completion API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("completion request failed: %w", wrap)
}
