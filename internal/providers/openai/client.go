// Package openai adapts the OpenAI chat completions API to llm.Client,
// the provider router's (internal/provider) second concrete backend.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/ukcompliance/complianceengine/internal/llm"
)

// DefaultModel is used when a gate doesn't request a specific model.
const DefaultModel = openai.ChatModelGPT4oMini

// Client wraps an openai.Client to satisfy llm.Client.
type Client struct {
	api       openai.Client
	modelName string
}

// New constructs a Client for modelName, authenticating with apiKey.
func New(apiKey, modelName string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("openai: API key cannot be empty")
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	return &Client{
		api:       openai.NewClient(option.WithAPIKey(apiKey)),
		modelName: modelName,
	}, nil
}

// GenerateContent implements llm.Client.
func (c *Client) GenerateContent(ctx context.Context, prompt string, params map[string]interface{}) (*llm.Result, error) {
	completion, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai: generating content: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, errors.New("openai: response had no choices")
	}

	choice := completion.Choices[0]
	return &llm.Result{
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
	}, nil
}

// ModelName implements llm.Client.
func (c *Client) ModelName() string { return c.modelName }

// Close implements llm.Client. The OpenAI SDK client holds no
// long-lived connection to release.
func (c *Client) Close() error { return nil }
