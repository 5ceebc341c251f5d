// Package gemini adapts Google's Gemini API to llm.Client, so the
// provider router (internal/provider) can drive it behind a circuit
// breaker and rate limiter like any other outbound dependency.
package gemini

import (
	"context"
	"errors"
	"fmt"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/ukcompliance/complianceengine/internal/llm"
)

// DefaultModel is used when a gate doesn't request a specific model.
const DefaultModel = "gemini-1.5-flash"

// Client wraps a genai.GenerativeModel to satisfy llm.Client.
type Client struct {
	conn      *genai.Client
	model     *genai.GenerativeModel
	modelName string
}

// New constructs a Client for modelName, authenticating with apiKey.
// An empty apiEndpoint uses the SDK's default endpoint.
func New(ctx context.Context, apiKey, modelName, apiEndpoint string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: API key cannot be empty")
	}
	if modelName == "" {
		modelName = DefaultModel
	}

	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if apiEndpoint != "" {
		opts = append(opts, option.WithEndpoint(apiEndpoint))
	}

	conn, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini: creating client: %w", err)
	}

	model := conn.GenerativeModel(modelName)
	return &Client{conn: conn, model: model, modelName: modelName}, nil
}

// GenerateContent implements llm.Client.
func (c *Client) GenerateContent(ctx context.Context, prompt string, params map[string]interface{}) (*llm.Result, error) {
	if maxTokens, ok := params["max_output_tokens"].(int32); ok {
		c.model.SetMaxOutputTokens(maxTokens)
	}
	if temp, ok := params["temperature"].(float32); ok {
		c.model.SetTemperature(temp)
	}

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini: generating content: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return nil, errors.New("gemini: response had no candidates")
	}

	candidate := resp.Candidates[0]
	var text string
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text += string(t)
			}
		}
	}

	return &llm.Result{
		Content:      text,
		FinishReason: string(candidate.FinishReason),
	}, nil
}

// ModelName implements llm.Client.
func (c *Client) ModelName() string { return c.modelName }

// Close implements llm.Client.
func (c *Client) Close() error { return c.conn.Close() }
