// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = openai.GPT4oMini

// OpenAIModel calls the OpenAI chat completions API (or a compatible endpoint).
type OpenAIModel struct {
	client      *openai.Client
	name        string
	temperature float32
}

// NewOpenAIModel builds the model client once at startup.
func NewOpenAIModel(cfg types.ModelConfig) *OpenAIModel {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	name := cfg.Name
	if name == "" {
		name = DefaultModel
	}
	return &OpenAIModel{
		client:      openai.NewClientWithConfig(clientCfg),
		name:        name,
		temperature: requestTemperature(cfg.Temperature),
	}
}

// requestTemperature maps a configured 0 to the smallest positive float32.
// The request field is omitempty, so a literal 0 would leave the provider
// default (1.0) in effect.
func requestTemperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}

// Complete sends the system instruction and user context as two messages
// and returns the first choice's content as received.
func (m *OpenAIModel) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       m.name,
		Temperature: m.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("model returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// parseAPIError extracts a human-readable message from an API failure.
func parseAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("model API error %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("model API error %d: %s", reqErr.HTTPStatusCode, detail)
		}
		return fmt.Errorf("model API error %d: %w", reqErr.HTTPStatusCode, reqErr.Err)
	}

	return fmt.Errorf("model request failed: %w", err)
}

// extractDetail reads the "detail" field some compatible providers return.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		return parsed.Detail
	}
	return ""
}
