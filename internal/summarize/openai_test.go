// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-assistant/pkg/types"
)

func openAITestServer(t *testing.T, statusCode int, body string, got *openai.ChatCompletionRequest) string {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		if got != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(ts.Close)
	return ts.URL + "/v1"
}

const sampleCompletion = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "model": "gpt-4o-mini",
  "choices": [
    {"index": 0, "message": {"role": "assistant", "content": "\n- Finding (A1)\n"}, "finish_reason": "stop"}
  ]
}`

func TestOpenAIModelComplete(t *testing.T) {
	var req openai.ChatCompletionRequest
	baseURL := openAITestServer(t, http.StatusOK, sampleCompletion, &req)

	m := NewOpenAIModel(types.ModelConfig{APIKey: "sk-test", BaseURL: baseURL, Temperature: 0.2})
	text, err := m.Complete(context.Background(), "system text", "user text")
	require.NoError(t, err)
	assert.Equal(t, "\n- Finding (A1)\n", text, "model text is returned unmodified")

	assert.Equal(t, DefaultModel, req.Model)
	assert.InDelta(t, 0.2, req.Temperature, 1e-6)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
	assert.Equal(t, "system text", req.Messages[0].Content)
	assert.Equal(t, openai.ChatMessageRoleUser, req.Messages[1].Role)
	assert.Equal(t, "user text", req.Messages[1].Content)
}

func TestOpenAIModelZeroTemperatureIsSent(t *testing.T) {
	var raw map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sampleCompletion)
	}))
	t.Cleanup(ts.Close)

	m := NewOpenAIModel(types.ModelConfig{APIKey: "sk-test", BaseURL: ts.URL + "/v1", Temperature: 0})
	_, err := m.Complete(context.Background(), "s", "u")
	require.NoError(t, err)

	require.Contains(t, raw, "temperature", "a configured 0 must not be dropped from the request")
	temp, ok := raw["temperature"].(float64)
	require.True(t, ok)
	assert.Greater(t, temp, 0.0)
	assert.Less(t, temp, 1e-6)
}

func TestRequestTemperature(t *testing.T) {
	assert.Equal(t, float32(math.SmallestNonzeroFloat32), requestTemperature(0))
	assert.Equal(t, float32(0.2), requestTemperature(0.2))
}

func TestOpenAIModelNoChoices(t *testing.T) {
	baseURL := openAITestServer(t, http.StatusOK, `{"id":"x","choices":[]}`, nil)

	m := NewOpenAIModel(types.ModelConfig{APIKey: "sk-test", BaseURL: baseURL, Name: "custom-model"})
	_, err := m.Complete(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestOpenAIModelAPIError(t *testing.T) {
	baseURL := openAITestServer(t, http.StatusUnauthorized,
		`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`, nil)

	m := NewOpenAIModel(types.ModelConfig{APIKey: "sk-test", BaseURL: baseURL})
	_, err := m.Complete(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "Incorrect API key provided")
}

func TestExtractDetail(t *testing.T) {
	assert.Equal(t, "quota exceeded", extractDetail([]byte(`{"detail":"quota exceeded"}`)))
	assert.Empty(t, extractDetail([]byte(`not json`)))
	assert.Empty(t, extractDetail(nil))
}
