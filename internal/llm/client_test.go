package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalibr1/cinequery/internal/config"
	"github.com/kalibr1/cinequery/internal/logging"
)

func silentLog() *logging.Logger {
	return logging.New(nil, "silent")
}

// --- Registry tests ---

func TestRegistryResolveOrder(t *testing.T) {
	reg := NewRegistry(silentLog())
	gem := &MockClient{ProviderName: "gemini"}
	cla := &MockClient{ProviderName: "claude"}
	reg.Register("gemini", gem)
	reg.Register("claude", cla)
	reg.Alias("sonnet", "claude")
	reg.SetFallback("gemini")

	c, err := reg.Resolve("claude")
	require.NoError(t, err)
	assert.Equal(t, "claude", c.Name())

	c, err = reg.Resolve("sonnet")
	require.NoError(t, err)
	assert.Equal(t, "claude", c.Name())

	c, err = reg.Resolve("some-unknown-model")
	require.NoError(t, err)
	assert.Equal(t, "gemini", c.Name())
}

func TestRegistryResolveNoProviders(t *testing.T) {
	reg := NewRegistry(silentLog())
	_, err := reg.Resolve("anything")
	assert.Error(t, err)
}

func TestNewRegistryFromConfig(t *testing.T) {
	reg := NewRegistryFromConfig(config.ModelConfig{
		Provider: "gemini",
		APIKey:   "test-key",
		Model:    "gemini-flash-latest",
	}, silentLog())

	assert.Equal(t, []string{"gemini"}, reg.List())

	c, err := reg.Resolve("gemini-flash-latest")
	require.NoError(t, err)
	assert.Equal(t, "gemini", c.Name())
}

func TestNewRegistryFromConfigFallbacks(t *testing.T) {
	reg := NewRegistryFromConfig(config.ModelConfig{
		Provider:  "claude",
		APIKey:    "test-key",
		Model:     "claude-sonnet-4-5",
		Fallbacks: []string{"claude-haiku-4-5", "claude-opus-4-1"},
	}, silentLog())

	// Configured fallback model names resolve to the active provider.
	for _, model := range []string{"claude-haiku-4-5", "claude-opus-4-1"} {
		c, err := reg.Resolve(model)
		require.NoError(t, err)
		assert.Equal(t, "claude", c.Name())
	}
}

// --- Provider client tests ---

func TestGeminiCompleteFunctionCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, ":generateContent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"candidates": [{
				"content": {
					"role": "model",
					"parts": [{"functionCall": {"name": "run_sql", "args": {"query": "SELECT 1"}}}]
				},
				"finishReason": "STOP"
			}],
			"usageMetadata": {"promptTokenCount": 12, "candidatesTokenCount": 4}
		}`))
	}))
	defer srv.Close()

	client := NewGeminiAPIClient("key", "gemini-flash-latest")
	client.baseURL = srv.URL

	resp, err := client.Complete(context.Background(), CompletionRequest{
		System:    "You are a data analyst.",
		Messages:  []Message{{Role: RoleUser, Content: "How many movies?"}},
		Tools:     []ToolDefinition{{Name: "run_sql", Description: "Run SQL", InputSchema: `{"type":"object"}`}},
		MaxTokens: 256,
	})
	require.NoError(t, err)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "run_sql", resp.ToolCalls[0].Name)
	assert.JSONEq(t, `{"query": "SELECT 1"}`, resp.ToolCalls[0].Input)
	assert.Equal(t, 12, resp.Usage.InputTokens)
}

func TestGeminiCompleteAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewGeminiAPIClient("key", "gemini-flash-latest")
	client.baseURL = srv.URL

	_, err := client.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
	provErr, ok := err.(*ProviderError)
	require.True(t, ok)
	assert.Equal(t, http.StatusTooManyRequests, provErr.Code)
}

func TestClaudeCompleteToolUse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("x-api-key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-sonnet",
			"stop_reason": "tool_use",
			"content": [
				{"type": "text", "text": "Let me check."},
				{"type": "tool_use", "id": "tu_1", "name": "run_sql", "input": {"query": "SELECT 1"}}
			],
			"usage": {"input_tokens": 9, "output_tokens": 3}
		}`))
	}))
	defer srv.Close()

	client := NewClaudeAPIClient("key", "claude-sonnet")
	client.baseURL = srv.URL

	resp, err := client.Complete(context.Background(), CompletionRequest{
		Messages:  []Message{{Role: RoleUser, Content: "How many movies?"}},
		MaxTokens: 256,
	})
	require.NoError(t, err)
	assert.Equal(t, "Let me check.", resp.Content)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "tu_1", resp.ToolCalls[0].ID)
	assert.JSONEq(t, `{"query": "SELECT 1"}`, resp.ToolCalls[0].Input)
}

func TestParseJSONSchema(t *testing.T) {
	assert.Nil(t, parseJSONSchema(""))
	assert.Nil(t, parseJSONSchema("{not json"))
	schema := parseJSONSchema(`{"type":"object"}`)
	require.NotNil(t, schema)
	assert.Equal(t, "object", schema["type"])
}
