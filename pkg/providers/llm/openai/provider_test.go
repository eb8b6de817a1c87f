package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loayabdalslam/Orchestrator/pkg/interfaces/types"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	f := &Factory{HTTPClient: server.Client()}
	p, err := f.Create(types.ProviderConfig{
		Name:    types.ProviderOpenAI,
		Model:   "gpt-4o-mini",
		APIKey:  "sk-test",
		BaseURL: server.URL + "/",
	})
	require.NoError(t, err)
	return p.(*Provider)
}

func TestGenerateResponse(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req OpenAIRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "be brief", req.Messages[0].Content)
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.Equal(t, "hello", req.Messages[1].Content)

		_ = json.NewEncoder(w).Encode(OpenAIResponse{
			Choices: []OpenAIChoice{{Message: OpenAIMessage{Role: "assistant", Content: "PROJECT_NAME: demo"}}},
		})
	})

	out, err := p.GenerateResponse(context.Background(), "hello", "be brief")
	require.NoError(t, err)
	assert.Equal(t, "PROJECT_NAME: demo", out)
}

func TestGenerateResponseAPIError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota exceeded"}`, http.StatusTooManyRequests)
	})

	_, err := p.GenerateResponse(context.Background(), "hello", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestGenerateResponseNoChoices(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := p.GenerateResponse(context.Background(), "hello", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestValidate(t *testing.T) {
	f := &Factory{}
	assert.Error(t, f.Validate(types.ProviderConfig{Model: "gpt-4"}))
	assert.Error(t, f.Validate(types.ProviderConfig{APIKey: "k"}))
	assert.NoError(t, f.Validate(types.ProviderConfig{Model: "gpt-4", APIKey: "k"}))
}
