package ollama

import (
	"context"
	"errors"
	"testing"

	ollama "github.com/ollama/ollama/api"
	"github.com/stretchr/testify/require"

	"github.com/loayabdalslam/Orchestrator/pkg/interfaces/types"
)

type stubOllamaClient struct {
	chatErr       error
	chatResponses []ollama.ChatResponse
	chatRequest   *ollama.ChatRequest
}

func (s *stubOllamaClient) Chat(ctx context.Context, req *ollama.ChatRequest, fn ollama.ChatResponseFunc) error {
	s.chatRequest = req
	if s.chatErr != nil {
		return s.chatErr
	}
	if fn != nil {
		for _, resp := range s.chatResponses {
			if err := fn(resp); err != nil {
				return err
			}
		}
	}
	return nil
}

func TestGenerateResponseSendsNonStreamingChat(t *testing.T) {
	stub := &stubOllamaClient{chatResponses: []ollama.ChatResponse{
		{Message: ollama.Message{Role: "assistant", Content: "FILE: main.go\n"}},
		{Message: ollama.Message{Role: "assistant", Content: "package main"}},
	}}
	p := &Provider{config: types.ProviderConfig{Name: types.ProviderOllama, Model: "llama3"}, client: stub}

	out, err := p.GenerateResponse(context.Background(), "write main", "you write code")
	require.NoError(t, err)
	require.Equal(t, "FILE: main.go\npackage main", out)

	req := stub.chatRequest
	require.NotNil(t, req)
	require.Equal(t, "llama3", req.Model)
	require.NotNil(t, req.Stream)
	require.False(t, *req.Stream)
	require.Len(t, req.Messages, 2)
	require.Equal(t, "system", req.Messages[0].Role)
	require.Equal(t, "user", req.Messages[1].Role)
	require.Equal(t, "write main", req.Messages[1].Content)
}

func TestGenerateResponseChatError(t *testing.T) {
	stub := &stubOllamaClient{chatErr: errors.New("connection refused")}
	p := &Provider{config: types.ProviderConfig{Model: "llama3"}, client: stub}

	_, err := p.GenerateResponse(context.Background(), "hi", "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "connection refused")
	require.Len(t, stub.chatRequest.Messages, 1)
}

func TestCreateWithEndpoint(t *testing.T) {
	f := &Factory{}
	p, err := f.Create(types.ProviderConfig{Name: types.ProviderOllama, Model: "llama3", BaseURL: "http://127.0.0.1:11434"})
	require.NoError(t, err)
	require.Equal(t, "ollama", p.GetName())

	require.Error(t, f.Validate(types.ProviderConfig{}))
}
