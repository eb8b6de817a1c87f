package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	ollama "github.com/ollama/ollama/api"

	"github.com/loayabdalslam/Orchestrator/pkg/interfaces"
	"github.com/loayabdalslam/Orchestrator/pkg/interfaces/types"
)

// chatClient is the subset of the ollama API client used here.
type chatClient interface {
	Chat(ctx context.Context, req *ollama.ChatRequest, fn ollama.ChatResponseFunc) error
}

// Provider implements the Ollama LLM provider
type Provider struct {
	config types.ProviderConfig
	client chatClient
}

// Factory implements the ProviderFactory interface for Ollama
type Factory struct{}

// GetName returns the provider name
func (f *Factory) GetName() types.Provider {
	return types.ProviderOllama
}

// Create creates a new Ollama provider instance. The endpoint comes from the
// configuration when set, otherwise from OLLAMA_HOST.
func (f *Factory) Create(config types.ProviderConfig) (interfaces.LLMProvider, error) {
	if err := f.Validate(config); err != nil {
		return nil, err
	}

	client, err := newClient(config.BaseURL)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config: config,
		client: client,
	}, nil
}

func newClient(endpoint string) (chatClient, error) {
	if endpoint == "" {
		client, err := ollama.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("could not create ollama client: %w", err)
		}
		return client, nil
	}

	base, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama endpoint %q: %w", endpoint, err)
	}
	return ollama.NewClient(base, http.DefaultClient), nil
}

// Validate validates the Ollama provider configuration
func (f *Factory) Validate(config types.ProviderConfig) error {
	if config.Model == "" {
		return fmt.Errorf("model is required for Ollama provider")
	}

	return nil
}

// GetName returns the provider name
func (p *Provider) GetName() string {
	return string(types.ProviderOllama)
}

// GenerateResponse sends a non-streaming chat request to Ollama
func (p *Provider) GenerateResponse(ctx context.Context, prompt, systemPrompt string) (string, error) {
	messages := make([]ollama.Message, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, ollama.Message{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, ollama.Message{Role: "user", Content: prompt})

	stream := false
	req := &ollama.ChatRequest{
		Model:    p.config.Model,
		Messages: messages,
		Stream:   &stream,
	}

	var responseContent strings.Builder
	respFunc := func(res ollama.ChatResponse) error {
		responseContent.WriteString(res.Message.Content)
		return nil
	}

	if err := p.client.Chat(ctx, req, respFunc); err != nil {
		return "", fmt.Errorf("ollama chat request failed: %w", err)
	}

	return responseContent.String(), nil
}
