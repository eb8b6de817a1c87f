package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/loayabdalslam/Orchestrator/pkg/interfaces"
	"github.com/loayabdalslam/Orchestrator/pkg/interfaces/types"
)

// DefaultBaseURL is used when the configuration carries no endpoint.
const DefaultBaseURL = "https://api.openai.com/v1"

// Provider implements the OpenAI LLM provider
type Provider struct {
	config     types.ProviderConfig
	httpClient *http.Client
}

// Factory implements the ProviderFactory interface for OpenAI
type Factory struct {
	// HTTPClient overrides the client used by created providers.
	HTTPClient *http.Client
}

// GetName returns the provider name
func (f *Factory) GetName() types.Provider {
	return types.ProviderOpenAI
}

// Create creates a new OpenAI provider instance
func (f *Factory) Create(config types.ProviderConfig) (interfaces.LLMProvider, error) {
	if err := f.Validate(config); err != nil {
		return nil, err
	}

	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	client := f.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	return &Provider{
		config:     config,
		httpClient: client,
	}, nil
}

// Validate validates the OpenAI provider configuration
func (f *Factory) Validate(config types.ProviderConfig) error {
	if config.APIKey.Value() == "" {
		return fmt.Errorf("API key is required for OpenAI provider")
	}

	if config.Model == "" {
		return fmt.Errorf("model is required for OpenAI provider")
	}

	return nil
}

// GetName returns the provider name
func (p *Provider) GetName() string {
	return string(types.ProviderOpenAI)
}

// GenerateResponse sends a system and a user message to /chat/completions
func (p *Provider) GenerateResponse(ctx context.Context, prompt, systemPrompt string) (string, error) {
	requestBody, err := p.buildRequest(prompt, systemPrompt)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := p.makeRequest(ctx, requestBody)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	responseData, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(responseData)))
	}

	var apiResponse OpenAIResponse
	if err := json.Unmarshal(responseData, &apiResponse); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(apiResponse.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return apiResponse.Choices[0].Message.Content, nil
}

// buildRequest builds the OpenAI API request
func (p *Provider) buildRequest(prompt, systemPrompt string) ([]byte, error) {
	messages := make([]OpenAIMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, OpenAIMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, OpenAIMessage{Role: "user", Content: prompt})

	return json.Marshal(OpenAIRequest{
		Model:    p.config.Model,
		Messages: messages,
	})
}

// makeRequest makes an HTTP request to the OpenAI API
func (p *Provider) makeRequest(ctx context.Context, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.config.APIKey.Value())

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to OpenAI API: %w", err)
	}
	return resp, nil
}

// OpenAI API types
type OpenAIRequest struct {
	Model    string          `json:"model"`
	Messages []OpenAIMessage `json:"messages"`
}

type OpenAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type OpenAIResponse struct {
	ID      string         `json:"id"`
	Model   string         `json:"model"`
	Choices []OpenAIChoice `json:"choices"`
}

type OpenAIChoice struct {
	Index        int           `json:"index"`
	Message      OpenAIMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}
