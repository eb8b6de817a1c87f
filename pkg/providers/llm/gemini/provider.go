package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/loayabdalslam/Orchestrator/pkg/interfaces"
	"github.com/loayabdalslam/Orchestrator/pkg/interfaces/types"
)

// contentGenerator is the part of genai.Models the provider uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Provider implements the Gemini LLM provider
type Provider struct {
	config types.ProviderConfig
	models contentGenerator
}

// Factory implements the ProviderFactory interface for Gemini
type Factory struct{}

// GetName returns the provider name
func (f *Factory) GetName() types.Provider {
	return types.ProviderGemini
}

// Create creates a new Gemini provider instance
func (f *Factory) Create(config types.ProviderConfig) (interfaces.LLMProvider, error) {
	if err := f.Validate(config); err != nil {
		return nil, err
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  config.APIKey.Value(),
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	// NewClient does no network I/O; the context only scopes credential lookup.
	client, err := genai.NewClient(context.Background(), clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return newProvider(config, client.Models), nil
}

func newProvider(config types.ProviderConfig, models contentGenerator) *Provider {
	return &Provider{config: config, models: models}
}

// Validate validates the Gemini provider configuration
func (f *Factory) Validate(config types.ProviderConfig) error {
	if config.APIKey.Value() == "" {
		return fmt.Errorf("API key is required for Gemini provider")
	}

	if config.Model == "" {
		return fmt.Errorf("model is required for Gemini provider")
	}

	return nil
}

// GetName returns the provider name
func (p *Provider) GetName() string {
	return string(types.ProviderGemini)
}

// GenerateResponse generates a response from Gemini. Markdown bold markers
// are stripped from the returned text.
func (p *Provider) GenerateResponse(ctx context.Context, prompt, systemPrompt string) (string, error) {
	var cfg *genai.GenerateContentConfig
	if systemPrompt != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		}
	}

	resp, err := p.models.GenerateContent(ctx, p.config.Model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	return strings.ReplaceAll(responseText(resp), "**", ""), nil
}

// responseText concatenates the text parts of the first candidate, skipping
// thought summaries.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	content := resp.Candidates[0].Content
	if content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}
