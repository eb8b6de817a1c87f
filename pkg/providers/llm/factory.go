package llm

import (
	"fmt"

	"github.com/loayabdalslam/Orchestrator/pkg/apikeys"
	"github.com/loayabdalslam/Orchestrator/pkg/interfaces"
	"github.com/loayabdalslam/Orchestrator/pkg/interfaces/types"
	"github.com/loayabdalslam/Orchestrator/pkg/providers/llm/gemini"
	"github.com/loayabdalslam/Orchestrator/pkg/providers/llm/ollama"
	"github.com/loayabdalslam/Orchestrator/pkg/providers/llm/openai"
)

// NewDefaultRegistry returns a registry with the openai, gemini and ollama
// backends registered.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, f := range []ProviderFactory{&openai.Factory{}, &gemini.Factory{}, &ollama.Factory{}} {
		// Names are distinct, Register cannot fail here.
		_ = r.Register(f)
	}
	return r
}

// Factory creates providers from role configuration, resolving credentials
// on the way.
type Factory struct {
	registry *Registry
}

// NewFactory creates a new provider factory
func NewFactory(registry *Registry) *Factory {
	if registry == nil {
		registry = NewDefaultRegistry()
	}
	return &Factory{
		registry: registry,
	}
}

// CreateProvider resolves the API key and builds a provider instance
func (f *Factory) CreateProvider(config types.ProviderConfig) (interfaces.LLMProvider, error) {
	if config.Name == "" {
		return nil, fmt.Errorf("provider name is required")
	}

	key, err := apikeys.Resolve(config.Name, config.APIKey)
	if err != nil {
		return nil, err
	}

	return f.registry.GetProvider(config.WithAPIKey(key))
}

// GetAvailableProviders returns a list of available provider names
func (f *Factory) GetAvailableProviders() []types.Provider {
	return f.registry.ListProviders()
}
