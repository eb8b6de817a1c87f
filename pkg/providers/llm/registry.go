package llm

import (
	"fmt"
	"sort"
	"sync"

	"github.com/loayabdalslam/Orchestrator/pkg/interfaces"
	"github.com/loayabdalslam/Orchestrator/pkg/interfaces/types"
)

// Registry manages LLM provider registration and discovery
type Registry struct {
	mu        sync.RWMutex
	providers map[types.Provider]ProviderFactory
}

// ProviderFactory creates new instances of a specific provider
type ProviderFactory interface {
	// Create creates a new provider instance with the given configuration
	Create(config types.ProviderConfig) (interfaces.LLMProvider, error)

	// GetName returns the name of the provider
	GetName() types.Provider

	// Validate validates the provider configuration
	Validate(config types.ProviderConfig) error
}

// NewRegistry creates a new provider registry
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[types.Provider]ProviderFactory),
	}
}

// Register registers a new provider factory
func (r *Registry) Register(factory ProviderFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := factory.GetName()
	if name == "" {
		return fmt.Errorf("provider factory must have a non-empty name")
	}

	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("provider '%s' is already registered", name)
	}

	r.providers[name] = factory
	return nil
}

// GetProvider validates the configuration and builds a new provider instance.
// Every call returns a fresh instance; agent roles never share one.
func (r *Registry) GetProvider(config types.ProviderConfig) (interfaces.LLMProvider, error) {
	r.mu.RLock()
	factory, exists := r.providers[config.Name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("provider '%s' is not registered", config.Name)
	}

	if err := factory.Validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration for provider '%s': %w", config.Name, err)
	}

	instance, err := factory.Create(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider '%s': %w", config.Name, err)
	}
	return instance, nil
}

// ListProviders returns the names of all registered providers, sorted
func (r *Registry) ListProviders() []types.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]types.Provider, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	return names
}
