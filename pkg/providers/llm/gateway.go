package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/loayabdalslam/Orchestrator/pkg/interfaces"
	"github.com/loayabdalslam/Orchestrator/pkg/interfaces/types"
	"github.com/loayabdalslam/Orchestrator/pkg/logging"
	"github.com/loayabdalslam/Orchestrator/pkg/metrics"
)

// Gateway sends prompts to the backend chosen at construction. Callers never
// see which provider sits behind it.
type Gateway struct {
	provider interfaces.LLMProvider
	config   types.ProviderConfig
	logger   *logging.Logger
	metrics  *metrics.Collector
	limiter  *rate.Limiter
}

// GatewayOption customises a Gateway.
type GatewayOption func(*Gateway)

// WithLogger sets the logger used for per-call records.
func WithLogger(l *logging.Logger) GatewayOption {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithMetrics records every call in the collector.
func WithMetrics(m *metrics.Collector) GatewayOption {
	return func(g *Gateway) { g.metrics = m }
}

// WithRateLimiter makes every call wait for the limiter first. A limiter may
// be shared by several gateways.
func WithRateLimiter(l *rate.Limiter) GatewayOption {
	return func(g *Gateway) { g.limiter = l }
}

// NewGateway wraps an existing provider.
func NewGateway(provider interfaces.LLMProvider, config types.ProviderConfig, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		provider: provider,
		config:   config,
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.Component("ModelGateway")
	return g
}

// NewGateway builds the provider for config and wraps it.
func (f *Factory) NewGateway(config types.ProviderConfig, opts ...GatewayOption) (*Gateway, error) {
	provider, err := f.CreateProvider(config)
	if err != nil {
		return nil, err
	}
	return NewGateway(provider, config, opts...), nil
}

// Provider returns the backend tag this gateway was built for.
func (g *Gateway) Provider() types.Provider {
	return g.config.Name
}

// Model returns the configured model name.
func (g *Gateway) Model() string {
	return g.config.Model
}

// Generate sends one prompt and returns the raw reply. Failures and blank
// replies are returned as *BackendError. There is no retry.
func (g *Gateway) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", g.backendError(fmt.Errorf("rate limiter: %w", err))
		}
	}

	g.logger.Info("Calling %s (%s), prompt %d chars", g.config.Name, g.config.Model, len(prompt))
	start := time.Now()

	text, err := g.provider.GenerateResponse(ctx, prompt, systemPrompt)
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrEmptyResponse
	}
	elapsed := time.Since(start)
	g.metrics.RecordGeneration(string(g.config.Name), elapsed, err)

	if err != nil {
		g.logger.Error("%s call failed after %.2fs: %v", g.config.Name, elapsed.Seconds(), err)
		return "", g.backendError(err)
	}

	g.logger.Success("%s responded in %.2fs (%d chars)", g.config.Name, elapsed.Seconds(), len(text))
	return text, nil
}

func (g *Gateway) backendError(err error) *BackendError {
	return &BackendError{Provider: g.config.Name, Model: g.config.Model, Err: err}
}
