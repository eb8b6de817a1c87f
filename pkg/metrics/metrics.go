package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeDeployed = "deployed"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Collector holds the Prometheus metrics of one process.
//
// Metrics:
//   - orchestrator_generations_total{provider,outcome} - backend calls
//   - orchestrator_generation_duration_seconds{provider} - backend call latency
//   - orchestrator_pipeline_runs_total{outcome} - finished pipeline runs
//
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	GenerationsTotal   *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec
	PipelineRunsTotal  *prometheus.CounterVec
}

// New creates a Collector backed by its own registry so that several
// collectors can coexist in one process (tests, embedded use).
func New() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Collector{
		registry: reg,
		GenerationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orchestrator_generations_total",
				Help: "Total number of backend generation calls",
			},
			[]string{"provider", "outcome"},
		),
		GenerationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "orchestrator_generation_duration_seconds",
				Help:    "Duration of backend generation calls in seconds",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~51s
			},
			[]string{"provider"},
		),
		PipelineRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orchestrator_pipeline_runs_total",
				Help: "Total number of finished pipeline runs",
			},
			[]string{"outcome"},
		),
	}
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// RecordGeneration records one backend call.
func (c *Collector) RecordGeneration(provider string, elapsed time.Duration, err error) {
	if c == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	c.GenerationsTotal.WithLabelValues(provider, outcome).Inc()
	c.GenerationDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// RecordPipelineRun records the outcome of a finished run.
func (c *Collector) RecordPipelineRun(outcome string) {
	if c == nil {
		return
	}
	c.PipelineRunsTotal.WithLabelValues(outcome).Inc()
}

// WriteTextfile writes all metrics in the node_exporter textfile format.
func (c *Collector) WriteTextfile(path string) error {
	if c == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
