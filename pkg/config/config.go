package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/loayabdalslam/Orchestrator/pkg/interfaces/types"
	"github.com/loayabdalslam/Orchestrator/pkg/logging"
	"github.com/loayabdalslam/Orchestrator/pkg/migrations"
)

const (
	// DefaultPath is read when no config file is named. It may be absent.
	DefaultPath = ".orchestrator/config.yaml"
	// EnvPrefix marks environment overrides. Double underscores separate
	// nesting levels: ORCH_AGENTS__PLANNER__MODEL sets agents.planner.model.
	EnvPrefix = "ORCH_"

	DefaultProvider = types.ProviderGemini
	DefaultModel    = "gemini-2.0-flash-exp"
)

// Role names an agent role.
type Role string

const (
	RolePlanner   Role = "planner"
	RoleDeveloper Role = "developer"
	RoleDeployer  Role = "deployer"
)

// AgentConfig is the backend binding of one role.
type AgentConfig struct {
	Provider string       `koanf:"provider"`
	Model    string       `koanf:"model"`
	APIKey   types.Secret `koanf:"api_key"`
	Endpoint string       `koanf:"endpoint"`
}

type Agents struct {
	Planner   AgentConfig `koanf:"planner"`
	Developer AgentConfig `koanf:"developer"`
	Deployer  AgentConfig `koanf:"deployer"`
}

type Migrations struct {
	Dir       string `koanf:"dir"`
	StateFile string `koanf:"state_file"`
}

// Config holds every setting of the orchestrator.
type Config struct {
	OutputDir         string        `koanf:"output_dir"`
	LogFile           string        `koanf:"log_file"`
	Debug             bool          `koanf:"debug"`
	NoColor           bool          `koanf:"no_color"`
	Concurrency       int           `koanf:"concurrency"`
	BackendTimeout    time.Duration `koanf:"backend_timeout"`     // zero means no timeout
	RequestsPerSecond float64       `koanf:"requests_per_second"` // zero means unlimited
	NameGeneration    bool          `koanf:"name_generation"`
	MetricsFile       string        `koanf:"metrics_file"`
	Agents            Agents        `koanf:"agents"`
	Migrations        Migrations    `koanf:"migrations"`
}

// Default returns the built-in configuration: every role on gemini,
// sequential generation, name generation on.
func Default() *Config {
	agent := AgentConfig{Provider: string(DefaultProvider), Model: DefaultModel}
	return &Config{
		OutputDir:      ".",
		LogFile:        logging.DefaultLogFile,
		Concurrency:    1,
		NameGeneration: true,
		Agents:         Agents{Planner: agent, Developer: agent, Deployer: agent},
		Migrations:     Migrations{Dir: migrations.DefaultDir, StateFile: migrations.DefaultStateFile},
	}
}

// Load reads the YAML file at path over the defaults, then applies ORCH_
// environment overrides. An empty path reads DefaultPath if it exists; a
// named file must exist.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// envKey maps ORCH_AGENTS__PLANNER__MODEL to agents.planner.model. Single
// underscores stay part of the key.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// Validate checks ranges and provider names.
func (c *Config) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.BackendTimeout < 0 {
		return fmt.Errorf("backend_timeout must not be negative")
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must not be negative")
	}
	for _, role := range []Role{RolePlanner, RoleDeveloper, RoleDeployer} {
		a := c.Agent(role)
		if _, err := types.ParseProvider(a.Provider); err != nil {
			return fmt.Errorf("agents.%s: %w", role, err)
		}
		if a.Model == "" {
			return fmt.Errorf("agents.%s: model is required", role)
		}
	}
	return nil
}

// Agent returns the binding of a role.
func (c *Config) Agent(role Role) AgentConfig {
	switch role {
	case RoleDeveloper:
		return c.Agents.Developer
	case RoleDeployer:
		return c.Agents.Deployer
	default:
		return c.Agents.Planner
	}
}

// ProviderConfig builds the backend config of a role. The credential is left
// empty when not configured so that it is looked up in the environment.
func (c *Config) ProviderConfig(role Role) (types.ProviderConfig, error) {
	a := c.Agent(role)
	provider, err := types.ParseProvider(a.Provider)
	if err != nil {
		return types.ProviderConfig{}, err
	}
	return types.ProviderConfig{
		Name:    provider,
		Model:   a.Model,
		APIKey:  a.APIKey,
		BaseURL: a.Endpoint,
		Timeout: c.BackendTimeout,
	}, nil
}
