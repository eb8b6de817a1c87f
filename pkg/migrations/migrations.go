package migrations

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/loayabdalslam/Orchestrator/pkg/logging"
)

const (
	DefaultDir       = "migrations"
	DefaultStateFile = ".orchestrator/migrations.yaml"
)

// Executor runs one migration file.
type Executor interface {
	Execute(ctx context.Context, path string) error
}

// CommandExecutor runs migration files through a shell.
type CommandExecutor struct {
	// Shell defaults to "sh".
	Shell string
	// Dir is the working directory of the command. Empty means the current one.
	Dir string
}

func (e *CommandExecutor) Execute(ctx context.Context, path string) error {
	shell := e.Shell
	if shell == "" {
		shell = "sh"
	}
	cmd := exec.CommandContext(ctx, shell, path)
	cmd.Dir = e.Dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return fmt.Errorf("exit code %d: %w\n%s", exitCode, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// State is the persisted list of applied migration ids.
type State struct {
	Applied []string `yaml:"applied"`
}

func (s *State) has(id string) bool {
	for _, a := range s.Applied {
		if a == id {
			return true
		}
	}
	return false
}

// Runner applies the files of a migrations directory once each.
type Runner struct {
	dir       string
	stateFile string
	executor  Executor
	logger    *logging.Logger
}

// NewRunner creates a runner. Empty paths fall back to the defaults and a nil
// executor runs files with sh.
func NewRunner(dir, stateFile string, executor Executor, logger *logging.Logger) *Runner {
	if dir == "" {
		dir = DefaultDir
	}
	if stateFile == "" {
		stateFile = DefaultStateFile
	}
	if executor == nil {
		executor = &CommandExecutor{}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Runner{dir: dir, stateFile: stateFile, executor: executor, logger: logger.Component("Migrations")}
}

// LoadState reads the state file. A missing file is an empty state.
func (r *Runner) LoadState() (*State, error) {
	data, err := os.ReadFile(r.stateFile)
	if errors.Is(err, os.ErrNotExist) {
		return &State{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read migration state: %w", err)
	}
	var state State
	if err := yaml.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse migration state %s: %w", r.stateFile, err)
	}
	return &state, nil
}

func (r *Runner) saveState(state *State) error {
	if err := os.MkdirAll(filepath.Dir(r.stateFile), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	data, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode migration state: %w", err)
	}
	return os.WriteFile(r.stateFile, data, 0644)
}

// Pending lists migration ids not yet applied, in lexical order. A missing
// directory has no migrations.
func (r *Runner) Pending() ([]string, error) {
	state, err := r.LoadState()
	if err != nil {
		return nil, err
	}
	return r.pending(state)
}

func (r *Runner) pending(state *State) ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}

	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if !state.has(name) {
			ids = append(ids, name)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// ApplyPending runs every pending migration in lexical order. Each id is
// recorded right after it succeeds; the first failure stops the run and is
// returned. Applying twice runs nothing the second time.
func (r *Runner) ApplyPending(ctx context.Context) ([]string, error) {
	state, err := r.LoadState()
	if err != nil {
		return nil, err
	}
	ids, err := r.pending(state)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		r.logger.Info("No pending migrations")
		return nil, nil
	}

	var applied []string
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return applied, err
		}
		if err := r.executor.Execute(ctx, filepath.Join(r.dir, id)); err != nil {
			r.logger.Error("Migration failed: %s - %v", id, err)
			return applied, fmt.Errorf("migration %s failed: %w", id, err)
		}
		state.Applied = append(state.Applied, id)
		if err := r.saveState(state); err != nil {
			return applied, fmt.Errorf("migration %s applied but not recorded: %w", id, err)
		}
		applied = append(applied, id)
		r.logger.Success("Applied migration: %s", id)
	}
	return applied, nil
}
