package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/loayabdalslam/Orchestrator/pkg/logging"
	"github.com/loayabdalslam/Orchestrator/pkg/types"
)

// Target is one approved batch and where it goes. The project is written to
// BaseDir/ProjectName.
type Target struct {
	BaseDir     string
	ProjectName string
	Files       *types.CodeBatch
}

// Result lists what a deployment wrote.
type Result struct {
	Root    string
	Written []string
}

// DeploymentError reports the path whose preparation or write failed.
// Files written before it stay on disk.
type DeploymentError struct {
	Path string
	Err  error
}

func (e *DeploymentError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("deployment failed: %v", e.Err)
	}
	return fmt.Sprintf("deployment failed at %s: %v", e.Path, e.Err)
}

func (e *DeploymentError) Unwrap() error {
	return e.Err
}

// Deployer materialises approved batches on disk.
type Deployer struct {
	logger *logging.Logger
}

// NewDeployer creates a deployer.
func NewDeployer(logger *logging.Logger) *Deployer {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Deployer{logger: logger.Component("Deployer")}
}

// Deploy writes every file of the target in batch order, overwriting
// existing files. All paths are checked before anything is written. Writes
// are not transactional: the first failure stops the run and leaves earlier
// files in place.
func (d *Deployer) Deploy(ctx context.Context, t Target) (*Result, error) {
	root, usedDefault, err := ProjectRoot(t.BaseDir, t.ProjectName)
	if err != nil {
		return nil, &DeploymentError{Err: err}
	}
	if usedDefault {
		d.logger.Warning("Using default project name '%s'", DefaultProjectName)
	}

	paths := t.Files.Paths()
	resolved := make([]string, len(paths))
	for i, p := range paths {
		full, err := ResolvePath(root, p)
		if err != nil {
			return nil, &DeploymentError{Path: p, Err: err}
		}
		resolved[i] = full
	}

	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, &DeploymentError{Path: root, Err: err}
	}

	result := &Result{Root: root}
	for i, p := range paths {
		if err := ctx.Err(); err != nil {
			return result, &DeploymentError{Path: p, Err: err}
		}
		content, _ := t.Files.Get(p)
		if err := writeFile(resolved[i], content); err != nil {
			d.logger.Error("Failed to write %s: %v", p, err)
			return result, &DeploymentError{Path: p, Err: err}
		}
		result.Written = append(result.Written, p)
		d.logger.Info("Created file: %s", p)
	}

	d.logger.Success("Project deployed to %s", root)
	return result, nil
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("could not create directory %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("could not write file: %w", err)
	}
	return nil
}
