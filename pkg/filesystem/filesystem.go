package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultProjectName is used when a deployment carries no project name.
const DefaultProjectName = "new_project"

// ProjectRoot returns the absolute, cleaned directory a project is deployed
// to. An empty name falls back to DefaultProjectName and usedDefault is set.
// Names that do not resolve to a directory strictly inside baseDir are
// rejected.
func ProjectRoot(baseDir, projectName string) (root string, usedDefault bool, err error) {
	name := strings.TrimSpace(projectName)
	if name == "" {
		name = DefaultProjectName
		usedDefault = true
	}
	base, err := filepath.Abs(filepath.Clean(baseDir))
	if err != nil {
		return "", usedDefault, fmt.Errorf("failed to get absolute path: %w", err)
	}
	root = filepath.Join(base, name)
	rel, err := filepath.Rel(base, root)
	if err != nil {
		return "", usedDefault, fmt.Errorf("failed to determine relative path: %w", err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", usedDefault, fmt.Errorf("security violation: project name %q does not name a directory inside %s", projectName, base)
	}
	return root, usedDefault, nil
}

// ResolvePath joins a batch path onto root. Absolute paths are taken as
// relative to root. Paths that clean to root itself or leave it are rejected.
func ResolvePath(root, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("empty file path provided")
	}

	p := filepath.FromSlash(path)
	if filepath.IsAbs(p) || filepath.VolumeName(p) != "" {
		p = strings.TrimPrefix(p, filepath.VolumeName(p))
		p = strings.TrimLeft(p, `/\`)
	}

	full := filepath.Join(root, p)
	rel, err := filepath.Rel(root, full)
	if err != nil {
		return "", fmt.Errorf("failed to determine relative path: %w", err)
	}
	if rel == "." {
		return "", fmt.Errorf("path %q resolves to the project root", path)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("security violation: path %q escapes %s", path, root)
	}
	return full, nil
}

// Workspace reads current file content under a project root.
type Workspace struct {
	Root string
}

// Read returns the content of path under the root, or "" if it does not
// exist yet.
func (w Workspace) Read(path string) (string, error) {
	full, err := ResolvePath(w.Root, path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("could not read file %s: %w", path, err)
	}
	return string(data), nil
}
