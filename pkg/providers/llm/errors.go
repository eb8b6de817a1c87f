package llm

import (
	"errors"
	"fmt"

	"github.com/loayabdalslam/Orchestrator/pkg/interfaces/types"
)

// ErrEmptyResponse is wrapped by BackendError when a backend returns blank text.
var ErrEmptyResponse = errors.New("empty response")

// BackendError reports a failed or empty backend call.
type BackendError struct {
	Provider types.Provider
	Model    string
	Err      error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s backend error (model %s): %v", e.Provider, e.Model, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
