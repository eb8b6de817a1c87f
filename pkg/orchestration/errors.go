package orchestration

import "fmt"

// MissingProjectNameError is returned when planning ends without a project
// name. No code generation call has been made at that point.
type MissingProjectNameError struct {
	Request string
}

func (e *MissingProjectNameError) Error() string {
	return fmt.Sprintf("no project name could be determined for request %q", e.Request)
}

// TaskError wraps the failure of one code generation task.
type TaskError struct {
	Index int
	Task  string
	Err   error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %d (%s) failed: %v", e.Index+1, e.Task, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}
