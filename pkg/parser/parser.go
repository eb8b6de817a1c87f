package parser

import (
	"regexp"
	"strings"

	"github.com/loayabdalslam/Orchestrator/pkg/types"
)

const (
	projectNamePrefix = "PROJECT_NAME:"
	tasksPrefix       = "TASKS:"
	filePrefix        = "FILE:"
)

// fenceRegex matches a fenced-code delimiter, e.g. ``` or ```go.
var fenceRegex = regexp.MustCompile("^```[^`]*$")

type mode int

const (
	planMode mode = iota
	codeMode
)

func isFence(trimmed string) bool {
	return fenceRegex.MatchString(trimmed)
}

// state is the single-pass parser state. cursor is the file currently
// receiving lines; inBlock is set once a code-mode fence has opened for it.
type state struct {
	mode    mode
	cursor  string
	inBlock bool

	name  string
	tasks []string
	order []string
	files map[string][]string
}

func newState(m mode) *state {
	return &state{mode: m, files: make(map[string][]string)}
}

func (s *state) openFile(path string) {
	s.cursor = path
	s.inBlock = false
	if path == "" {
		return
	}
	if _, ok := s.files[path]; !ok {
		s.order = append(s.order, path)
	}
	// A repeated FILE: header starts over.
	s.files[path] = []string{}
}

func (s *state) feed(line string) {
	trimmed := strings.TrimSpace(line)

	switch {
	case s.mode == planMode && strings.HasPrefix(trimmed, projectNamePrefix):
		if name := SanitizeProjectName(strings.TrimPrefix(trimmed, projectNamePrefix)); name != "" {
			s.name = name
		}
	case s.mode == planMode && strings.HasPrefix(trimmed, tasksPrefix):
		s.tasks = splitTasks(strings.TrimPrefix(trimmed, tasksPrefix))
	case strings.HasPrefix(trimmed, filePrefix):
		s.openFile(strings.TrimSpace(strings.TrimPrefix(trimmed, filePrefix)))
	case isFence(trimmed):
		if s.mode == codeMode && s.cursor != "" {
			if s.inBlock {
				s.cursor = ""
				s.inBlock = false
			} else {
				s.inBlock = true
			}
		}
	case s.cursor != "":
		s.files[s.cursor] = append(s.files[s.cursor], line)
	}
}

func (s *state) batch() *types.CodeBatch {
	batch := types.NewCodeBatch()
	for _, path := range s.order {
		batch.Set(path, strings.TrimSpace(strings.Join(s.files[path], "\n")))
	}
	return batch
}

func splitTasks(list string) []string {
	var tasks []string
	for _, t := range strings.Split(list, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tasks = append(tasks, t)
		}
	}
	return tasks
}

func run(response string, m mode) *state {
	s := newState(m)
	for _, line := range strings.Split(strings.ReplaceAll(response, "\r\n", "\n"), "\n") {
		s.feed(line)
	}
	return s
}

// ParsePlan extracts the project name, task list and seed files from a
// planning response. It never fails; missing parts are left empty.
func ParsePlan(response string) *types.ProjectPlan {
	s := run(response, planMode)
	return &types.ProjectPlan{
		Name:     s.name,
		Tasks:    s.tasks,
		FileSeed: s.batch(),
	}
}

// ParseCode extracts the files of a code generation response. Text after a
// closing fence is not part of the file.
func ParseCode(response string) *types.CodeBatch {
	return run(response, codeMode).batch()
}
