package parser

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCode(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     map[string]string
		order    []string
	}{
		{
			name:     "two fenced files",
			response: "FILE: a.txt\n```\nhello\n```\nFILE: b.txt\n```\nworld\n```",
			want:     map[string]string{"a.txt": "hello", "b.txt": "world"},
			order:    []string{"a.txt", "b.txt"},
		},
		{
			name:     "narration after closing fence is dropped",
			response: "Here you go:\nFILE: main.go\n```go\npackage main\n\nfunc main() {}\n```\nThis file starts the app.\n",
			want:     map[string]string{"main.go": "package main\n\nfunc main() {}"},
			order:    []string{"main.go"},
		},
		{
			name:     "repeated header starts over",
			response: "FILE: a.txt\n```\nfirst\n```\nFILE: a.txt\n```\nsecond\n```",
			want:     map[string]string{"a.txt": "second"},
			order:    []string{"a.txt"},
		},
		{
			name:     "empty block is dropped",
			response: "FILE: empty.txt\n```\n\n```\nFILE: b.txt\n```\nx\n```",
			want:     map[string]string{"b.txt": "x"},
			order:    []string{"b.txt"},
		},
		{
			name:     "indented directive and fence with tag",
			response: "  FILE:  src/app.py  \n  ```python\nprint('hi')\n  ```",
			want:     map[string]string{"src/app.py": "print('hi')"},
			order:    []string{"src/app.py"},
		},
		{
			name:     "crlf input",
			response: "FILE: a.txt\r\n```\r\nline1\r\nline2\r\n```\r\n",
			want:     map[string]string{"a.txt": "line1\nline2"},
			order:    []string{"a.txt"},
		},
		{
			name:     "plan directives are plain content in code mode",
			response: "FILE: notes.md\n```\nPROJECT_NAME: ignored\nTASKS: x\n```",
			want:     map[string]string{"notes.md": "PROJECT_NAME: ignored\nTASKS: x"},
			order:    []string{"notes.md"},
		},
		{
			name:     "no files",
			response: "I cannot help with that.",
			want:     map[string]string{},
		},
		{
			name:     "empty path is ignored",
			response: "FILE:\n```\norphan\n```",
			want:     map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch := ParseCode(tt.response)
			assert.Equal(t, tt.want, batch.Map())
			if tt.order != nil {
				assert.Equal(t, tt.order, batch.Paths())
			}
		})
	}
}

func TestParsePlan(t *testing.T) {
	plan := ParsePlan("PROJECT_NAME: Foo\nTASKS: a, b , c\nFILE: x\n```\n1\n```")

	assert.Equal(t, "Foo", plan.Name)
	assert.Equal(t, []string{"a", "b", "c"}, plan.Tasks)
	assert.Equal(t, map[string]string{"x": "1"}, plan.FileSeed.Map())
}

func TestParsePlanKeepsAccumulatingAcrossFences(t *testing.T) {
	response := strings.Join([]string{
		"Here is the plan.",
		"**PROJECT_NAME:** ignored prefix",
		"PROJECT_NAME: Todo-App Backend",
		"TASKS: api, , db,",
		"FILE: README.md",
		"```markdown",
		"# Todo",
		"```",
		"More notes",
		"",
		"FILE: docker-compose.yml",
		"```yaml",
		"services: {}",
		"```",
	}, "\n")

	plan := ParsePlan(response)
	assert.Equal(t, "Todo_App_Backend", plan.Name)
	assert.Equal(t, []string{"api", "db"}, plan.Tasks)
	assert.Equal(t, []string{"README.md", "docker-compose.yml"}, plan.FileSeed.Paths())
	readme, _ := plan.FileSeed.Get("README.md")
	assert.Equal(t, "# Todo\nMore notes", readme)
}

func TestParsePlanMissingParts(t *testing.T) {
	plan := ParsePlan("nothing useful here")
	assert.Empty(t, plan.Name)
	assert.Empty(t, plan.Tasks)
	assert.Equal(t, 0, plan.FileSeed.Len())

	plan = ParsePlan("PROJECT_NAME:   \nTASKS:")
	assert.Empty(t, plan.Name)
	assert.Empty(t, plan.Tasks)
}

func TestSanitizeProjectName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"TaskFlowAPI", "TaskFlowAPI"},
		{"Name: My Cool-App!!", "My_Cool_App!!"},
		{"Project name: Smart Ledger\nBecause it tracks money", "Smart_Ledger"},
		{"  -cloud-sync- ", "cloud_sync"},
		{"a: b: final-answer", "final_answer"},
		{"api/v2 gateway", "api_v2_gateway"},
		{"", ""},
		{"   \n  ", ""},
		{"Title:", ""},
		{"..", ""},
		{"Name: .", ""},
		{"../../etc", "etc"},
		{".hidden-app.", "hidden_app"},
		{"v1.2 tool", "v1.2_tool"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeProjectName(tt.raw))
		})
	}
}

func TestParsePlanDropsDotNames(t *testing.T) {
	assert.Empty(t, ParsePlan("PROJECT_NAME: ..\nTASKS: a").Name)
	assert.Empty(t, ParsePlan("PROJECT_NAME: .\nTASKS: a").Name)
}

func TestSanitizeProjectNameIsBounded(t *testing.T) {
	got := SanitizeProjectName("An Extremely Long Project Name That Goes On And On")
	assert.LessOrEqual(t, utf8.RuneCountInString(got), MaxProjectNameLength)
	assert.Equal(t, "An_Extremely_Long_Project_Name", got)
	assert.NotContains(t, got, " ")
	assert.NotContains(t, got, "-")
}

func TestFallbackProjectName(t *testing.T) {
	now := time.Unix(1700000123, 0)

	tests := []struct {
		request string
		want    string
	}{
		{"Build a Todo App", "Project_build_a_todo_app_000123"},
		{"Create a REST API for books with auth", "Project_create_a_rest_api_fo_000123"},
		{"Café Über Menü", "Project_cafe_uber_menu_000123"},
		{"", "Project_project_000123"},
		{"   ", "Project_project_000123"},
		{"!!!", "Project_project_000123"},
	}
	for _, tt := range tests {
		t.Run(tt.request, func(t *testing.T) {
			got := FallbackProjectName(tt.request, now)
			require.NotEmpty(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}
