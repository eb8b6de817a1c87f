package prompts

import (
	"fmt"
	"strings"
)

// Prompt is one user prompt with its system prompt.
type Prompt struct {
	User   string
	System string
}

const (
	nameSystemMessage = "You are a technical branding expert. Generate project names."
	planSystemMessage = "You are a senior project manager. Create comprehensive project plans."
	codeSystemMessage = "You are a senior developer. Write clean, maintainable code."
)

// ProjectName asks for a short project name for the request.
func ProjectName(request string) Prompt {
	return Prompt{
		User: fmt.Sprintf(`Generate a technical project name based on: %s
Rules:
1. Use 2-4 words
2. Include tech-related terms
3. Make it memorable
4. Use camelCase formatting
5. Avoid special characters
Reply with the name only.`, request),
		System: nameSystemMessage,
	}
}

// ProjectPlan asks for the project structure in the PROJECT_NAME / TASKS /
// FILE line format. features are listed when present.
func ProjectPlan(request, projectName string, features []string) Prompt {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Create project structure for: %s\n", request)
	if projectName != "" {
		fmt.Fprintf(&sb, "Project name: %s\n", projectName)
	}
	sb.WriteString("Include:\n")
	sb.WriteString("- Backend structure\n")
	sb.WriteString("- Frontend components\n")
	sb.WriteString("- Database setup\n")
	sb.WriteString("- Deployment config\n")
	if len(features) > 0 {
		sb.WriteString("Required features:\n")
		for _, f := range features {
			fmt.Fprintf(&sb, "- %s\n", f)
		}
	}
	name := projectName
	if name == "" {
		name = "<project name>"
	}
	sb.WriteString("Format your response with:\n")
	fmt.Fprintf(&sb, "PROJECT_NAME: %s\n", name)
	sb.WriteString("TASKS: comma,separated,tasks\n")
	sb.WriteString("FILE: path/to/file\n")
	sb.WriteString("```code\ncontent\n```")

	return Prompt{User: sb.String(), System: planSystemMessage}
}

// TaskCode asks for the files implementing one task. planContext is the
// JSON encoded project plan.
func TaskCode(task, planContext string) Prompt {
	return Prompt{
		User: fmt.Sprintf(`Write production code for: %s
Context: %s
Include: Proper error handling, comments, and tests.
Format: FILE: path/to/file
`+"```code\ncontent\n```", task, planContext),
		System: codeSystemMessage,
	}
}
