package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/loayabdalslam/Orchestrator/pkg/interfaces/types"
)

type stubModels struct {
	resp *genai.GenerateContentResponse
	err  error

	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (s *stubModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	s.model = model
	s.contents = contents
	s.config = config
	return s.resp, s.err
}

func textResponse(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Role: genai.RoleModel, Parts: parts}}},
	}
}

func testConfig() types.ProviderConfig {
	return types.ProviderConfig{Name: types.ProviderGemini, Model: "gemini-2.0-flash-exp", APIKey: "k"}
}

func TestGenerateResponseStripsBold(t *testing.T) {
	stub := &stubModels{resp: textResponse(
		&genai.Part{Text: "thinking...", Thought: true},
		&genai.Part{Text: "**PROJECT_NAME:** Todo_App\n"},
		&genai.Part{Text: "TASKS: a, b"},
	)}
	p := newProvider(testConfig(), stub)

	out, err := p.GenerateResponse(context.Background(), "build a todo app", "you plan projects")
	require.NoError(t, err)
	assert.Equal(t, "PROJECT_NAME: Todo_App\nTASKS: a, b", out)

	assert.Equal(t, "gemini-2.0-flash-exp", stub.model)
	require.Len(t, stub.contents, 1)
	require.Len(t, stub.contents[0].Parts, 1)
	assert.Equal(t, "build a todo app", stub.contents[0].Parts[0].Text)
	require.NotNil(t, stub.config)
	require.NotNil(t, stub.config.SystemInstruction)
	assert.Equal(t, "you plan projects", stub.config.SystemInstruction.Parts[0].Text)
}

func TestGenerateResponseNoSystemPrompt(t *testing.T) {
	stub := &stubModels{resp: textResponse(&genai.Part{Text: "ok"})}
	p := newProvider(testConfig(), stub)

	_, err := p.GenerateResponse(context.Background(), "hi", "")
	require.NoError(t, err)
	assert.Nil(t, stub.config)
}

func TestGenerateResponseEmptyCandidates(t *testing.T) {
	p := newProvider(testConfig(), &stubModels{resp: &genai.GenerateContentResponse{}})

	out, err := p.GenerateResponse(context.Background(), "hi", "")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestGenerateResponseError(t *testing.T) {
	p := newProvider(testConfig(), &stubModels{err: errors.New("permission denied")})

	_, err := p.GenerateResponse(context.Background(), "hi", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestValidate(t *testing.T) {
	f := &Factory{}
	assert.Error(t, f.Validate(types.ProviderConfig{Model: "m"}))
	assert.Error(t, f.Validate(types.ProviderConfig{APIKey: "k"}))
	assert.NoError(t, f.Validate(testConfig()))
}
