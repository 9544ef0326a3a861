package plan

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agentkit/agentctl/services"
	"github.com/agentkit/agentctl/services/audit"
	"github.com/agentkit/agentctl/services/llm"
	"github.com/agentkit/agentctl/services/providers"
)

type capturingProvider struct {
	providerName string
	lastRequest  *providers.ChatRequest
	response     string
}

func (p *capturingProvider) Name() string { return p.providerName }

func (p *capturingProvider) ChatCompletion(ctx context.Context, req *providers.ChatRequest) (*providers.ChatResponse, error) {
	p.lastRequest = req
	return &providers.ChatResponse{
		Model:    req.Model,
		Provider: p.providerName,
		Text:     p.response,
	}, nil
}

func (p *capturingProvider) CheckCredentials() error          { return nil }
func (p *capturingProvider) DefaultModel(hasImage bool) string { return "fake-model" }
func (p *capturingProvider) SupportsVision() bool              { return false }

func newPlanService(t *testing.T) (*Service, *capturingProvider) {
	t.Helper()

	provider := &capturingProvider{providerName: "openai", response: "1. Analyze\n2. Implement"}
	registry := providers.NewRegistry()
	require.NoError(t, registry.Register(provider))

	llmService := llm.NewService(registry, audit.NewNopRecorder(), zap.NewNop())
	return NewService(llmService, zap.NewNop()), provider
}

func TestPlan_WrapsPromptInPreamble(t *testing.T) {
	svc, provider := newPlanService(t)

	result, err := svc.Plan(context.Background(), &Request{Prompt: "Add a caching layer"})
	require.NoError(t, err)
	assert.Equal(t, "1. Analyze\n2. Implement", result.Text)

	require.NotNil(t, provider.lastRequest)
	assert.Equal(t, DefaultModel, provider.lastRequest.Model)
	require.Len(t, provider.lastRequest.Messages, 1)

	prompt := provider.lastRequest.Messages[0].Content
	assert.Contains(t, prompt, "expert AI development planner")
	assert.Contains(t, prompt, "TASK DESCRIPTION:\nAdd a caching layer")
	assert.NotContains(t, prompt, "RELEVANT FILE CONTENT")
}

func TestPlan_IncludesFileContent(t *testing.T) {
	svc, provider := newPlanService(t)

	path := filepath.Join(t.TempDir(), "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("existing design notes"), 0o644))

	_, err := svc.Plan(context.Background(), &Request{
		Prompt:   "Refactor the session store",
		FilePath: path,
	})
	require.NoError(t, err)

	prompt := provider.lastRequest.Messages[0].Content
	assert.Contains(t, prompt, "RELEVANT FILE CONTENT:\n```\nexisting design notes\n```")
	assert.Contains(t, prompt, "provide a detailed plan")
}

func TestPlan_MissingFile(t *testing.T) {
	svc, _ := newPlanService(t)

	_, err := svc.Plan(context.Background(), &Request{
		Prompt:   "whatever",
		FilePath: "/nonexistent/file.txt",
	})
	require.Error(t, err)
	assert.True(t, services.IsValidationError(err))
}

func TestPlan_EmptyPrompt(t *testing.T) {
	svc, _ := newPlanService(t)

	_, err := svc.Plan(context.Background(), &Request{Prompt: "  "})
	assert.True(t, errors.Is(err, services.ErrEmptyPrompt))
}

func TestPlan_RejectsNonReasoningProviders(t *testing.T) {
	svc, _ := newPlanService(t)

	for _, provider := range []string{"gemini", "deepseek", "azure_openai"} {
		_, err := svc.Plan(context.Background(), &Request{Prompt: "task", Provider: provider})
		require.Error(t, err, provider)
		assert.True(t, services.IsValidationError(err))
	}
}

func TestPlan_ExplicitModelWins(t *testing.T) {
	svc, provider := newPlanService(t)

	_, err := svc.Plan(context.Background(), &Request{Prompt: "task", Model: "gpt-4o"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", provider.lastRequest.Model)
}
