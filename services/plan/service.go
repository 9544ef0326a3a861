package plan

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/agentkit/agentctl/services"
	"github.com/agentkit/agentctl/services/llm"
)

// DefaultModel is the reasoning model used for planning when none is given
const DefaultModel = "o1"

const promptPreamble = `You are an expert AI development planner helping with a programming task.
Your role is to analyze requirements, break down complex tasks, and provide
detailed guidance. Focus on:

1. Thorough analysis of the problem
2. Breaking down tasks into manageable steps
3. Identifying potential challenges and solutions
4. Suggesting specific implementation approaches
5. Providing concrete code structure recommendations`

// Request describes a planning run. FilePath is read from the local
// filesystem by the CLI; InlineContext carries file content passed directly,
// as the HTTP gateway does. When both are set the inline content wins.
type Request struct {
	Prompt        string
	Provider      string
	Model         string
	FilePath      string
	InlineContext string
}

// Service turns a task description into a detailed implementation plan by
// wrapping it in a planning prompt and dispatching it to a reasoning model.
// Only providers with models strong enough for planning are accepted.
type Service struct {
	llm    *llm.Service
	logger *zap.Logger
}

// NewService creates a new planning service
func NewService(llmService *llm.Service, logger *zap.Logger) *Service {
	return &Service{llm: llmService, logger: logger}
}

var allowedProviders = map[string]bool{
	"openai":    true,
	"anthropic": true,
}

// Plan builds the planning prompt and dispatches it
func (s *Service) Plan(ctx context.Context, req *Request) (*llm.QueryResult, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, services.ErrEmptyPrompt
	}

	provider := req.Provider
	if provider == "" {
		provider = "openai"
	}
	if !allowedProviders[provider] {
		return nil, services.WrapValidation(
			fmt.Sprintf("provider %q cannot be used for planning, supported: openai, anthropic", provider), nil)
	}

	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	fileContent := req.InlineContext
	if fileContent == "" && req.FilePath != "" {
		data, err := os.ReadFile(req.FilePath)
		if err != nil {
			return nil, services.WrapValidation(
				fmt.Sprintf("failed to read context file %s", req.FilePath), err)
		}
		fileContent = string(data)
	}

	prompt := BuildPrompt(req.Prompt, fileContent)

	s.logger.Debug("planning",
		zap.String("provider", provider),
		zap.String("model", model),
		zap.Int("prompt_chars", len(prompt)))

	return s.llm.Query(ctx, &llm.QueryRequest{
		Provider: provider,
		Prompt:   prompt,
		Model:    model,
		Tool:     "plan",
	})
}

// BuildPrompt wraps a task description in the planning preamble, appending
// file content as a fenced block when present.
func BuildPrompt(task, fileContent string) string {
	var b strings.Builder
	b.WriteString(promptPreamble)
	b.WriteString("\n\nTASK DESCRIPTION:\n")
	b.WriteString(task)
	b.WriteString("\n")

	if fileContent != "" {
		b.WriteString("\nRELEVANT FILE CONTENT:\n```\n")
		b.WriteString(fileContent)
		b.WriteString("\n```\n\nBased on the above file content and task description, provide a detailed plan.\n")
	}

	return b.String()
}
