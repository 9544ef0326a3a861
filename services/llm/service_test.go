package llm

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agentkit/agentctl/config"
	"github.com/agentkit/agentctl/models"
	"github.com/agentkit/agentctl/services"
	"github.com/agentkit/agentctl/services/audit"
	"github.com/agentkit/agentctl/services/providers"
)

type fakeProvider struct {
	providerName string
	vision       bool
	credsErr     error
	chatErr      error
	text         string
	lastRequest  *providers.ChatRequest
	calls        int
}

func (p *fakeProvider) Name() string { return p.providerName }

func (p *fakeProvider) ChatCompletion(ctx context.Context, req *providers.ChatRequest) (*providers.ChatResponse, error) {
	p.calls++
	p.lastRequest = req
	if p.chatErr != nil {
		return nil, p.chatErr
	}
	return &providers.ChatResponse{
		Model:    req.Model,
		Provider: p.providerName,
		Text:     p.text,
		Usage:    providers.Usage{TotalTokens: 10},
	}, nil
}

func (p *fakeProvider) CheckCredentials() error { return p.credsErr }

func (p *fakeProvider) DefaultModel(hasImage bool) string {
	if hasImage {
		return "fake-vision-model"
	}
	return "fake-model"
}

func (p *fakeProvider) SupportsVision() bool { return p.vision }

type recordingRecorder struct {
	invs []*models.Invocation
}

func (r *recordingRecorder) Record(ctx context.Context, inv *models.Invocation) {
	r.invs = append(r.invs, inv)
}

func newService(t *testing.T, provider *fakeProvider, rec audit.Recorder) *Service {
	t.Helper()
	registry := providers.NewRegistry()
	require.NoError(t, registry.Register(provider))
	require.NoError(t, registry.RegisterAlias("azure_openai", provider.providerName))
	if rec == nil {
		rec = audit.NewNopRecorder()
	}
	return NewService(registry, rec, zap.NewNop())
}

func TestQuery_Success(t *testing.T) {
	provider := &fakeProvider{providerName: "openai", text: "Hello from the model"}
	svc := newService(t, provider, nil)

	result, err := svc.Query(context.Background(), &QueryRequest{
		Provider: "openai",
		Prompt:   "Say hello",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello from the model", result.Text)
	assert.Equal(t, "openai", result.Provider)
	assert.Equal(t, "fake-model", result.Model)

	req := provider.lastRequest
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "user", req.Messages[0].Role)
	assert.Equal(t, "Say hello", req.Messages[0].Content)
	assert.InDelta(t, config.DefaultTemperature, req.Temperature, 0.001)
	assert.Equal(t, config.DefaultMaxTokens, req.MaxTokens)
}

func TestQuery_EmptyPrompt(t *testing.T) {
	provider := &fakeProvider{providerName: "openai"}
	svc := newService(t, provider, nil)

	_, err := svc.Query(context.Background(), &QueryRequest{Provider: "openai", Prompt: "   "})
	require.Error(t, err)
	assert.True(t, services.IsValidationError(err))
	assert.Zero(t, provider.calls)
}

func TestQuery_UnknownProvider(t *testing.T) {
	provider := &fakeProvider{providerName: "openai"}
	svc := newService(t, provider, nil)

	_, err := svc.Query(context.Background(), &QueryRequest{Provider: "mistral", Prompt: "hi"})
	require.Error(t, err)
	assert.True(t, services.IsValidationError(err))
	assert.Contains(t, err.Error(), "mistral")
	assert.Contains(t, err.Error(), "openai")
	assert.Zero(t, provider.calls)
}

func TestQuery_ProviderAlias(t *testing.T) {
	provider := &fakeProvider{providerName: "openai", text: "ok"}
	svc := newService(t, provider, nil)

	result, err := svc.Query(context.Background(), &QueryRequest{
		Provider: "azure_openai",
		Prompt:   "hi",
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Text)
}

func TestQuery_MissingCredential(t *testing.T) {
	provider := &fakeProvider{
		providerName: "anthropic",
		credsErr: providers.NewProviderError("anthropic", providers.CodeMissingCredential,
			"ANTHROPIC_API_KEY environment variable not set", 0, nil),
	}
	svc := newService(t, provider, nil)

	_, err := svc.Query(context.Background(), &QueryRequest{Provider: "anthropic", Prompt: "hi"})
	require.Error(t, err)
	assert.True(t, services.IsConfigurationError(err))
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")
	assert.Zero(t, provider.calls, "credential failures must not reach the network")
}

func TestQuery_TransportError(t *testing.T) {
	provider := &fakeProvider{
		providerName: "openai",
		chatErr: providers.NewProviderError("openai", providers.CodeBadStatus,
			"server error", 500, nil),
	}
	svc := newService(t, provider, nil)

	_, err := svc.Query(context.Background(), &QueryRequest{Provider: "openai", Prompt: "hi"})
	require.Error(t, err)
	assert.True(t, services.IsTransportError(err))
	assert.Equal(t, 1, provider.calls, "transport failures are terminal, no retries")
}

func TestQuery_ImageRejectedWithoutVision(t *testing.T) {
	provider := &fakeProvider{providerName: "deepseek", vision: false}
	svc := newService(t, provider, nil)

	_, err := svc.Query(context.Background(), &QueryRequest{
		Provider:  "deepseek",
		Prompt:    "describe",
		ImagePath: "photo.jpg",
	})
	require.Error(t, err)
	assert.True(t, services.IsValidationError(err))
	assert.Zero(t, provider.calls)
}

func TestQuery_ImageAttached(t *testing.T) {
	provider := &fakeProvider{providerName: "openai", vision: true, text: "a cat"}
	svc := newService(t, provider, nil)

	path := filepath.Join(t.TempDir(), "photo.png")
	require.NoError(t, os.WriteFile(path, []byte{0x89, 0x50, 0x4e, 0x47}, 0o644))

	result, err := svc.Query(context.Background(), &QueryRequest{
		Provider:  "openai",
		Prompt:    "describe this",
		ImagePath: path,
	})
	require.NoError(t, err)
	assert.Equal(t, "fake-vision-model", result.Model)

	msg := provider.lastRequest.Messages[0]
	require.NotNil(t, msg.Image)
	assert.Equal(t, "image/png", msg.Image.MediaType)
	assert.NotEmpty(t, msg.Image.Data)
}

func TestQuery_ImageMediaTypeByExtension(t *testing.T) {
	provider := &fakeProvider{providerName: "openai", vision: true}
	svc := newService(t, provider, nil)

	path := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xd8}, 0o644))

	_, err := svc.Query(context.Background(), &QueryRequest{
		Provider:  "openai",
		Prompt:    "describe",
		ImagePath: path,
	})
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", provider.lastRequest.Messages[0].Image.MediaType)
}

func TestQuery_MissingImageFile(t *testing.T) {
	provider := &fakeProvider{providerName: "openai", vision: true}
	svc := newService(t, provider, nil)

	_, err := svc.Query(context.Background(), &QueryRequest{
		Provider:  "openai",
		Prompt:    "describe",
		ImagePath: "/nonexistent/photo.jpg",
	})
	require.Error(t, err)
	assert.True(t, services.IsValidationError(err))
}

func TestQuery_HistoryPrepended(t *testing.T) {
	provider := &fakeProvider{providerName: "openai", text: "reply"}
	svc := newService(t, provider, nil)

	_, err := svc.Query(context.Background(), &QueryRequest{
		Provider: "openai",
		Prompt:   "and now?",
		History: []providers.Message{
			{Role: "user", Content: "first question"},
			{Role: "assistant", Content: "first answer"},
		},
	})
	require.NoError(t, err)

	msgs := provider.lastRequest.Messages
	require.Len(t, msgs, 3)
	assert.Equal(t, "first question", msgs[0].Content)
	assert.Equal(t, "first answer", msgs[1].Content)
	assert.Equal(t, "and now?", msgs[2].Content)
}

func TestQuery_RecordsInvocation(t *testing.T) {
	provider := &fakeProvider{providerName: "openai", text: "ok"}
	rec := &recordingRecorder{}
	svc := newService(t, provider, rec)

	_, err := svc.Query(context.Background(), &QueryRequest{Provider: "openai", Prompt: "hello"})
	require.NoError(t, err)

	require.Len(t, rec.invs, 1)
	inv := rec.invs[0]
	assert.Equal(t, "llm", inv.Tool)
	assert.Equal(t, "openai", inv.Provider)
	assert.Equal(t, models.StatusOK, inv.Status)
	assert.Equal(t, len("hello"), inv.PromptChars)
}

func TestQuery_RecordsFailure(t *testing.T) {
	provider := &fakeProvider{providerName: "openai"}
	rec := &recordingRecorder{}
	svc := newService(t, provider, rec)

	_, err := svc.Query(context.Background(), &QueryRequest{Provider: "nope", Prompt: "hello", Tool: "plan"})
	require.Error(t, err)

	require.Len(t, rec.invs, 1)
	assert.Equal(t, "plan", rec.invs[0].Tool)
	assert.Equal(t, models.StatusError, rec.invs[0].Status)
	assert.NotEmpty(t, rec.invs[0].ErrorMessage)
}
