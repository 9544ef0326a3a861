package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agentkit/agentctl/config"
	"github.com/agentkit/agentctl/models"
	"github.com/agentkit/agentctl/services"
	"github.com/agentkit/agentctl/services/audit"
	"github.com/agentkit/agentctl/services/providers"
	"go.uber.org/zap"
)

// Service dispatches prompts to LLM providers. Validation and credential
// checks run before any network call; transport failures are terminal.
type Service struct {
	registry *providers.Registry
	recorder audit.Recorder
	logger   *zap.Logger
}

// NewService creates a new dispatch service
func NewService(registry *providers.Registry, recorder audit.Recorder, logger *zap.Logger) *Service {
	return &Service{
		registry: registry,
		recorder: recorder,
		logger:   logger,
	}
}

// Query dispatches a single request to the selected provider and returns the
// completion text of the first choice.
func (s *Service) Query(ctx context.Context, req *QueryRequest) (*QueryResult, error) {
	start := time.Now()

	result, err := s.query(ctx, req)

	inv := &models.Invocation{
		Tool:      req.Tool,
		Provider:  req.Provider,
		Model:     req.Model,
		LatencyMs: int(time.Since(start).Milliseconds()),
	}
	if inv.Tool == "" {
		inv.Tool = "llm"
	}
	inv.PromptChars = len(req.Prompt)
	if err != nil {
		inv.Status = models.StatusError
		inv.ErrorMessage = err.Error()
	} else {
		inv.Status = models.StatusOK
		inv.Provider = result.Provider
		inv.Model = result.Model
	}
	s.recorder.Record(ctx, inv)

	return result, err
}

func (s *Service) query(ctx context.Context, req *QueryRequest) (*QueryResult, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, services.NewDomainError(services.ErrorTypeValidation, "prompt cannot be empty", nil)
	}

	provider, err := s.registry.Get(req.Provider)
	if err != nil {
		return nil, services.NewDomainError(services.ErrorTypeValidation,
			fmt.Sprintf("unknown provider %q (supported: %s)", req.Provider, strings.Join(s.registry.Names(), ", ")),
			err).WithDetail("provider", req.Provider)
	}

	if err := provider.CheckCredentials(); err != nil {
		var provErr *providers.ProviderError
		msg := "provider credential not configured"
		if errors.As(err, &provErr) {
			msg = provErr.Message
		}
		return nil, services.NewDomainError(services.ErrorTypeConfiguration, msg, err).
			WithDetail("provider", provider.Name())
	}

	var image *providers.ImageAttachment
	if req.ImagePath != "" {
		if !provider.SupportsVision() {
			return nil, services.NewDomainError(services.ErrorTypeValidation,
				fmt.Sprintf("provider %s does not support image input", provider.Name()), nil)
		}
		image, err = encodeImage(req.ImagePath)
		if err != nil {
			return nil, services.NewDomainError(services.ErrorTypeValidation,
				fmt.Sprintf("failed to read image %s", req.ImagePath), err)
		}
	}

	model := req.Model
	if model == "" {
		model = provider.DefaultModel(image != nil)
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = config.DefaultMaxTokens
	}
	temperature := req.Temperature
	if temperature <= 0 {
		temperature = config.DefaultTemperature
	}

	messages := make([]providers.Message, 0, len(req.History)+1)
	messages = append(messages, req.History...)
	messages = append(messages, providers.Message{Role: "user", Content: req.Prompt, Image: image})

	s.logger.Debug("dispatching to provider",
		zap.String("provider", provider.Name()),
		zap.String("model", model),
		zap.Int("messages", len(messages)),
		zap.Bool("image", image != nil))

	resp, err := provider.ChatCompletion(ctx, &providers.ChatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return nil, services.NewDomainError(services.ErrorTypeTransport,
			fmt.Sprintf("provider %s request failed", provider.Name()), err).
			WithDetail("provider", provider.Name()).
			WithDetail("model", model)
	}

	s.logger.Info("completion received",
		zap.String("provider", resp.Provider),
		zap.String("model", resp.Model),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("latency", resp.Latency))

	return &QueryResult{
		Text:     resp.Text,
		Provider: resp.Provider,
		Model:    model,
		Usage:    resp.Usage,
		Latency:  resp.Latency,
	}, nil
}

// Providers returns the registered provider names
func (s *Service) Providers() []string {
	return s.registry.Names()
}

// encodeImage reads a local file and base64-encodes it for transmission.
// Media type follows the file extension; anything that is not .png is sent as
// image/jpeg, matching what providers accept for photographic input.
func encodeImage(path string) (*providers.ImageAttachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	mediaType := "image/jpeg"
	if strings.EqualFold(filepath.Ext(path), ".png") {
		mediaType = "image/png"
	}
	return &providers.ImageAttachment{
		MediaType: mediaType,
		Data:      base64.StdEncoding.EncodeToString(data),
	}, nil
}
