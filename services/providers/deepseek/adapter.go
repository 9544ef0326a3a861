package deepseek

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/agentkit/agentctl/services/providers"
)

const (
	defaultBaseURL = "https://api.deepseek.com/v1"
	defaultModel   = "deepseek-chat"
)

// Adapter implements the Provider interface for DeepSeek. The API is
// OpenAI-shaped but text-only: image attachments are rejected upstream by the
// dispatcher because SupportsVision is false.
type Adapter struct {
	config     providers.Config
	httpClient *http.Client
}

// NewAdapter creates a new DeepSeek adapter
func NewAdapter(config providers.Config) *Adapter {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	return &Adapter{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

// Name returns the provider name
func (a *Adapter) Name() string {
	return "deepseek"
}

// CheckCredentials verifies that an API key is configured
func (a *Adapter) CheckCredentials() error {
	if a.config.APIKey == "" {
		return providers.NewProviderError(a.Name(), providers.CodeMissingCredential,
			"DEEPSEEK_API_KEY environment variable not set", 0, nil)
	}
	return nil
}

// DefaultModel returns the model used when none is requested
func (a *Adapter) DefaultModel(hasImage bool) string {
	return defaultModel
}

// SupportsVision reports image attachment support
func (a *Adapter) SupportsVision() bool {
	return false
}

// ChatCompletion performs a chat completion request
func (a *Adapter) ChatCompletion(ctx context.Context, req *providers.ChatRequest) (*providers.ChatResponse, error) {
	start := time.Now()

	wire := chatRequest{
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Messages:    make([]chatMessage, len(req.Messages)),
	}
	for i, msg := range req.Messages {
		wire.Messages[i] = chatMessage{Role: msg.Role, Content: msg.Content}
	}

	body, err := json.Marshal(wire)
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), providers.CodeBadPayload,
			"failed to marshal request", 0, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.config.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), providers.CodeRequestFailed,
			"failed to create request", 0, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.config.APIKey)

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), providers.CodeRequestFailed,
			"HTTP request failed", 0, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), providers.CodeRequestFailed,
			"failed to read response", httpResp.StatusCode, err)
	}

	if httpResp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Message != "" {
			return nil, providers.NewProviderError(a.Name(), providers.CodeBadStatus,
				errResp.Error.Message, httpResp.StatusCode, errors.New(errResp.Error.Message))
		}
		return nil, providers.NewProviderError(a.Name(), providers.CodeBadStatus,
			string(respBody), httpResp.StatusCode, nil)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, providers.NewProviderError(a.Name(), providers.CodeBadPayload,
			"failed to unmarshal response", httpResp.StatusCode, err)
	}
	if len(parsed.Choices) == 0 {
		return nil, providers.NewProviderError(a.Name(), providers.CodeEmptyCompletion,
			"response contained no choices", httpResp.StatusCode, nil)
	}

	return &providers.ChatResponse{
		ID:           parsed.ID,
		Model:        parsed.Model,
		Provider:     a.Name(),
		Text:         parsed.Choices[0].Message.Content,
		FinishReason: parsed.Choices[0].FinishReason,
		Usage: providers.Usage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
			TotalTokens:      parsed.Usage.TotalTokens,
		},
		Latency: time.Since(start),
	}, nil
}

// DeepSeek wire types

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
