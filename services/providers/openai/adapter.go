package openai

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
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o"
)

// Adapter implements the Provider interface for OpenAI
type Adapter struct {
	config     providers.Config
	httpClient *http.Client
}

// NewAdapter creates a new OpenAI adapter
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
	return "openai"
}

// CheckCredentials verifies that an API key is configured
func (a *Adapter) CheckCredentials() error {
	if a.config.APIKey == "" {
		return providers.NewProviderError(a.Name(), providers.CodeMissingCredential,
			"OPENAI_API_KEY environment variable not set", 0, nil)
	}
	return nil
}

// DefaultModel returns the model used when none is requested
func (a *Adapter) DefaultModel(hasImage bool) string {
	return defaultModel
}

// SupportsVision reports image attachment support
func (a *Adapter) SupportsVision() bool {
	return true
}

// ChatCompletion performs a chat completion request
func (a *Adapter) ChatCompletion(ctx context.Context, req *providers.ChatRequest) (*providers.ChatResponse, error) {
	start := time.Now()

	body, err := json.Marshal(buildRequest(req))
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
		return nil, a.errorFromResponse(httpResp.StatusCode, respBody)
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

// buildRequest converts the unified request to the OpenAI wire format.
// Messages with an image become multi-part content with a data URI image_url.
func buildRequest(req *providers.ChatRequest) *chatRequest {
	out := &chatRequest{
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Messages:    make([]chatMessage, len(req.Messages)),
	}
	for i, msg := range req.Messages {
		if msg.Image == nil {
			out.Messages[i] = chatMessage{Role: msg.Role, Content: msg.Content}
			continue
		}
		parts := []contentPart{
			{Type: "text", Text: msg.Content},
			{Type: "image_url", ImageURL: &imageURL{URL: msg.Image.DataURI()}},
		}
		out.Messages[i] = chatMessage{Role: msg.Role, Content: parts}
	}
	return out
}

func (a *Adapter) errorFromResponse(statusCode int, body []byte) error {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Message == "" {
		return providers.NewProviderError(a.Name(), providers.CodeBadStatus,
			string(body), statusCode, nil)
	}
	code := errResp.Error.Type
	if code == "" {
		code = providers.CodeBadStatus
	}
	return providers.NewProviderError(a.Name(), code, errResp.Error.Message,
		statusCode, errors.New(errResp.Error.Message))
}

// OpenAI wire types

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

// chatMessage content is either a plain string or a []contentPart
type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []choice `json:"choices"`
	Usage   usage    `json:"usage"`
}

type choice struct {
	Index        int             `json:"index"`
	Message      responseMessage `json:"message"`
	FinishReason string          `json:"finish_reason"`
}

type responseMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}
