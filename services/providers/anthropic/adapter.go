package anthropic

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
	defaultBaseURL = "https://api.anthropic.com"
	defaultModel   = "claude-3-5-sonnet-20241022"
	apiVersion     = "2023-06-01"
)

// Adapter implements the Provider interface for Anthropic
type Adapter struct {
	config     providers.Config
	httpClient *http.Client
}

// NewAdapter creates a new Anthropic adapter
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
	return "anthropic"
}

// CheckCredentials verifies that an API key is configured
func (a *Adapter) CheckCredentials() error {
	if a.config.APIKey == "" {
		return providers.NewProviderError(a.Name(), providers.CodeMissingCredential,
			"ANTHROPIC_API_KEY environment variable not set", 0, nil)
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

// ChatCompletion performs a messages request
func (a *Adapter) ChatCompletion(ctx context.Context, req *providers.ChatRequest) (*providers.ChatResponse, error) {
	start := time.Now()

	body, err := json.Marshal(buildRequest(req))
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), providers.CodeBadPayload,
			"failed to marshal request", 0, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.config.BaseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), providers.CodeRequestFailed,
			"failed to create request", 0, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-Key", a.config.APIKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

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

	var parsed messagesResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, providers.NewProviderError(a.Name(), providers.CodeBadPayload,
			"failed to unmarshal response", httpResp.StatusCode, err)
	}
	if len(parsed.Content) == 0 {
		return nil, providers.NewProviderError(a.Name(), providers.CodeEmptyCompletion,
			"response contained no content blocks", httpResp.StatusCode, nil)
	}

	return &providers.ChatResponse{
		ID:           parsed.ID,
		Model:        parsed.Model,
		Provider:     a.Name(),
		Text:         parsed.Content[0].Text,
		FinishReason: parsed.StopReason,
		Usage: providers.Usage{
			PromptTokens:     parsed.Usage.InputTokens,
			CompletionTokens: parsed.Usage.OutputTokens,
			TotalTokens:      parsed.Usage.InputTokens + parsed.Usage.OutputTokens,
		},
		Latency: time.Since(start),
	}, nil
}

// buildRequest converts the unified request to the Anthropic messages format.
// Images become base64 source blocks alongside the text block.
func buildRequest(req *providers.ChatRequest) *messagesRequest {
	out := &messagesRequest{
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Messages:    make([]message, len(req.Messages)),
	}
	for i, msg := range req.Messages {
		blocks := []contentBlock{{Type: "text", Text: msg.Content}}
		if msg.Image != nil {
			blocks = append(blocks, contentBlock{
				Type: "image",
				Source: &imageSource{
					Type:      "base64",
					MediaType: msg.Image.MediaType,
					Data:      msg.Image.Data,
				},
			})
		}
		out.Messages[i] = message{Role: msg.Role, Content: blocks}
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

// Anthropic wire types

type messagesRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type messagesResponse struct {
	ID         string         `json:"id"`
	Model      string         `json:"model"`
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
