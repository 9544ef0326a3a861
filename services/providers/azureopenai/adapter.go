package azureopenai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/agentkit/agentctl/services/providers"
)

const apiVersion = "2023-05-15"

// Config holds the Azure OpenAI deployment configuration. Unlike the other
// adapters, Azure addresses a named deployment under a tenant endpoint rather
// than a model.
type Config struct {
	APIKey     string
	Endpoint   string
	Deployment string
	Timeout    time.Duration
}

// Adapter implements the Provider interface for Azure OpenAI
type Adapter struct {
	config     Config
	httpClient *http.Client
}

// NewAdapter creates a new Azure OpenAI adapter
func NewAdapter(config Config) *Adapter {
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	if config.Deployment == "" {
		config.Deployment = "gpt-4o-ms"
	}
	config.Endpoint = strings.TrimRight(config.Endpoint, "/")
	return &Adapter{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

// Name returns the provider name
func (a *Adapter) Name() string {
	return "azure"
}

// CheckCredentials verifies that both the API key and the endpoint are set
func (a *Adapter) CheckCredentials() error {
	var missing []string
	if a.config.APIKey == "" {
		missing = append(missing, "AZURE_OPENAI_API_KEY")
	}
	if a.config.Endpoint == "" {
		missing = append(missing, "AZURE_OPENAI_ENDPOINT")
	}
	if len(missing) > 0 {
		return providers.NewProviderError(a.Name(), providers.CodeMissingCredential,
			strings.Join(missing, ", ")+" environment variable not set", 0, nil)
	}
	return nil
}

// DefaultModel returns the configured deployment name. Azure ignores a model
// in the request body; the deployment in the URL decides.
func (a *Adapter) DefaultModel(hasImage bool) string {
	return a.config.Deployment
}

// SupportsVision reports image attachment support
func (a *Adapter) SupportsVision() bool {
	return true
}

// ChatCompletion performs a chat completion request against the deployment
func (a *Adapter) ChatCompletion(ctx context.Context, req *providers.ChatRequest) (*providers.ChatResponse, error) {
	start := time.Now()

	body, err := json.Marshal(buildRequest(req))
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), providers.CodeBadPayload,
			"failed to marshal request", 0, err)
	}

	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		a.config.Endpoint, a.config.Deployment, apiVersion)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), providers.CodeRequestFailed,
			"failed to create request", 0, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("api-key", a.config.APIKey)

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
		Model:        a.config.Deployment,
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

// buildRequest converts the unified request to the Azure wire format.
// Same shape as OpenAI chat completions, minus the model field.
func buildRequest(req *providers.ChatRequest) *chatRequest {
	out := &chatRequest{
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
	code := errResp.Error.Code
	if code == "" {
		code = providers.CodeBadStatus
	}
	return providers.NewProviderError(a.Name(), code, errResp.Error.Message,
		statusCode, errors.New(errResp.Error.Message))
}

// Azure wire types (OpenAI chat completion shape without the model field)

type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

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
	Choices []choice `json:"choices"`
	Usage   usage    `json:"usage"`
}

type choice struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
