package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/agentkit/agentctl/services/providers"
)

const (
	defaultBaseURL     = "https://generativelanguage.googleapis.com"
	defaultModel       = "gemini-pro"
	defaultVisionModel = "gemini-pro-vision"
)

// Adapter implements the Provider interface for Google Gemini
type Adapter struct {
	config     providers.Config
	httpClient *http.Client
}

// NewAdapter creates a new Gemini adapter
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
	return "gemini"
}

// CheckCredentials verifies that an API key is configured
func (a *Adapter) CheckCredentials() error {
	if a.config.APIKey == "" {
		return providers.NewProviderError(a.Name(), providers.CodeMissingCredential,
			"GEMINI_API_KEY environment variable not set", 0, nil)
	}
	return nil
}

// DefaultModel returns gemini-pro for text and gemini-pro-vision for image requests
func (a *Adapter) DefaultModel(hasImage bool) string {
	if hasImage {
		return defaultVisionModel
	}
	return defaultModel
}

// SupportsVision reports image attachment support
func (a *Adapter) SupportsVision() bool {
	return true
}

// ChatCompletion performs a generateContent request. The API key travels as a
// query parameter, not a header.
func (a *Adapter) ChatCompletion(ctx context.Context, req *providers.ChatRequest) (*providers.ChatResponse, error) {
	start := time.Now()

	body, err := json.Marshal(buildRequest(req))
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), providers.CodeBadPayload,
			"failed to marshal request", 0, err)
	}

	endpoint := fmt.Sprintf("%s/v1/models/%s:generateContent?key=%s",
		a.config.BaseURL, req.Model, url.QueryEscape(a.config.APIKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), providers.CodeRequestFailed,
			"failed to create request", 0, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

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

	var parsed generateContentResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, providers.NewProviderError(a.Name(), providers.CodeBadPayload,
			"failed to unmarshal response", httpResp.StatusCode, err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, providers.NewProviderError(a.Name(), providers.CodeEmptyCompletion,
			"response contained no candidates", httpResp.StatusCode, nil)
	}

	candidate := parsed.Candidates[0]
	return &providers.ChatResponse{
		Model:        req.Model,
		Provider:     a.Name(),
		Text:         candidate.Content.Parts[0].Text,
		FinishReason: candidate.FinishReason,
		Usage: providers.Usage{
			PromptTokens:     parsed.UsageMetadata.PromptTokenCount,
			CompletionTokens: parsed.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      parsed.UsageMetadata.TotalTokenCount,
		},
		Latency: time.Since(start),
	}, nil
}

// buildRequest converts the unified request to the Gemini wire format.
// Conversation turns become role-tagged contents; assistant maps to "model".
func buildRequest(req *providers.ChatRequest) *generateContentRequest {
	out := &generateContentRequest{
		Contents: make([]content, len(req.Messages)),
		GenerationConfig: generationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		},
	}
	for i, msg := range req.Messages {
		parts := []part{{Text: msg.Content}}
		if msg.Image != nil {
			parts = append(parts, part{
				InlineData: &inlineData{
					MimeType: msg.Image.MediaType,
					Data:     msg.Image.Data,
				},
			})
		}
		role := msg.Role
		if role == "assistant" {
			role = "model"
		}
		out.Contents[i] = content{Role: role, Parts: parts}
	}
	return out
}

func (a *Adapter) errorFromResponse(statusCode int, body []byte) error {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Message == "" {
		return providers.NewProviderError(a.Name(), providers.CodeBadStatus,
			string(body), statusCode, nil)
	}
	code := errResp.Error.Status
	if code == "" {
		code = providers.CodeBadStatus
	}
	return providers.NewProviderError(a.Name(), code, errResp.Error.Message,
		statusCode, errors.New(errResp.Error.Message))
}

// Gemini wire types

type generateContentRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
