package providers

import (
	"context"
	"time"
)

// Provider represents a unified LLM provider interface
type Provider interface {
	// Name returns the provider name (e.g., "openai", "anthropic")
	Name() string

	// ChatCompletion performs a single chat completion request.
	// Transport failures are reported as *ProviderError and are terminal:
	// adapters never retry.
	ChatCompletion(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// CheckCredentials reports whether the adapter has the configuration it
	// needs to authenticate. Returns a *ProviderError with code
	// "missing_credential" naming the absent variable(s), or nil.
	CheckCredentials() error

	// DefaultModel returns the model used when the caller does not specify
	// one. Some providers pick a different default for image requests.
	DefaultModel(hasImage bool) string

	// SupportsVision reports whether the provider accepts image attachments
	SupportsVision() bool
}

// ChatRequest represents a unified chat completion request
type ChatRequest struct {
	// Model identifier (e.g., "gpt-4o", "claude-3-5-sonnet-20241022")
	Model string `json:"model"`

	// Messages in the conversation
	Messages []Message `json:"messages"`

	// Temperature controls randomness
	Temperature float64 `json:"temperature"`

	// MaxTokens limits the response length
	MaxTokens int `json:"max_tokens"`
}

// Message represents a single message in a conversation
type Message struct {
	// Role can be "system", "user", or "assistant"
	Role string `json:"role"`

	// Content is the message text
	Content string `json:"content"`

	// Image is an optional attachment for multimodal providers
	Image *ImageAttachment `json:"image,omitempty"`
}

// ImageAttachment carries a base64-encoded image
type ImageAttachment struct {
	// MediaType is the MIME type, e.g. "image/jpeg" or "image/png"
	MediaType string `json:"media_type"`

	// Data is the base64-encoded image bytes
	Data string `json:"data"`
}

// DataURI returns the attachment as a data URI (OpenAI-style image_url)
func (a *ImageAttachment) DataURI() string {
	return "data:" + a.MediaType + ";base64," + a.Data
}

// ChatResponse represents a unified chat completion response
type ChatResponse struct {
	// ID is the provider-assigned identifier for this completion, when given
	ID string `json:"id"`

	// Model that produced the completion
	Model string `json:"model"`

	// Provider that handled the request
	Provider string `json:"provider"`

	// Text is the content of the first completion choice
	Text string `json:"text"`

	// FinishReason indicates why the completion finished
	FinishReason string `json:"finish_reason,omitempty"`

	// Usage statistics, zero-valued when the provider omits them
	Usage Usage `json:"usage"`

	// Latency of the round trip
	Latency time.Duration `json:"latency"`
}

// Usage represents token usage statistics
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Config holds common configuration for provider adapters
type Config struct {
	// APIKey for authentication
	APIKey string

	// BaseURL for the API
	BaseURL string

	// Timeout for requests
	Timeout time.Duration
}

// Error codes used by adapters
const (
	CodeMissingCredential = "missing_credential"
	CodeRequestFailed     = "request_failed"
	CodeBadStatus         = "bad_status"
	CodeBadPayload        = "bad_payload"
	CodeEmptyCompletion   = "empty_completion"
)

// ProviderError represents an error from a provider adapter
type ProviderError struct {
	// Provider that generated the error
	Provider string

	// Code is one of the Code* constants or a provider-reported error type
	Code string

	// Message is the error message
	Message string

	// StatusCode is the HTTP status code, 0 when the request never completed
	StatusCode int

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return e.Provider + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Provider + ": " + e.Message
}

// Unwrap implements error unwrapping
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewProviderError creates a new provider error
func NewProviderError(provider, code, message string, statusCode int, cause error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Cause:      cause,
	}
}
