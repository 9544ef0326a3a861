package llm

import (
	"time"

	"github.com/agentkit/agentctl/services/providers"
)

// QueryRequest represents a single dispatch to an LLM provider
type QueryRequest struct {
	// Provider name: openai, anthropic, azure (alias azure_openai), deepseek, gemini
	Provider string

	// Prompt is the user text to send
	Prompt string

	// Model overrides the provider default when set
	Model string

	// Temperature for generation
	Temperature float64

	// MaxTokens limits the response; 0 means the shared default
	MaxTokens int

	// ImagePath attaches a local image file for multimodal providers
	ImagePath string

	// History holds prior conversation turns, sent before the prompt.
	// Used by the chat REPL; empty for one-shot queries.
	History []providers.Message

	// Tool names the invocation in the audit log; defaults to "llm"
	Tool string
}

// QueryResult represents the outcome of a dispatch
type QueryResult struct {
	// Text is the completion returned by the provider
	Text string

	// Provider that handled the request (canonical name)
	Provider string

	// Model that produced the completion
	Model string

	// Usage statistics, zero-valued when the provider omits them
	Usage providers.Usage

	// Latency of the provider round trip
	Latency time.Duration
}
