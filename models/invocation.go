package models

import (
	"time"

	"github.com/google/uuid"
)

// InvocationStatus represents the outcome of a tool invocation
type InvocationStatus string

const (
	StatusOK    InvocationStatus = "ok"
	StatusError InvocationStatus = "error"
)

// Invocation is one audited tool run: an LLM query, a scrape batch, a search,
// or a planning request. Prompts themselves are never stored, only their size.
type Invocation struct {
	ID           uuid.UUID        `json:"id"`
	Tool         string           `json:"tool"`
	Provider     string           `json:"provider,omitempty"`
	Model        string           `json:"model,omitempty"`
	Engine       string           `json:"engine,omitempty"`
	PromptChars  int              `json:"prompt_chars"`
	Status       InvocationStatus `json:"status"`
	ErrorMessage string           `json:"error_message,omitempty"`
	LatencyMs    int              `json:"latency_ms"`
	CreatedAt    time.Time        `json:"created_at"`
}

// NewInvocation creates an invocation with identity and timestamp assigned
func NewInvocation(tool string) *Invocation {
	return &Invocation{
		ID:        uuid.New(),
		Tool:      tool,
		Status:    StatusOK,
		CreatedAt: time.Now().UTC(),
	}
}

// Finalize fills identity and timestamp when the producer left them zero
func (i *Invocation) Finalize() {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.CreatedAt.IsZero() {
		i.CreatedAt = time.Now().UTC()
	}
	if i.Status == "" {
		i.Status = StatusOK
	}
}
