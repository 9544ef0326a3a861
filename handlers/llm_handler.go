package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/agentkit/agentctl/middleware"
	"github.com/agentkit/agentctl/services/llm"
	"github.com/agentkit/agentctl/utils"
)

// QueryRequest is the request body for POST /api/v1/llm/query
type QueryRequest struct {
	Provider    string  `json:"provider" validate:"required"`
	Prompt      string  `json:"prompt" validate:"required"`
	Model       string  `json:"model,omitempty"`
	Temperature float64 `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
	MaxTokens   int     `json:"max_tokens,omitempty" validate:"omitempty,gt=0"`
}

// QueryResponse is the response body for a successful completion
type QueryResponse struct {
	Text      string `json:"text"`
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	Usage     Usage  `json:"usage"`
	LatencyMs int64  `json:"latency_ms"`
}

// Usage reports token consumption for a completion
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// QueryService defines the LLM dispatch operations the handler needs
type QueryService interface {
	Query(ctx context.Context, req *llm.QueryRequest) (*llm.QueryResult, error)
	Providers() []string
}

// LLMHandler handles LLM dispatch HTTP requests
type LLMHandler struct {
	service QueryService
	logger  *zap.Logger
}

// NewLLMHandler creates a new LLMHandler
func NewLLMHandler(service QueryService, logger *zap.Logger) *LLMHandler {
	return &LLMHandler{service: service, logger: logger}
}

// HandleQuery handles POST /api/v1/llm/query
func (h *LLMHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to parse request body",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		h.logger.Warn("request validation failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleValidationError(w, err, h.logger)
		return
	}

	h.logger.Debug("dispatching query",
		zap.String("request_id", requestID),
		zap.String("provider", req.Provider),
		zap.String("model", req.Model))

	result, err := h.service.Query(ctx, &llm.QueryRequest{
		Provider:    req.Provider,
		Prompt:      req.Prompt,
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		h.logger.Warn("query failed",
			zap.String("request_id", requestID),
			zap.String("provider", req.Provider),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteJSON(w, http.StatusOK, QueryResponse{
		Text:     result.Text,
		Provider: result.Provider,
		Model:    result.Model,
		Usage: Usage{
			PromptTokens:     result.Usage.PromptTokens,
			CompletionTokens: result.Usage.CompletionTokens,
			TotalTokens:      result.Usage.TotalTokens,
		},
		LatencyMs: result.Latency.Milliseconds(),
	})
}

// HandleProviders handles GET /api/v1/llm/providers
func (h *LLMHandler) HandleProviders(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"providers": h.service.Providers(),
	})
}
