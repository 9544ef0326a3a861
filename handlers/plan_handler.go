package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/agentkit/agentctl/middleware"
	"github.com/agentkit/agentctl/services/llm"
	"github.com/agentkit/agentctl/services/plan"
	"github.com/agentkit/agentctl/utils"
)

// PlanRequest is the request body for POST /api/v1/plan. File context is
// passed inline; the gateway never reads server-local paths.
type PlanRequest struct {
	Prompt      string `json:"prompt" validate:"required"`
	Provider    string `json:"provider,omitempty" validate:"omitempty,oneof=openai anthropic"`
	Model       string `json:"model,omitempty"`
	FileContent string `json:"file_content,omitempty"`
}

// PlanResponse is the response body for a successful planning run
type PlanResponse struct {
	Plan      string `json:"plan"`
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	LatencyMs int64  `json:"latency_ms"`
}

// PlanService defines the planning operations the handler needs
type PlanService interface {
	Plan(ctx context.Context, req *plan.Request) (*llm.QueryResult, error)
}

// PlanHandler handles planning HTTP requests
type PlanHandler struct {
	service PlanService
	logger  *zap.Logger
}

// NewPlanHandler creates a new PlanHandler
func NewPlanHandler(service PlanService, logger *zap.Logger) *PlanHandler {
	return &PlanHandler{service: service, logger: logger}
}

// HandlePlan handles POST /api/v1/plan
func (h *PlanHandler) HandlePlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to parse request body",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	result, err := h.service.Plan(ctx, &plan.Request{
		Prompt:        req.Prompt,
		Provider:      req.Provider,
		Model:         req.Model,
		InlineContext: req.FileContent,
	})
	if err != nil {
		h.logger.Warn("planning failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteJSON(w, http.StatusOK, PlanResponse{
		Plan:      result.Text,
		Provider:  result.Provider,
		Model:     result.Model,
		LatencyMs: result.Latency.Milliseconds(),
	})
}
