package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/agentkit/agentctl/middleware"
	"github.com/agentkit/agentctl/services/scrape"
	"github.com/agentkit/agentctl/utils"
)

// ScrapeRequest is the request body for POST /api/v1/scrape
type ScrapeRequest struct {
	URLs          []string `json:"urls" validate:"required,min=1,max=20,dive,url"`
	MaxConcurrent int      `json:"max_concurrent,omitempty" validate:"omitempty,gt=0,lte=20"`
}

// ScrapeResponse is the response body for a scrape batch
type ScrapeResponse struct {
	Results []scrape.Result `json:"results"`
}

// ScrapeService defines the scraping operations the handler needs
type ScrapeService interface {
	Scrape(ctx context.Context, req *scrape.Request) ([]scrape.Result, error)
}

// ScrapeHandler handles web scraping HTTP requests
type ScrapeHandler struct {
	service ScrapeService
	logger  *zap.Logger
}

// NewScrapeHandler creates a new ScrapeHandler
func NewScrapeHandler(service ScrapeService, logger *zap.Logger) *ScrapeHandler {
	return &ScrapeHandler{service: service, logger: logger}
}

// HandleScrape handles POST /api/v1/scrape
func (h *ScrapeHandler) HandleScrape(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var req ScrapeRequest
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

	h.logger.Debug("scraping",
		zap.String("request_id", requestID),
		zap.Int("url_count", len(req.URLs)))

	results, err := h.service.Scrape(ctx, &scrape.Request{
		URLs:          req.URLs,
		MaxConcurrent: req.MaxConcurrent,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteJSON(w, http.StatusOK, ScrapeResponse{Results: results})
}
