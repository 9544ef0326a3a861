package handlers

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/agentkit/agentctl/middleware"
	"github.com/agentkit/agentctl/services/search"
	"github.com/agentkit/agentctl/utils"
)

// SearchService defines the search operations the handler needs
type SearchService interface {
	Search(ctx context.Context, req *search.Request) (*search.Response, error)
}

// SearchHandler handles web search HTTP requests
type SearchHandler struct {
	service SearchService
	logger  *zap.Logger
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(service SearchService, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{service: service, logger: logger}
}

// HandleSearch handles GET /api/v1/search?q=...&engine=...&num=...
func (h *SearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	query := r.URL.Query().Get("q")
	engine := r.URL.Query().Get("engine")

	numResults := 0
	if raw := r.URL.Query().Get("num"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 50 {
			_ = utils.WriteBadRequest(w, "num must be an integer between 1 and 50", nil)
			return
		}
		numResults = n
	}

	h.logger.Debug("searching",
		zap.String("request_id", requestID),
		zap.String("engine", engine))

	resp, err := h.service.Search(ctx, &search.Request{
		Query:      query,
		Engine:     engine,
		NumResults: numResults,
	})
	if err != nil {
		h.logger.Warn("search failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteJSON(w, http.StatusOK, resp)
}
