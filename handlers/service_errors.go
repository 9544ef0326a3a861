package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/agentkit/agentctl/services"
	"github.com/agentkit/agentctl/utils"
)

// HandleServiceError maps domain errors to HTTP responses: validation
// failures become 400, missing credentials 503, upstream provider failures
// 502, everything unexpected a generic 500.
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	details := services.GetErrorDetails(err)

	switch {
	case services.IsValidationError(err):
		if err := utils.WriteBadRequest(w, err.Error(), details); err != nil {
			logger.Error("failed to write bad request response", zap.Error(err))
		}

	case services.IsConfigurationError(err):
		if err := utils.WriteServiceUnavailable(w, err.Error(), details); err != nil {
			logger.Error("failed to write service unavailable response", zap.Error(err))
		}

	case services.IsTransportError(err):
		if err := utils.WriteBadGateway(w, err.Error(), details); err != nil {
			logger.Error("failed to write bad gateway response", zap.Error(err))
		}

	case services.IsUnauthorizedError(err):
		if err := utils.WriteUnauthorized(w, err.Error()); err != nil {
			logger.Error("failed to write unauthorized response", zap.Error(err))
		}

	default:
		logger.Error("internal server error", zap.Error(err))
		if err := utils.WriteInternalServerError(w, "An internal error occurred"); err != nil {
			logger.Error("failed to write internal error response", zap.Error(err))
		}
	}
}

// HandleValidationError maps request validation failures to 400 responses
// with per-field details.
func HandleValidationError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	fields := utils.GetValidationFields(err)
	details := make(map[string]interface{}, len(fields))
	for field, message := range fields {
		details[field] = message
	}

	if writeErr := utils.WriteBadRequest(w, err.Error(), details); writeErr != nil {
		logger.Error("failed to write validation error response", zap.Error(writeErr))
	}
}
