package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/agentkit/agentctl/services/providers"
	"github.com/agentkit/agentctl/utils"
)

// HealthHandler reports liveness and readiness of the gateway
type HealthHandler struct {
	registry *providers.Registry
	db       *sql.DB // nil when no audit database is configured
	logger   *zap.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(registry *providers.Registry, db *sql.DB, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{registry: registry, db: db, logger: logger}
}

// HandleHealthz handles GET /healthz
func (h *HealthHandler) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleReadyz handles GET /readyz. Reports which providers hold credentials
// and checks the audit database when one is configured.
func (h *HealthHandler) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	ready := true

	configured := make([]string, 0)
	for _, name := range h.registry.Names() {
		provider, err := h.registry.Get(name)
		if err != nil {
			continue
		}
		if provider.CheckCredentials() == nil {
			configured = append(configured, name)
		}
	}

	auditStatus := "disabled"
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			h.logger.Warn("audit database unreachable", zap.Error(err))
			auditStatus = "unreachable"
			ready = false
		} else {
			auditStatus = "ok"
		}
	}

	status := http.StatusOK
	state := "ready"
	if !ready {
		status = http.StatusServiceUnavailable
		state = "not_ready"
	}

	_ = utils.WriteJSON(w, status, map[string]interface{}{
		"status":               state,
		"configured_providers": configured,
		"audit_database":       auditStatus,
	})
}
