package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agentkit/agentctl/app"
	"github.com/agentkit/agentctl/config"
	"github.com/agentkit/agentctl/middleware"
	"github.com/agentkit/agentctl/services/audit"
	"github.com/agentkit/agentctl/services/llm"
	"github.com/agentkit/agentctl/services/plan"
	"github.com/agentkit/agentctl/services/providers"
	"github.com/agentkit/agentctl/services/scrape"
	"github.com/agentkit/agentctl/services/search"
)

type routeProvider struct{}

func (routeProvider) Name() string { return "openai" }
func (routeProvider) ChatCompletion(ctx context.Context, req *providers.ChatRequest) (*providers.ChatResponse, error) {
	return &providers.ChatResponse{Model: req.Model, Provider: "openai", Text: "pong"}, nil
}
func (routeProvider) CheckCredentials() error           { return nil }
func (routeProvider) DefaultModel(hasImage bool) string { return "gpt-4o" }
func (routeProvider) SupportsVision() bool              { return false }

func newTestDeps(t *testing.T, jwtSecret string) *app.Dependencies {
	t.Helper()

	logger := zap.NewNop()
	registry := providers.NewRegistry()
	require.NoError(t, registry.Register(routeProvider{}))

	recorder := audit.NewNopRecorder()
	llmService := llm.NewService(registry, recorder, logger)

	deps := &app.Dependencies{
		Config:   &config.Config{},
		Logger:   logger,
		Registry: registry,
		Recorder: recorder,
		LLM:      llmService,
		Plan:     plan.NewService(llmService, logger),
		Scrape:   scrape.NewService(time.Second, recorder, logger),
		Search:   search.NewService(&config.SearchConfig{}, recorder, logger),
	}
	if jwtSecret != "" {
		deps.AuthMiddleware = middleware.NewAuthMiddleware(
			middleware.NewHMACValidator(jwtSecret), logger)
	}
	return deps
}

func TestRoutes_Health(t *testing.T) {
	router := SetupRoutes(newTestDeps(t, ""))

	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRoutes_QueryDispatch(t *testing.T) {
	router := SetupRoutes(newTestDeps(t, ""))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/llm/query",
		strings.NewReader(`{"provider":"openai","prompt":"ping"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pong")
}

func TestRoutes_NotFound(t *testing.T) {
	router := SetupRoutes(newTestDeps(t, ""))

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")
}

func TestRoutes_AuthRequired(t *testing.T) {
	secret := "route-secret"
	router := SetupRoutes(newTestDeps(t, secret))

	// Without a token the API is closed
	req := httptest.NewRequest(http.MethodPost, "/api/v1/llm/query",
		strings.NewReader(`{"provider":"openai","prompt":"ping"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Health stays public
	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// A valid token opens it
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "tester",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/llm/query",
		strings.NewReader(`{"provider":"openai","prompt":"ping"}`))
	req.Header.Set("Authorization", "Bearer "+signed)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
