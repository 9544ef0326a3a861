package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/agentkit/agentctl/config"
	"github.com/agentkit/agentctl/middleware"
	"github.com/agentkit/agentctl/repositories/postgres"
	"github.com/agentkit/agentctl/services/audit"
	"github.com/agentkit/agentctl/services/llm"
	"github.com/agentkit/agentctl/services/plan"
	"github.com/agentkit/agentctl/services/providers"
	"github.com/agentkit/agentctl/services/providers/anthropic"
	"github.com/agentkit/agentctl/services/providers/azureopenai"
	"github.com/agentkit/agentctl/services/providers/deepseek"
	"github.com/agentkit/agentctl/services/providers/gemini"
	"github.com/agentkit/agentctl/services/providers/openai"
	"github.com/agentkit/agentctl/services/scrape"
	"github.com/agentkit/agentctl/services/search"
)

// Dependencies is the central wiring point for the CLI and the HTTP gateway.
// Both surfaces share the same services so behavior is identical.
type Dependencies struct {
	Config *config.Config
	Logger *zap.Logger

	// DB is nil when no audit database is configured
	DB *sql.DB

	Registry *providers.Registry
	Recorder audit.Recorder

	LLM    *llm.Service
	Plan   *plan.Service
	Scrape *scrape.Service
	Search *search.Service

	// AuthMiddleware is nil when AUTH_JWT_SECRET is unset
	AuthMiddleware *middleware.AuthMiddleware

	auditService *audit.Service
}

// NewDependencies creates and wires up all application dependencies.
// Every provider is registered regardless of credentials: a missing key is a
// configuration error surfaced per call, not an unknown provider.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initAudit(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize audit log: %w", err)
	}
	if err := deps.initProviders(); err != nil {
		return nil, fmt.Errorf("failed to initialize providers: %w", err)
	}
	deps.initServices()
	deps.initAuth()

	logger.Debug("all dependencies initialized")
	return deps, nil
}

// initAudit connects the audit database when configured, falling back to a
// no-op recorder otherwise.
func (d *Dependencies) initAudit(ctx context.Context) error {
	if !d.Config.Database.Enabled() {
		d.Recorder = audit.NewNopRecorder()
		return nil
	}

	db, err := postgres.Connect(ctx, &d.Config.Database, d.Logger)
	if err != nil {
		return err
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return err
	}
	d.DB = db

	repo := postgres.NewInvocationRepository(db)
	svc := audit.NewService(repo, d.Logger, audit.DefaultConfig())
	if err := svc.Start(); err != nil {
		_ = db.Close()
		return err
	}
	d.auditService = svc
	d.Recorder = svc
	return nil
}

// initProviders builds the registry with all five adapters
func (d *Dependencies) initProviders() error {
	p := d.Config.Providers
	registry := providers.NewRegistry()

	adapters := []providers.Provider{
		openai.NewAdapter(providers.Config{
			APIKey:  p.OpenAI.APIKey,
			BaseURL: p.OpenAI.BaseURL,
			Timeout: p.OpenAI.Timeout,
		}),
		anthropic.NewAdapter(providers.Config{
			APIKey:  p.Anthropic.APIKey,
			BaseURL: p.Anthropic.BaseURL,
			Timeout: p.Anthropic.Timeout,
		}),
		azureopenai.NewAdapter(azureopenai.Config{
			APIKey:     p.Azure.APIKey,
			Endpoint:   p.Azure.Endpoint,
			Deployment: p.Azure.Deployment,
			Timeout:    p.Azure.Timeout,
		}),
		deepseek.NewAdapter(providers.Config{
			APIKey:  p.DeepSeek.APIKey,
			BaseURL: p.DeepSeek.BaseURL,
			Timeout: p.DeepSeek.Timeout,
		}),
		gemini.NewAdapter(providers.Config{
			APIKey:  p.Gemini.APIKey,
			BaseURL: p.Gemini.BaseURL,
			Timeout: p.Gemini.Timeout,
		}),
	}
	for _, adapter := range adapters {
		if err := registry.Register(adapter); err != nil {
			return err
		}
	}
	if err := registry.RegisterAlias("azure_openai", "azure"); err != nil {
		return err
	}

	d.Registry = registry
	return nil
}

// initServices wires the tool services on top of the registry and recorder
func (d *Dependencies) initServices() {
	d.LLM = llm.NewService(d.Registry, d.Recorder, d.Logger)
	d.Plan = plan.NewService(d.LLM, d.Logger)
	d.Scrape = scrape.NewService(30*time.Second, d.Recorder, d.Logger)
	d.Search = search.NewService(&d.Config.Search, d.Recorder, d.Logger)
}

// initAuth enables gateway authentication when a JWT secret is configured
func (d *Dependencies) initAuth() {
	if d.Config.Auth.JWTSecret == "" {
		return
	}
	validator := middleware.NewHMACValidator(d.Config.Auth.JWTSecret)
	d.AuthMiddleware = middleware.NewAuthMiddleware(validator, d.Logger)
}

// Close flushes the audit queue and releases the database connection
func (d *Dependencies) Close() error {
	if d.auditService != nil {
		if err := d.auditService.Stop(5 * time.Second); err != nil {
			d.Logger.Warn("audit service did not stop cleanly", zap.Error(err))
		}
	}
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
