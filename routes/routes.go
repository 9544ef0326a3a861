package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/agentkit/agentctl/app"
	"github.com/agentkit/agentctl/handlers"
	"github.com/agentkit/agentctl/middleware"
	"github.com/agentkit/agentctl/utils"
)

// SetupRoutes configures all gateway routes and middleware. API routes are
// wrapped in authentication only when a JWT secret is configured.
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.PropagateRequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(120 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	healthHandler := handlers.NewHealthHandler(deps.Registry, deps.DB, deps.Logger)
	llmHandler := handlers.NewLLMHandler(deps.LLM, deps.Logger)
	planHandler := handlers.NewPlanHandler(deps.Plan, deps.Logger)
	scrapeHandler := handlers.NewScrapeHandler(deps.Scrape, deps.Logger)
	searchHandler := handlers.NewSearchHandler(deps.Search, deps.Logger)

	// Health check endpoints, always public
	r.Get("/healthz", healthHandler.HandleHealthz)
	r.Get("/readyz", healthHandler.HandleReadyz)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		if deps.AuthMiddleware != nil {
			r.Use(deps.AuthMiddleware.RequireAuth)
		}

		r.Route("/llm", func(r chi.Router) {
			r.Post("/query", llmHandler.HandleQuery)
			r.Get("/providers", llmHandler.HandleProviders)
		})
		r.Post("/plan", planHandler.HandlePlan)
		r.Post("/scrape", scrapeHandler.HandleScrape)
		r.Get("/search", searchHandler.HandleSearch)
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "Route not found")
	})

	return r
}
