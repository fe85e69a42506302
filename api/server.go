/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for dashboards

ROUTE GROUPS:
  /api/entities/*      BI data, loss events and results per entity
  /api/loss-events/*   Loss event lifecycle (recoveries, exclusion)
  /api/calculations/*  Run, fetch and override calculations
  /api/lineage/*       Audit records, verification, reproducibility
  /api/parameters/*    Parameter version management
  /api/scenarios/*     Demo scenarios

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		// Entity-scoped routes
		r.Route("/entities/{id}", func(r chi.Router) {
			r.Get("/indicators", h.ListBusinessIndicators)
			r.Post("/indicators", h.SubmitBusinessIndicator)
			r.Get("/loss-events", h.ListLossEvents)
			r.Get("/calculations", h.ListCalculations)
		})

		// Loss event lifecycle
		r.Route("/loss-events", func(r chi.Router) {
			r.Post("/", h.CreateLossEvent)
			r.Get("/{id}", h.GetLossEvent)
			r.Post("/{id}/recoveries", h.AddRecovery)
			r.Get("/{id}/recoveries", h.ListRecoveries)
			r.Post("/{id}/exclude", h.ExcludeLossEvent)
		})

		// Calculation routes
		r.Route("/calculations", func(r chi.Router) {
			r.Post("/", h.RunCalculation)
			r.Get("/{runID}", h.GetCalculation)
			r.Post("/{runID}/override", h.ApplyOverride)
		})

		// Lineage routes
		r.Route("/lineage", func(r chi.Router) {
			r.Get("/{runID}", h.GetLineage)
			r.Get("/{runID}/verify", h.VerifyLineage)
			r.Get("/{runID}/reproducibility", h.GetReproducibility)
		})

		// Parameter routes
		r.Route("/parameters", func(r chi.Router) {
			r.Get("/", h.ListParameters)
			r.Post("/", h.CreateParameterVersion)
			r.Get("/{version}", h.GetParameterVersion)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	// Landing page listing the API surface
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Capital Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Operational Risk Capital Engine API</h1>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/health">/api/health</a> - Health check</li>
<li><a href="/api/parameters">/api/parameters</a> - Parameter versions</li>
<li><a href="/api/scenarios">/api/scenarios</a> - Demo scenarios</li>
</ul>
</body>
</html>`))
	})

	return r
}
