// Package ops serves the operator-facing endpoints: health, pool
// coverage, and model spend. Separate from the player API so it can bind
// to an internal port.
package ops

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"chronle/internal/coverage"
	"chronle/internal/usage"
	"chronle/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Router is the ops HTTP router
type Router struct {
	router *chi.Mux
	events ports.EventRepository
	usage  *usage.Service
}

// NewRouter creates the ops router with its middleware and routes
func NewRouter(events ports.EventRepository, usageService *usage.Service) *Router {
	r := &Router{
		router: chi.NewRouter(),
		events: events,
		usage:  usageService,
	}
	r.setupMiddleware()
	r.setupRoutes()
	return r
}

func (r *Router) setupMiddleware() {
	r.router.Use(middleware.RequestID)
	r.router.Use(middleware.Logger)
	r.router.Use(middleware.Recoverer)
}

func (r *Router) setupRoutes() {
	r.router.Get("/healthz", r.handleHealth)
	r.router.Get("/coverage", r.handleCoverage)
	r.router.Get("/usage", r.handleUsage)
}

// Handler returns the underlying HTTP handler
func (r *Router) Handler() http.Handler {
	return r.router
}

func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (r *Router) handleCoverage(w http.ResponseWriter, req *http.Request) {
	stats, err := r.events.GetYearStats(req.Context())
	if err != nil {
		log.Printf("[Ops] coverage stats failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load pool stats"})
		return
	}
	writeJSON(w, http.StatusOK, coverage.BuildReport(stats))
}

func (r *Router) handleUsage(w http.ResponseWriter, req *http.Request) {
	end := time.Now()
	start := end.AddDate(0, 0, -30)

	if raw := req.URL.Query().Get("start"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "start must be YYYY-MM-DD"})
			return
		}
		start = parsed
	}
	if raw := req.URL.Query().Get("end"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "end must be YYYY-MM-DD"})
			return
		}
		end = parsed.AddDate(0, 0, 1)
	}

	summary, err := r.usage.GetUsageSummary(req.Context(), start, end)
	if err != nil {
		log.Printf("[Ops] usage summary failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load usage"})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[Ops] response encode failed: %v", err)
	}
}
