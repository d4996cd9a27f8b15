// Package rest exposes the match service over HTTP.
package rest

import (
	"encoding/json"
	"mime"
	"net/http"

	"github.com/calliope-labs/cratematch/internal/core/ports"
	"github.com/calliope-labs/cratematch/internal/metrics"
	"github.com/calliope-labs/cratematch/internal/worker"
)

// Handler manages the HTTP interface for our application.
type Handler struct {
	svc    ports.MatchEngine // Dependency on the Core Service
	pool   *worker.Pool      // Batch job queue, optional
	cache  ports.MatchCache  // Match history source, optional
	met    *metrics.Metrics  // Scrape endpoint source, optional
	router *http.ServeMux    // Standard library router
}

// NewHandler initializes the HTTP adapter and sets up routes.
func NewHandler(svc ports.MatchEngine, pool *worker.Pool, cache ports.MatchCache, met *metrics.Metrics) *Handler {
	h := &Handler{
		svc:    svc,
		pool:   pool,
		cache:  cache,
		met:    met,
		router: http.NewServeMux(),
	}

	// Register Routes
	h.routes()

	return h
}

// ServeHTTP satisfies the http.Handler interface.
// It acts as a proxy, passing the request to our internal router.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// routes defines the mapping between URLs and methods.
func (h *Handler) routes() {
	// Health Check
	h.router.HandleFunc("GET /health", h.HealthCheck)
	// Matching
	h.router.HandleFunc("POST /match", h.Match)
	h.router.HandleFunc("POST /match/batch", h.MatchBatch)
	h.router.HandleFunc("GET /results", h.ListResults)
	// Metrics scrape
	if h.met != nil {
		h.router.Handle("GET /metrics", h.met.Handler())
	}
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func isJSONContentType(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	return err == nil && mediaType == "application/json"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeErrorWithCode(w http.ResponseWriter, status int, msg, code string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}
