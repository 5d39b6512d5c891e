// Package server implements A2's HTTP transport and A3's health/metrics
// surface, grounded on the pack's chi-router handler pattern
// (abramin-Credo's decision/handler.go) rather than the teacher's gRPC
// service, per SPEC_FULL's dropped-gRPC redesign.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/packsafe/previewcore/internal/metrics"
	"github.com/packsafe/previewcore/internal/preview"
	"github.com/packsafe/previewcore/internal/regulation"
)

// Server wires the preview orchestrator to an HTTP surface.
type Server struct {
	orchestrator *preview.Orchestrator
	store        *regulation.Store
	metrics      *metrics.Metrics
	logger       *slog.Logger
	router       chi.Router
	metricsPath  string
}

// New builds a Server and mounts every route.
func New(orch *preview.Orchestrator, store *regulation.Store, m *metrics.Metrics, logger *slog.Logger, metricsPath string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	s := &Server{orchestrator: orch, store: store, metrics: m, logger: logger, metricsPath: metricsPath}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Post("/v1/preview", s.handlePreview)
	r.Post("/v1/admin/reload", s.handleReload)
	r.Get("/healthz", s.handleHealthz)
	r.Get(metricsPath, promhttp.Handler().ServeHTTP)
	s.router = r

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req preview.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Label == "" {
		writeError(w, http.StatusBadRequest, "label is required")
		return
	}

	start := time.Now()
	result, err := s.orchestrator.Preview(r.Context(), req)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "preview failed", "error", err)
		writeError(w, http.StatusBadGateway, "preview unavailable")
		return
	}
	s.metrics.ObservePreview(time.Since(start), string(result.State))

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Reload(); err != nil {
		s.metrics.ReloadErrors.Inc()
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.metrics.RegulationRules.Set(float64(s.store.RuleCount()))
	writeJSON(w, http.StatusOK, map[string]any{
		"rule_count":    s.store.RuleCount(),
		"last_reloaded": s.store.LastReloaded().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "ok",
		"rule_count":        s.store.RuleCount(),
		"regulation_synced": s.store.LastReloaded().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
