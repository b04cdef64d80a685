package handlers

import (
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/squares-service/internal/health"
	"github.com/preston-bernstein/squares-service/internal/poller"
)

// Handler serves liveness, readiness and the health monitor surface.
type Handler struct {
	monitor  *health.Monitor
	logger   *slog.Logger
	statusFn func() poller.Status
}

// NewHandler constructs a Handler. statusFn and monitor may be nil.
func NewHandler(monitor *health.Monitor, logger *slog.Logger, statusFn func() poller.Status) *Handler {
	return &Handler{
		monitor:  monitor,
		logger:   logger,
		statusFn: statusFn,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := r.Context().Err(); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "shutting_down", "shutting down", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports readiness for traffic (e.g., for Kubernetes readiness checks).
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.statusFn == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	status := h.statusFn()
	if status.IsReady() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	msg := status.LastError
	if msg == "" {
		msg = "not ready"
	}
	writeError(w, r, http.StatusServiceUnavailable, "not_ready", msg, h.logger)
}

// Competitions lists the latest poll outcome per competition.
func (h *Handler) Competitions(w http.ResponseWriter, r *http.Request) {
	comps := h.monitor.Competitions()
	if comps == nil {
		comps = []health.CompetitionStatus{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"competitions": comps}, h.logger)
}

// Failures returns the rolling failure log, newest first.
func (h *Handler) Failures(w http.ResponseWriter, r *http.Request) {
	failures := h.monitor.Failures()
	if failures == nil {
		failures = []health.Failure{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"failures": failures}, h.logger)
}
