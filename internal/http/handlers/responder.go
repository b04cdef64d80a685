package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/squares-service/internal/http/middleware"
	"github.com/preston-bernstein/squares-service/internal/http/requestutil"
	"github.com/preston-bernstein/squares-service/internal/ledger"
	"github.com/preston-bernstein/squares-service/internal/logging"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && logger != nil {
		logger.Error("failed to encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, logger *slog.Logger) {
	reqID := middleware.RequestIDFromContext(r.Context())
	if reqID == "" {
		reqID = r.Header.Get(requestutil.HeaderRequestID)
	}
	writeJSON(w, status, errorBody{Error: message, Code: code, RequestID: reqID}, logger)
}

// writeLedgerError maps ledger failures onto status codes: 403 for authorization,
// 409 for other refused preconditions.
func writeLedgerError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	if pe, ok := ledger.AsPreconditionError(err); ok {
		status := http.StatusConflict
		if pe.IsAuthorization() {
			status = http.StatusForbidden
		}
		writeError(w, r, status, pe.Code(), pe.Error(), logger)
		return
	}
	switch {
	case errors.Is(err, ledger.ErrGameNotFound):
		writeError(w, r, http.StatusNotFound, "not_found", "game not found", logger)
	case errors.Is(err, ledger.ErrGameExists):
		writeError(w, r, http.StatusConflict, "game_exists", err.Error(), logger)
	case errors.Is(err, ledger.ErrInvalidGame):
		writeError(w, r, http.StatusBadRequest, "invalid_game", err.Error(), logger)
	default:
		logging.Error(logger, "ledger request failed", err)
		writeError(w, r, http.StatusInternalServerError, "internal", "internal error", logger)
	}
}

func loggerFromContext(r *http.Request, fallback *slog.Logger) *slog.Logger {
	if r == nil {
		return fallback
	}
	return logging.FromContext(r.Context(), fallback)
}

// NotFound and MethodNotAllowed keep router fallbacks in the JSON error shape.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, "not_found", "not found", nil)
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed", nil)
}
