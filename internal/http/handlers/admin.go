package handlers

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/squares-service/internal/http/requestutil"
	"github.com/preston-bernstein/squares-service/internal/logging"
)

// AdminGuard protects admin-only routes with a bearer token.
type AdminGuard struct {
	token  string
	logger *slog.Logger
}

// NewAdminGuard returns a guard for token. An empty token rejects every request.
func NewAdminGuard(token string, logger *slog.Logger) *AdminGuard {
	return &AdminGuard{token: token, logger: logger}
}

// Wrap returns next guarded by the admin token; failures get 401.
func (g *AdminGuard) Wrap(next http.HandlerFunc) http.HandlerFunc {
	var logger *slog.Logger
	if g != nil {
		logger = g.logger
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if !g.authorize(r) {
			logging.Warn(loggerFromContext(r, logger), "admin unauthorized",
				slog.String(logging.FieldPath, r.URL.Path),
				slog.String("client_ip", requestutil.ClientIP(r)),
			)
			writeError(w, r, http.StatusUnauthorized, "unauthorized", "unauthorized", logger)
			return
		}
		next(w, r)
	}
}

func (g *AdminGuard) authorize(r *http.Request) bool {
	if g == nil || g.token == "" {
		return false
	}
	got, ok := requestutil.BearerToken(r)
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(g.token)) == 1
}
