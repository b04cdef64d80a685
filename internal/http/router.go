package http

import (
	"log/slog"
	nethttp "net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/preston-bernstein/squares-service/internal/http/handlers"
	"github.com/preston-bernstein/squares-service/internal/http/middleware"
	"github.com/preston-bernstein/squares-service/internal/http/requestutil"
	"github.com/preston-bernstein/squares-service/internal/ledger"
	"github.com/preston-bernstein/squares-service/internal/metrics"
)

// Routes bundles the handlers mounted by NewRouter.
type Routes struct {
	Health *handlers.Handler
	Games  *handlers.GamesHandler
	Admin  *handlers.AdminGuard
}

// NewRouter registers every route on a gorilla/mux router and wraps it with CORS and request logging.
func NewRouter(routes Routes, corsOrigins []string, logger *slog.Logger, recorder *metrics.Recorder) nethttp.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = nethttp.HandlerFunc(handlers.NotFound)
	r.MethodNotAllowedHandler = nethttp.HandlerFunc(handlers.MethodNotAllowed)

	if h := routes.Health; h != nil {
		r.HandleFunc("/health", h.Health).Methods(nethttp.MethodGet)
		r.HandleFunc("/ready", h.Ready).Methods(nethttp.MethodGet)
		r.HandleFunc("/health/competitions", h.Competitions).Methods(nethttp.MethodGet)
		r.HandleFunc("/health/failures", h.Failures).Methods(nethttp.MethodGet)
	}

	if g := routes.Games; g != nil {
		r.HandleFunc("/games", routes.Admin.Wrap(g.Create)).Methods(nethttp.MethodPost)

		r.HandleFunc("/games/{id}", g.Status).Methods(nethttp.MethodGet)
		r.HandleFunc("/games/{id}/tickets", g.Tickets).Methods(nethttp.MethodGet)
		r.HandleFunc("/games/{id}/tickets", g.Purchase).Methods(nethttp.MethodPost)
		r.HandleFunc("/games/{id}/transfers", g.Transfers).Methods(nethttp.MethodGet)
		r.HandleFunc("/games/{id}/finalize", g.Finalize).Methods(nethttp.MethodPost)
		r.HandleFunc("/games/{id}/distribute", g.Distribute).Methods(nethttp.MethodPost)
		r.HandleFunc("/games/{id}/refund", g.Refund).Methods(nethttp.MethodPost)
	}

	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{nethttp.MethodGet, nethttp.MethodPost, nethttp.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", requestutil.HeaderRequestID, ledger.CallerHeader},
		ExposedHeaders: []string{requestutil.HeaderRequestID},
	})

	return middleware.LoggingMiddleware(logger, recorder, c.Handler(r))
}
