package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/squares-service/internal/config"
	"github.com/preston-bernstein/squares-service/internal/health"
	httpserver "github.com/preston-bernstein/squares-service/internal/http"
	"github.com/preston-bernstein/squares-service/internal/http/handlers"
	"github.com/preston-bernstein/squares-service/internal/logging"
	"github.com/preston-bernstein/squares-service/internal/metrics"
	"github.com/preston-bernstein/squares-service/internal/notify"
	"github.com/preston-bernstein/squares-service/internal/pipeline"
	"github.com/preston-bernstein/squares-service/internal/poller"
	"github.com/preston-bernstein/squares-service/internal/tracker"
)

var metricsSetup = metrics.Setup

type Server struct {
	cfg           config.Config
	logger        *slog.Logger
	metrics       *metrics.Recorder
	monitor       *health.Monitor
	httpServer    httpServer
	metricsServer httpServer
	poller        Poller
	metricsStop   func(context.Context) error
	closeBackends func()
}

// New wires the notification pipeline, the ledger and the HTTP surface from cfg.
// Backends that need a connection (redis, postgres, telegram) are dialled here.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	return newServerWithMetrics(ctx, cfg, logger, nil)
}

func newServerWithMetrics(ctx context.Context, cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*Server, error) {
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}
	recorder, metricsSrv, metricsShutdown := buildMetrics(cfg, logger, recorder)

	comps, err := buildComponents(ctx, cfg, logger, recorder)
	if err != nil {
		if metricsShutdown != nil {
			_ = metricsShutdown(context.Background())
		}
		return nil, err
	}

	monitor := health.NewMonitor(0)
	runner := pipeline.NewRunner(pipeline.Config{
		Source:       comps.source,
		Competitions: cfg.Feed.Competitions,
		Tracker:      tracker.New(comps.matchStore, logger, recorder),
		Dispatcher:   notify.NewDispatcher(comps.notifier, comps.resolver, cfg.Notify.BatchSize, logger, recorder),
		Monitor:      monitor,
		Logger:       logger,
	})
	plr := poller.New(runner, logger, recorder, cfg.PollInterval)

	routes := httpserver.Routes{
		Health: handlers.NewHandler(monitor, logger, plr.Status),
		Games:  handlers.NewGamesHandler(comps.ledger, logger),
		Admin:  handlers.NewAdminGuard(cfg.AdminToken, logger),
	}

	return &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       recorder,
		monitor:       monitor,
		httpServer:    buildHTTPServer(cfg, routes, logger, recorder),
		metricsServer: metricsSrv,
		poller:        plr,
		metricsStop:   metricsShutdown,
		closeBackends: func() { comps.close(logger) },
	}, nil
}

// newServerWithDeps is used for testing to inject custom components.
func newServerWithDeps(cfg config.Config, logger *slog.Logger, httpSrv httpServer, plr Poller) *Server {
	return &Server{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpSrv,
		poller:     plr,
	}
}

func buildHTTPServer(cfg config.Config, routes httpserver.Routes, logger *slog.Logger, recorder *metrics.Recorder) httpServer {
	return newNetHTTPServer(cfg.Port, httpserver.NewRouter(routes, cfg.CorsOrigins, logger, recorder))
}

// Run starts the poller and HTTP server, then waits for context cancellation to shut down gracefully.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) {
	s.startMetrics()
	s.startServer(stop)
	s.poller.Start(ctx)

	<-ctx.Done()
	logging.Info(s.logger, "shutdown signal received")

	s.gracefulShutdown()
}

func (s *Server) startServer(stop context.CancelFunc) {
	logging.Info(s.logger, "http server starting", slog.String("addr", s.httpServer.Addr()))
	launchServer("http", s.httpServer, s.logger, func(err error) {
		if stop != nil {
			stop()
		}
	})
}

func (s *Server) startMetrics() {
	if s.metricsServer == nil {
		return
	}
	logging.Info(s.logger, "metrics server starting", slog.String("addr", s.metricsServer.Addr()))
	launchServer("metrics", s.metricsServer, s.logger, nil)
}

func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics shutdown failed", "error", err)
		}
	}

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics server shutdown failed", "error", err)
		}
	}

	if err := s.poller.Stop(shutdownCtx); err != nil {
		logging.Error(s.logger, "failed to stop poller", err)
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error(s.logger, "graceful shutdown failed", err)
	}

	// Backends close after the poller so an in-flight cycle can finish its writes.
	if s.closeBackends != nil {
		s.closeBackends()
	}

	logging.Info(s.logger, "shutdown complete")
}

func buildMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*metrics.Recorder, httpServer, func(context.Context) error) {
	if recorder != nil {
		return recorder, nil, nil
	}

	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		logging.Warn(logger, "metrics setup failed, continuing without telemetry", "err", err)
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil && recCfg.Enabled {
		metricsSrv = newNetHTTPServer(recCfg.Port, handler)
	}

	return rec, metricsSrv, shutdown
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		logging.Info(logger, "starting "+name+" server", slog.String("addr", srv.Addr()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Warn(logger, name+" server failed", "error", err)
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
}
