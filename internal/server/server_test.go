package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/preston-bernstein/squares-service/internal/config"
	"github.com/preston-bernstein/squares-service/internal/ledger"
	"github.com/preston-bernstein/squares-service/internal/metrics"
	"github.com/preston-bernstein/squares-service/internal/poller"
	"github.com/preston-bernstein/squares-service/internal/testutil"
)

type stubPoller struct {
	started  atomic.Int32
	stopped  atomic.Int32
	stopErr  error
	statusFn func() poller.Status
}

func (p *stubPoller) Start(ctx context.Context) { p.started.Add(1) }

func (p *stubPoller) Stop(ctx context.Context) error {
	p.stopped.Add(1)
	return p.stopErr
}

func (p *stubPoller) Status() poller.Status {
	if p.statusFn != nil {
		return p.statusFn()
	}
	return poller.Status{}
}

func quietLogger() *slog.Logger {
	logger, _ := testutil.NewBufferLogger()
	return logger
}

func localConfig() config.Config {
	return config.Config{
		Port:         "0",
		PollInterval: time.Hour,
		AdminToken:   "secret",
		CorsOrigins:  []string{"*"},
		Feed:         config.FeedConfig{Provider: "fixture", Competitions: []string{"eng.1"}},
		Notify:       config.NotifyConfig{Transport: "log", BatchSize: 40},
		MatchState:   config.MatchStateConfig{Backend: "memory"},
		Ledger:       config.LedgerConfig{Backend: "memory", CommunityFeePercent: 1, Treasury: "treasury"},
	}
}

func TestNewWiresLedgerAndHealthRoutes(t *testing.T) {
	srv, err := newServerWithMetrics(t.Context(), localConfig(), quietLogger(), metrics.NewRecorder())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	h := srv.Handler()

	testutil.AssertStatus(t, testutil.Serve(h, http.MethodGet, "/health", nil), http.StatusOK)
	testutil.AssertStatus(t, testutil.Serve(h, http.MethodGet, "/health/competitions", nil), http.StatusOK)
	testutil.AssertStatus(t, testutil.Serve(h, http.MethodGet, "/games/missing", nil), http.StatusNotFound)

	in := ledger.CreateGameInput{
		EventID:            testutil.SampleEventID,
		Referee:            "ref",
		SquarePrice:        decimal.NewFromInt(10),
		DeployerFeePercent: decimal.NewFromInt(2),
	}
	unauthorized := testutil.JSONRequest(t, http.MethodPost, "/games", in, nil)
	testutil.AssertStatus(t, testutil.ServeRequest(h, unauthorized), http.StatusUnauthorized)

	create := testutil.JSONRequest(t, http.MethodPost, "/games", in, map[string]string{"Authorization": "Bearer secret"})
	rr := testutil.ServeRequest(h, create)
	testutil.AssertStatus(t, rr, http.StatusCreated)
	var status ledger.Status
	testutil.DecodeJSON(t, rr, &status)
	testutil.AssertStatus(t, testutil.Serve(h, http.MethodGet, "/games/"+status.ID, nil), http.StatusOK)
}

func TestNewPollerCycleFeedsHealthMonitor(t *testing.T) {
	srv, err := newServerWithMetrics(t.Context(), localConfig(), nil, metrics.NewRecorder())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ctx, cancel := context.WithCancel(t.Context())
	srv.poller.Start(ctx)
	defer func() {
		cancel()
		_ = srv.poller.Stop(context.Background())
	}()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if comps := srv.monitor.Competitions(); len(comps) == 1 && comps[0].OK {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected first cycle to record eng.1, got %+v", srv.monitor.Competitions())
}

func TestNewFailsOnBackendError(t *testing.T) {
	cfg := localConfig()
	cfg.Notify.Transport = "webhook"
	if _, err := newServerWithMetrics(t.Context(), cfg, nil, metrics.NewRecorder()); err == nil {
		t.Fatalf("expected webhook without url to fail")
	}
}

func TestRunShutsDownOnCancel(t *testing.T) {
	httpSrv := &testutil.StubHTTPServer{AddrVal: ":0", HandlerVal: http.NewServeMux()}
	plr := &stubPoller{}
	srv := newServerWithDeps(localConfig(), quietLogger(), httpSrv, plr)
	var closed atomic.Bool
	srv.closeBackends = func() { closed.Store(true) }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	srv.Run(ctx, nil)

	if plr.started.Load() != 1 || plr.stopped.Load() != 1 {
		t.Fatalf("expected poller start/stop once, got %d/%d", plr.started.Load(), plr.stopped.Load())
	}
	if httpSrv.ShutdownCalls.Load() != 1 {
		t.Fatalf("expected http shutdown, got %d", httpSrv.ShutdownCalls.Load())
	}
	if !closed.Load() {
		t.Fatalf("expected backends closed")
	}
}

func TestGracefulShutdownToleratesErrors(t *testing.T) {
	httpSrv := &testutil.StubHTTPServer{ShutdownErr: errors.New("boom")}
	metricsSrv := &testutil.StubHTTPServer{ShutdownErr: errors.New("boom")}
	srv := newServerWithDeps(localConfig(), quietLogger(), httpSrv, &stubPoller{stopErr: errors.New("boom")})
	srv.metricsServer = metricsSrv
	srv.metricsStop = func(context.Context) error { return errors.New("boom") }

	srv.gracefulShutdown()

	if httpSrv.ShutdownCalls.Load() != 1 || metricsSrv.ShutdownCalls.Load() != 1 {
		t.Fatalf("expected both servers shut down, got %d/%d", httpSrv.ShutdownCalls.Load(), metricsSrv.ShutdownCalls.Load())
	}
}

func TestGracefulShutdownTimesOutBlockedServer(t *testing.T) {
	orig := shutdownTimeout
	shutdownTimeout = 20 * time.Millisecond
	t.Cleanup(func() { shutdownTimeout = orig })

	blocking := &testutil.BlockingHTTPServer{Unblock: make(chan struct{})}
	srv := newServerWithDeps(localConfig(), nil, blocking, &stubPoller{})

	done := make(chan struct{})
	go func() {
		srv.gracefulShutdown()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("shutdown did not honour timeout")
	}
	if blocking.ShutdownCalls.Load() != 1 {
		t.Fatalf("expected one shutdown call")
	}
}

func TestStartServerStopsOnListenError(t *testing.T) {
	srv := newServerWithDeps(localConfig(), nil, &testutil.StubHTTPServer{ListenErr: errors.New("bind: address in use")}, &stubPoller{})
	stopped := make(chan struct{})
	srv.startServer(func() { close(stopped) })

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatalf("expected stop after listen failure")
	}
}

func TestStartServerIgnoresServerClosed(t *testing.T) {
	srv := newServerWithDeps(localConfig(), nil, &testutil.StubHTTPServer{ListenErr: http.ErrServerClosed}, &stubPoller{})
	var stopped atomic.Bool
	srv.startServer(func() { stopped.Store(true) })
	time.Sleep(20 * time.Millisecond)
	if stopped.Load() {
		t.Fatalf("ErrServerClosed must not trigger stop")
	}
}

func TestBuildMetricsUsesProvidedRecorder(t *testing.T) {
	rec := metrics.NewRecorder()
	got, srv, shutdown := buildMetrics(localConfig(), nil, rec)
	if got != rec || srv != nil || shutdown != nil {
		t.Fatalf("expected passthrough recorder")
	}
}

func TestBuildMetricsFallsBackOnSetupError(t *testing.T) {
	orig := metricsSetup
	metricsSetup = func(context.Context, metrics.TelemetryConfig) (*metrics.Recorder, http.Handler, func(context.Context) error, error) {
		return nil, nil, nil, errors.New("exporter down")
	}
	t.Cleanup(func() { metricsSetup = orig })

	rec, srv, shutdown := buildMetrics(localConfig(), quietLogger(), nil)
	if rec == nil || srv != nil || shutdown != nil {
		t.Fatalf("expected bare recorder fallback")
	}
}

func TestBuildMetricsStartsServerWhenEnabled(t *testing.T) {
	orig := metricsSetup
	metricsSetup = func(context.Context, metrics.TelemetryConfig) (*metrics.Recorder, http.Handler, func(context.Context) error, error) {
		return metrics.NewRecorder(), http.NewServeMux(), func(context.Context) error { return nil }, nil
	}
	t.Cleanup(func() { metricsSetup = orig })

	cfg := localConfig()
	cfg.Metrics = config.MetricsConfig{Enabled: true, Port: "9091"}
	_, srv, shutdown := buildMetrics(cfg, nil, nil)
	if srv == nil || srv.Addr() != ":9091" || shutdown == nil {
		t.Fatalf("expected metrics server on :9091")
	}
}
