package http

import (
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/preston-bernstein/squares-service/internal/health"
	"github.com/preston-bernstein/squares-service/internal/http/handlers"
	"github.com/preston-bernstein/squares-service/internal/ledger"
	"github.com/preston-bernstein/squares-service/internal/metrics"
	"github.com/preston-bernstein/squares-service/internal/testutil"
)

func newTestRouter(origins []string) nethttp.Handler {
	l := ledger.New(ledger.NewMemoryRepository(), ledger.Options{
		Fees: ledger.Fees{CommunityPercent: decimal.NewFromInt(5), Treasury: "treasury"},
	})
	routes := Routes{
		Health: handlers.NewHandler(health.NewMonitor(0), nil, nil),
		Games:  handlers.NewGamesHandler(l, nil),
		Admin:  handlers.NewAdminGuard("token", nil),
	}
	return NewRouter(routes, origins, nil, metrics.NewRecorder())
}

func TestRouterRoutes(t *testing.T) {
	router := newTestRouter(nil)

	cases := []struct {
		method string
		path   string
		want   int
	}{
		{nethttp.MethodGet, "/health", nethttp.StatusOK},
		{nethttp.MethodGet, "/ready", nethttp.StatusOK},
		{nethttp.MethodGet, "/health/competitions", nethttp.StatusOK},
		{nethttp.MethodGet, "/health/failures", nethttp.StatusOK},
		{nethttp.MethodGet, "/games/unknown", nethttp.StatusNotFound},
		{nethttp.MethodGet, "/games/unknown/tickets", nethttp.StatusNotFound},
		{nethttp.MethodGet, "/games/unknown/transfers", nethttp.StatusNotFound},
		{nethttp.MethodPost, "/games", nethttp.StatusUnauthorized},
		{nethttp.MethodPost, "/games/unknown/distribute", nethttp.StatusBadRequest},
		{nethttp.MethodDelete, "/games/unknown", nethttp.StatusMethodNotAllowed},
		{nethttp.MethodGet, "/nope", nethttp.StatusNotFound},
	}
	for _, tc := range cases {
		rr := testutil.Serve(router, tc.method, tc.path, nil)
		if rr.Code != tc.want {
			t.Fatalf("%s %s: expected %d, got %d (%s)", tc.method, tc.path, tc.want, rr.Code, rr.Body.String())
		}
		if rr.Header().Get("X-Request-ID") == "" {
			t.Fatalf("%s %s: expected request id header", tc.method, tc.path)
		}
	}
}

func TestRouterWritesAsCaller(t *testing.T) {
	router := newTestRouter(nil)
	req := httptest.NewRequest(nethttp.MethodPost, "/games/unknown/distribute", nil)
	req.Header.Set(ledger.CallerHeader, "alice")
	testutil.AssertStatus(t, testutil.ServeRequest(router, req), nethttp.StatusNotFound)
}

func TestRouterCORS(t *testing.T) {
	router := newTestRouter([]string{"https://squares.example"})

	req := httptest.NewRequest(nethttp.MethodOptions, "/games/g1/tickets", nil)
	req.Header.Set("Origin", "https://squares.example")
	req.Header.Set("Access-Control-Request-Method", nethttp.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", ledger.CallerHeader)
	rr := testutil.ServeRequest(router, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://squares.example" {
		t.Fatalf("expected allowed origin echoed, got %q", got)
	}

	req = httptest.NewRequest(nethttp.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rr = testutil.ServeRequest(router, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no CORS header for unknown origin, got %q", got)
	}
}
