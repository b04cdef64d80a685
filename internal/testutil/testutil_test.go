package testutil

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestClockHelpers(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if got := NowAt(now)(); !got.Equal(now) {
		t.Fatalf("expected fixed time, got %v", got)
	}
	if !MustParseRFC3339(now.Format(time.RFC3339)).Equal(now) {
		t.Fatalf("expected parse round trip")
	}
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic on invalid RFC3339")
		}
	}()
	MustParseRFC3339("not-a-time")
}

func TestFixturesHelper(t *testing.T) {
	s := SampleSnapshot("m1", "in", 2, 1)
	if s.ID != "m1" || s.Home.Abbreviation != "ARS" || s.Score().Home != 2 || s.Score().Away != 1 {
		t.Fatalf("unexpected snapshot fixture %+v", s)
	}
	if !s.Status.IsLive() {
		t.Fatalf("expected live snapshot")
	}
}

func TestServeHelpers(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Caller") != "" {
			w.Header().Set("X-Seen-Caller", r.Header.Get("X-Caller"))
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	rr := Serve(handler, http.MethodPost, "/test", strings.NewReader("{}"))
	AssertStatus(t, rr, http.StatusCreated)
	var body map[string]bool
	DecodeJSON(t, rr, &body)
	if !body["ok"] {
		t.Fatalf("expected ok=true")
	}

	req := JSONRequest(t, http.MethodPost, "/req", map[string]int{"count": 2}, map[string]string{"X-Caller": "alice"})
	if req.Header.Get("Content-Type") != "application/json" {
		t.Fatalf("expected json content type")
	}
	rr2 := ServeRequest(handler, req)
	AssertStatus(t, rr2, http.StatusCreated)
	if rr2.Header().Get("X-Seen-Caller") != "alice" {
		t.Fatalf("expected caller header forwarded")
	}
}

func TestServerStubs(t *testing.T) {
	sh := &StubHTTPServer{ListenErr: http.ErrServerClosed, ShutdownErr: errors.New("down"), AddrVal: ":0"}
	if err := sh.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		t.Fatalf("expected configured listen error, got %v", err)
	}
	if err := sh.Shutdown(context.Background()); err == nil {
		t.Fatalf("expected shutdown error")
	}
	if sh.ListenCalls.Load() != 1 || sh.ShutdownCalls.Load() != 1 || sh.Addr() != ":0" {
		t.Fatalf("unexpected stub state")
	}

	b := &BlockingHTTPServer{Unblock: make(chan struct{})}
	done := make(chan error, 1)
	go func() { done <- b.Shutdown(context.Background()) }()
	close(b.Unblock)
	if err := <-done; err != nil {
		t.Fatalf("expected nil shutdown err, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := (&BlockingHTTPServer{Unblock: make(chan struct{})}).Shutdown(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}

func TestLoggerAndMetricsHelpers(t *testing.T) {
	logger, buf := NewBufferLogger()
	logger.Info("hello", "k", "v")
	if buf.Len() == 0 {
		t.Fatalf("expected buffered log output")
	}
	rec, shutdown := NewRecorderWithShutdown()
	if rec == nil || shutdown == nil {
		t.Fatalf("expected recorder and shutdown")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("expected nil shutdown error, got %v", err)
	}
}
