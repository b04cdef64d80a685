package main

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/preston-bernstein/squares-service/internal/config"
	"github.com/preston-bernstein/squares-service/internal/domain/match"
	httpserver "github.com/preston-bernstein/squares-service/internal/http"
	"github.com/preston-bernstein/squares-service/internal/http/handlers"
	"github.com/preston-bernstein/squares-service/internal/ledger"
	"github.com/preston-bernstein/squares-service/internal/reconcile"
	"github.com/preston-bernstein/squares-service/internal/testutil"
)

type fakeMatches struct {
	snap  match.Snapshot
	found bool
	err   error
}

func (f fakeMatches) Match(context.Context, ledger.EventID) (match.Snapshot, bool, error) {
	return f.snap, f.found, f.err
}

// ledgerServer serves a real ledger over the HTTP API with one game; sold controls how many squares alice holds.
func ledgerServer(t *testing.T, sold int) (*reconcile.HTTPLedger, *ledger.Ledger, string) {
	t.Helper()
	l := ledger.New(ledger.NewMemoryRepository(), ledger.Options{
		Fees: ledger.Fees{CommunityPercent: decimal.NewFromInt(5), Treasury: "treasury"},
	})
	ctx := context.Background()
	g, err := l.CreateGame(ctx, ledger.CreateGameInput{
		EventID:            testutil.SampleEventID,
		Referee:            "ref",
		SquarePrice:        decimal.NewFromInt(10),
		DeployerFeePercent: decimal.NewFromInt(2),
	})
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	if sold > 0 {
		if _, _, err := l.PurchaseTickets(ctx, g.ID, "alice", sold, decimal.NewFromInt(int64(sold*10))); err != nil {
			t.Fatalf("purchase: %v", err)
		}
	}
	router := httpserver.NewRouter(httpserver.Routes{Games: handlers.NewGamesHandler(l, nil)}, nil, nil, nil)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return reconcile.NewHTTPLedger(srv.URL, srv.Client()), l, g.ID
}

func actionConfig(action, viewer, id string) config.WatcherConfig {
	return config.WatcherConfig{Action: action, Viewer: viewer, GameIDs: []string{id}, HalftimeScore: "1-0", FinalScore: "2-1"}
}

func TestRunActionFinalizeThenDistribute(t *testing.T) {
	lc, l, id := ledgerServer(t, ledger.GridSize)
	logger, buf := testutil.NewBufferLogger()

	if err := runAction(t.Context(), actionConfig("finalize", "ref", id), lc, fakeMatches{}, logger); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	status, _ := l.Status(t.Context(), id)
	if len(status.WinningSquares) != 2 || status.WinningSquares[0] != 5 || status.WinningSquares[1] != 11 {
		t.Fatalf("expected halftime then final square, got %v", status.WinningSquares)
	}
	if status.WinnerPercentages[0] != 50 || status.WinnerPercentages[1] != 50 {
		t.Fatalf("expected even split, got %v", status.WinnerPercentages)
	}

	if err := runAction(t.Context(), actionConfig("distribute", "alice", id), lc, fakeMatches{}, logger); err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if status, _ := l.Status(t.Context(), id); status.State != ledger.StateSettled {
		t.Fatalf("expected settled, got %s", status.State)
	}
	if !strings.Contains(buf.String(), "prizes distributed") || !strings.Contains(buf.String(), "total=250") {
		t.Fatalf("expected distribution logged with full pool, got %s", buf.String())
	}
}

func TestRunActionLogsHintOnRefereeRejection(t *testing.T) {
	lc, _, id := ledgerServer(t, ledger.GridSize)
	logger, buf := testutil.NewBufferLogger()

	err := runAction(t.Context(), actionConfig("finalize", "alice", id), lc, fakeMatches{}, logger)
	re, ok := reconcile.AsRejectionError(err)
	if !ok || re.Code != "not_referee" {
		t.Fatalf("expected not_referee rejection, got %v", err)
	}
	if !strings.Contains(buf.String(), "only the game's referee") {
		t.Fatalf("expected hint logged, got %s", buf.String())
	}
}

func TestRunActionRefundOpenGame(t *testing.T) {
	lc, l, id := ledgerServer(t, 3)
	if err := runAction(t.Context(), actionConfig("refund", "ref", id), lc, fakeMatches{}, nil); err != nil {
		t.Fatalf("refund: %v", err)
	}
	if status, _ := l.Status(t.Context(), id); status.State != ledger.StateRefunded {
		t.Fatalf("expected refunded, got %s", status.State)
	}
}

func TestRunActionReadsFinalScoreFromFeed(t *testing.T) {
	lc, l, id := ledgerServer(t, ledger.GridSize)
	cfg := actionConfig("finalize", "ref", id)
	cfg.FinalScore = ""
	cfg.WinnerPercentages = []int{40, 60}

	live := fakeMatches{snap: testutil.SampleSnapshot("m1", "in", 3, 1), found: true}
	if err := runAction(t.Context(), cfg, lc, live, nil); err == nil {
		t.Fatalf("expected unfinished match to block finalize")
	}

	done := fakeMatches{snap: testutil.SampleSnapshot("m1", "post", 3, 1), found: true}
	if err := runAction(t.Context(), cfg, lc, done, nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	status, _ := l.Status(t.Context(), id)
	if len(status.WinningSquares) != 2 || status.WinningSquares[1] != 16 || status.WinnerPercentages[1] != 60 {
		t.Fatalf("unexpected finalize %v %v", status.WinningSquares, status.WinnerPercentages)
	}

	lookupErr := fakeMatches{err: errors.New("feed down")}
	if _, _, err := winningSquares(t.Context(), cfg, id, lc, lookupErr); err == nil {
		t.Fatalf("expected feed error")
	}
}

func TestRunActionValidatesInput(t *testing.T) {
	lc, _, id := ledgerServer(t, ledger.GridSize)
	if err := runAction(t.Context(), actionConfig("finalize", "", id), lc, fakeMatches{}, nil); err == nil {
		t.Fatalf("expected missing viewer error")
	}
	if err := runAction(t.Context(), actionConfig("settle", "ref", id), lc, fakeMatches{}, nil); err == nil {
		t.Fatalf("expected unknown action error")
	}
	cfg := actionConfig("finalize", "ref", id)
	cfg.WinnerPercentages = []int{100}
	if err := runAction(t.Context(), cfg, lc, fakeMatches{}, nil); err == nil {
		t.Fatalf("expected percentage count mismatch")
	}
	cfg = actionConfig("finalize", "ref", id)
	cfg.HalftimeScore = "one-nil"
	if err := runAction(t.Context(), cfg, lc, fakeMatches{}, nil); err == nil {
		t.Fatalf("expected bad halftime score")
	}
}

func TestParseScore(t *testing.T) {
	cases := []struct {
		raw  string
		want match.Score
		ok   bool
	}{
		{"2-1", match.Score{Home: 2, Away: 1}, true},
		{" 0 - 3 ", match.Score{Home: 0, Away: 3}, true},
		{"2:1", match.Score{}, false},
		{"-1-0", match.Score{}, false},
		{"", match.Score{}, false},
	}
	for _, tc := range cases {
		got, err := parseScore(tc.raw)
		if (err == nil) != tc.ok || got != tc.want {
			t.Fatalf("parseScore(%q) = %+v, %v", tc.raw, got, err)
		}
	}
}

func TestEvenSplit(t *testing.T) {
	if got := evenSplit(1); len(got) != 1 || got[0] != 100 {
		t.Fatalf("unexpected single split %v", got)
	}
	if got := evenSplit(3); len(got) != 3 || got[2] != 33 {
		t.Fatalf("unexpected triple split %v", got)
	}
	if evenSplit(0) != nil {
		t.Fatalf("expected nil for no winners")
	}
}
