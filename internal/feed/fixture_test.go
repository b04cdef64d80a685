package feed

import (
	"context"
	"testing"

	"github.com/preston-bernstein/squares-service/internal/domain/match"
)

func TestFixtureWalksStepsAndHoldsLast(t *testing.T) {
	f := NewFixture()
	ctx := context.Background()

	var last []match.Snapshot
	for i := 0; i < 7; i++ {
		snaps, err := f.Scoreboard(ctx, "eng.1")
		if err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		if len(snaps) != 1 {
			t.Fatalf("expected one snapshot, got %d", len(snaps))
		}
		last = snaps
	}
	if !last[0].Status.IsFinished() || last[0].Home.Score != 1 {
		t.Fatalf("expected final step, got %+v", last[0])
	}
}

func TestFixtureUnknownCompetitionIsEmpty(t *testing.T) {
	snaps, err := NewFixture().Scoreboard(context.Background(), "ger.1")
	if err != nil || len(snaps) != 0 {
		t.Fatalf("expected empty scoreboard, got %v %v", snaps, err)
	}
}

func TestFixtureHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewFixture().Scoreboard(ctx, "eng.1"); err == nil {
		t.Fatalf("expected context error")
	}
}
