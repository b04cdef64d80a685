package ledger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/preston-bernstein/squares-service/internal/testutil"
)

const testEventID = "eng.1_ARS_CHE_20240102150000"

func dec(t *testing.T, v string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(v)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", v, err)
	}
	return d
}

func openGame(price string) Game {
	return Game{
		ID:                 "g1",
		EventID:            testEventID,
		Referee:            "ref",
		Deployer:           "deployer",
		SquarePrice:        decimal.RequireFromString(price),
		DeployerFeePercent: decimal.NewFromInt(2),
		Active:             true,
		CreatedAt:          time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func fullGame(price string) Game {
	g := openGame(price)
	for i := range g.Owners {
		g.Owners[i] = fmt.Sprintf("player-%d", i)
	}
	return g
}

func newTestLedger(t *testing.T, repo Repository) *Ledger {
	t.Helper()
	l := New(repo, Options{
		Fees: Fees{CommunityPercent: decimal.NewFromInt(5), Treasury: "treasury"},
		Picker: func(free []int, count int) []int {
			return append([]int(nil), free[:count]...)
		},
	})
	seq := 0
	l.newID = func() string {
		seq++
		return fmt.Sprintf("game-%d", seq)
	}
	l.now = testutil.NowAt(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	return l
}

func createGame(t *testing.T, l *Ledger, price string) Game {
	t.Helper()
	g, err := l.CreateGame(context.Background(), CreateGameInput{
		EventID:            testEventID,
		Referee:            "ref",
		Deployer:           "deployer",
		SquarePrice:        dec(t, price),
		DeployerFeePercent: decimal.NewFromInt(2),
	})
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	return g
}

func sumAmounts(transfers []Transfer) decimal.Decimal {
	total := decimal.Zero
	for _, tr := range transfers {
		total = total.Add(tr.Amount)
	}
	return total
}

func expectReason(t *testing.T, err error, reason error) {
	t.Helper()
	pe, ok := AsPreconditionError(err)
	if !ok {
		t.Fatalf("expected PreconditionError(%v), got %v", reason, err)
	}
	if pe.Reason != reason {
		t.Fatalf("expected reason %v, got %v", reason, pe.Reason)
	}
}
