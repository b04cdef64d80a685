package reconcile

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/preston-bernstein/squares-service/internal/domain/match"
	"github.com/preston-bernstein/squares-service/internal/feed"
	"github.com/preston-bernstein/squares-service/internal/ledger"
)

// LedgerReader is the read side of the ledger API.
type LedgerReader interface {
	Status(ctx context.Context, gameID string) (ledger.Status, error)
	Tickets(ctx context.Context, gameID string) (ledger.Tickets, error)
}

// LedgerWriter issues writes on behalf of a caller. Rejections come back unmodified.
type LedgerWriter interface {
	PurchaseTickets(ctx context.Context, gameID, buyer string, count int, payment decimal.Decimal) ([]int, error)
	Finalize(ctx context.Context, gameID, caller string, squares, percentages []int) error
	Distribute(ctx context.Context, gameID, caller string) ([]ledger.Transfer, error)
	Refund(ctx context.Context, gameID, caller string) ([]ledger.Transfer, error)
}

// MatchSource finds the live snapshot for the match an event id points at.
type MatchSource interface {
	Match(ctx context.Context, id ledger.EventID) (match.Snapshot, bool, error)
}

// FeedMatchSource looks the match up on its league's scoreboard by team abbreviations.
type FeedMatchSource struct {
	feed feed.Source
}

func NewFeedMatchSource(src feed.Source) *FeedMatchSource {
	return &FeedMatchSource{feed: src}
}

func (s *FeedMatchSource) Match(ctx context.Context, id ledger.EventID) (match.Snapshot, bool, error) {
	snaps, err := s.feed.Scoreboard(ctx, id.League)
	if err != nil {
		return match.Snapshot{}, false, err
	}
	for _, snap := range snaps {
		if snap.Involves(id.Home, id.Away) {
			return snap, true, nil
		}
	}
	return match.Snapshot{}, false, nil
}
