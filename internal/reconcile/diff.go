package reconcile

import (
	"fmt"
	"strings"

	"github.com/preston-bernstein/squares-service/internal/ledger"
)

// Change is one synthesized activity line.
type Change struct {
	Kind    Kind
	Message string
}

// Diff compares two ledger snapshots of the same game. A nil prev means first load,
// which produces no changes.
func Diff(prev *View, next View) []Change {
	if prev == nil {
		return nil
	}
	var out []Change
	before, after := prev.Status, next.Status

	if sold := after.TicketsSold - before.TicketsSold; sold > 0 {
		noun := "tickets"
		if sold == 1 {
			noun = "ticket"
		}
		out = append(out, Change{KindTickets, fmt.Sprintf("%d new %s sold", sold, noun)})
	}
	if before.TicketsSold < ledger.GridSize && after.TicketsSold == ledger.GridSize {
		out = append(out, Change{KindSoldOut, "sold out"})
	}
	if len(before.WinningSquares) == 0 && len(after.WinningSquares) > 0 {
		out = append(out, Change{KindWinners, "winners announced: squares " + joinInts(after.WinningSquares)})
	}
	if !before.PrizeClaimed && after.PrizeClaimed {
		out = append(out, Change{KindSettled, "prizes distributed"})
	}
	if !before.Refunded && after.Refunded {
		out = append(out, Change{KindRefunded, "game refunded"})
	}
	if !prev.Live && next.Live {
		out = append(out, Change{KindMatch, "match is live"})
	}
	return out
}

func joinInts(in []int) string {
	parts := make([]string, len(in))
	for i, v := range in {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}
