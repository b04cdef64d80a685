package reconcile

import (
	"time"

	"github.com/preston-bernstein/squares-service/internal/ledger"
)

const (
	FullInterval = 10 * time.Second
	LiveInterval = 5 * time.Second
	IdleInterval = 30 * time.Second
)

// Cadence returns the delay before the next poll, or false when polling should stop.
// A full game waiting on the referee keeps the 10s cadence even while the match is live.
func Cadence(state ledger.State, live bool) (time.Duration, bool) {
	switch {
	case state == ledger.StateSettled, state == ledger.StateRefunded:
		return 0, false
	case state == ledger.StateFull:
		return FullInterval, true
	case live:
		return LiveInterval, true
	}
	return IdleInterval, true
}
