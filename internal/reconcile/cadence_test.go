package reconcile

import (
	"testing"
	"time"

	"github.com/preston-bernstein/squares-service/internal/ledger"
)

func TestCadence(t *testing.T) {
	cases := []struct {
		state ledger.State
		live  bool
		want  time.Duration
		keep  bool
	}{
		{ledger.StateSettled, true, 0, false},
		{ledger.StateRefunded, false, 0, false},
		{ledger.StateFull, true, 10 * time.Second, true},
		{ledger.StateFull, false, 10 * time.Second, true},
		{ledger.StateOpen, true, 5 * time.Second, true},
		{ledger.StateOpen, false, 30 * time.Second, true},
	}
	for _, tc := range cases {
		got, keep := Cadence(tc.state, tc.live)
		if got != tc.want || keep != tc.keep {
			t.Fatalf("Cadence(%s, %v) = %s %v, want %s %v", tc.state, tc.live, got, keep, tc.want, tc.keep)
		}
	}
}
