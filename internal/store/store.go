package store

import (
	"context"
	"errors"

	"github.com/preston-bernstein/squares-service/internal/domain/match"
)

// ErrUnknownPhase is returned when a phase outside kickoff/halftime/fulltime is marked.
var ErrUnknownPhase = errors.New("store: unknown phase")

// MatchStateStore persists per-match notification flags and the last seen score.
// Writes are conditional so that concurrent observers of the same match agree on a single winner.
type MatchStateStore interface {
	LoadFlags(ctx context.Context, matchID string) (match.Flags, error)
	// MarkPhase sets the phase flag if it is not already set and reports whether this call set it.
	// It can report true together with an error when the flag was written but a follow-up step failed.
	MarkPhase(ctx context.Context, matchID string, phase match.Phase) (bool, error)
	LoadScore(ctx context.Context, matchID string) (match.Score, bool, error)
	// CompareAndSwapScore stores next only when the current record equals prev
	// (prev == nil means no record yet) and reports whether it did.
	CompareAndSwapScore(ctx context.Context, matchID string, prev *match.Score, next match.Score) (bool, error)
}

func validPhase(p match.Phase) bool {
	switch p {
	case match.PhaseKickoff, match.PhaseHalftime, match.PhaseFulltime:
		return true
	}
	return false
}
