package tracker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/preston-bernstein/squares-service/internal/domain/match"
	"github.com/preston-bernstein/squares-service/internal/logging"
	"github.com/preston-bernstein/squares-service/internal/metrics"
	"github.com/preston-bernstein/squares-service/internal/store"
)

// Tracker turns successive match snapshots into phase and goal events.
// An event is returned only to the caller whose conditional store write succeeded.
type Tracker struct {
	store   store.MatchStateStore
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// New constructs a Tracker over the given state store.
func New(st store.MatchStateStore, logger *slog.Logger, recorder *metrics.Recorder) *Tracker {
	return &Tracker{store: st, logger: logger, metrics: recorder}
}

// Observe compares snap with the stored state for its match and returns the events it implies.
// Phases are checked in kickoff, halftime, fulltime order, followed by the score.
func (t *Tracker) Observe(ctx context.Context, snap match.Snapshot) ([]match.Event, error) {
	if snap.ID == "" {
		return nil, fmt.Errorf("tracker: snapshot without match id")
	}

	flags, err := t.store.LoadFlags(ctx, snap.ID)
	if err != nil {
		return nil, fmt.Errorf("load flags %s: %w", snap.ID, err)
	}

	var events []match.Event
	phases := []struct {
		phase  match.Phase
		kind   match.EventKind
		active bool
	}{
		{match.PhaseKickoff, match.EventKickoff, snap.Status.IsLive()},
		{match.PhaseHalftime, match.EventHalftime, snap.Status.IsHalftime()},
		{match.PhaseFulltime, match.EventFulltime, snap.Status.IsFinished()},
	}
	for _, p := range phases {
		if !p.active || flags.Has(p.phase) {
			continue
		}
		won, err := t.store.MarkPhase(ctx, snap.ID, p.phase)
		// A won flag is persisted even when the store also reports an error,
		// so the event must be returned now or it is never sent.
		if won {
			events = append(events, t.emit(match.NewEvent(p.kind, snap)))
		}
		if err != nil {
			return events, fmt.Errorf("mark %s %s: %w", p.phase, snap.ID, err)
		}
	}

	goal, err := t.observeScore(ctx, snap)
	if err != nil {
		return events, err
	}
	if goal != nil {
		events = append(events, t.emit(*goal))
	}
	return events, nil
}

func (t *Tracker) observeScore(ctx context.Context, snap match.Snapshot) (*match.Event, error) {
	current := snap.Score()
	prev, ok, err := t.store.LoadScore(ctx, snap.ID)
	if err != nil {
		return nil, fmt.Errorf("load score %s: %w", snap.ID, err)
	}

	if !ok {
		// First sighting seeds the record without a goal.
		if _, err := t.store.CompareAndSwapScore(ctx, snap.ID, nil, current); err != nil {
			return nil, fmt.Errorf("seed score %s: %w", snap.ID, err)
		}
		return nil, nil
	}
	if prev == current {
		return nil, nil
	}
	if current.Home < prev.Home || current.Away < prev.Away {
		logging.Warn(t.logger, "score decreased, ignoring",
			logging.FieldMatchID, snap.ID,
			logging.FieldCompetition, snap.Competition,
			"previous", fmt.Sprintf("%d-%d", prev.Home, prev.Away),
			"current", fmt.Sprintf("%d-%d", current.Home, current.Away),
		)
		return nil, nil
	}

	swapped, err := t.store.CompareAndSwapScore(ctx, snap.ID, &prev, current)
	if err != nil {
		return nil, fmt.Errorf("swap score %s: %w", snap.ID, err)
	}
	if !swapped {
		return nil, nil
	}

	ev := match.NewEvent(match.EventGoal, snap)
	if detail, ok := match.LatestDetail(snap.Details); ok {
		ev.Clock = detail.Clock
		if len(detail.Participants) > 0 {
			ev.Scorer = detail.Participants[0]
		}
	}
	return &ev, nil
}

func (t *Tracker) emit(ev match.Event) match.Event {
	t.metrics.RecordMatchEvent(string(ev.Kind))
	logging.Info(t.logger, "match event",
		logging.FieldEvent, string(ev.Kind),
		logging.FieldMatchID, ev.MatchID,
		logging.FieldCompetition, ev.Competition,
	)
	return ev
}
