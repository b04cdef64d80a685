package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/preston-bernstein/squares-service/internal/domain/match"
	"github.com/preston-bernstein/squares-service/internal/feed"
	"github.com/preston-bernstein/squares-service/internal/health"
	"github.com/preston-bernstein/squares-service/internal/logging"
)

// Observer turns a snapshot into the events it triggers.
type Observer interface {
	Observe(ctx context.Context, snap match.Snapshot) ([]match.Event, error)
}

// EventDispatcher pushes one event to everyone interested in it.
type EventDispatcher interface {
	DispatchEvent(ctx context.Context, ev match.Event) int
}

// ErrAllCompetitionsFailed is returned when no competition could be polled in a cycle.
var ErrAllCompetitionsFailed = errors.New("every competition failed")

// Runner executes one poll cycle over all configured competitions.
type Runner struct {
	source       feed.Source
	competitions []string
	tracker      Observer
	dispatcher   EventDispatcher
	monitor      *health.Monitor
	logger       *slog.Logger
}

// Config wires a Runner. Monitor and Logger are optional.
type Config struct {
	Source       feed.Source
	Competitions []string
	Tracker      Observer
	Dispatcher   EventDispatcher
	Monitor      *health.Monitor
	Logger       *slog.Logger
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		source:       cfg.Source,
		competitions: cfg.Competitions,
		tracker:      cfg.Tracker,
		dispatcher:   cfg.Dispatcher,
		monitor:      cfg.Monitor,
		logger:       cfg.Logger,
	}
}

// Cycle polls every competition in parallel. A failing competition does not stop the others;
// the cycle only errors when all of them failed.
func (r *Runner) Cycle(ctx context.Context) error {
	if len(r.competitions) == 0 {
		return nil
	}
	errs := make([]error, len(r.competitions))

	var g errgroup.Group
	for i, competition := range r.competitions {
		g.Go(func() error {
			errs[i] = r.runCompetition(ctx, competition)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	if failed == len(r.competitions) {
		return fmt.Errorf("%w: %w", ErrAllCompetitionsFailed, errors.Join(errs...))
	}
	return nil
}

func (r *Runner) runCompetition(ctx context.Context, competition string) error {
	start := time.Now()
	snaps, err := r.source.Scoreboard(ctx, competition)
	if err != nil {
		r.monitor.RecordFailure(competition, err)
		logging.Error(r.logger, "scoreboard poll failed", err, logging.FieldCompetition, competition)
		return fmt.Errorf("%s: %w", competition, err)
	}
	r.monitor.RecordSuccess(competition, snaps)

	emitted := 0
	for _, snap := range snaps {
		if ctx.Err() != nil {
			return nil
		}
		// Observe may return events it already committed alongside an error.
		events, err := r.tracker.Observe(ctx, snap)
		for _, ev := range events {
			r.dispatcher.DispatchEvent(ctx, ev)
			emitted++
		}
		if err != nil {
			r.monitor.RecordError("tracker:"+snap.ID, err)
			logging.Error(r.logger, "match tracking failed", err,
				logging.FieldCompetition, competition,
				logging.FieldMatchID, snap.ID,
			)
		}
	}

	logging.Debug(r.logger, "competition polled",
		logging.FieldCompetition, competition,
		logging.FieldCount, len(snaps),
		"events", emitted,
		logging.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	return nil
}
