package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/preston-bernstein/squares-service/internal/domain/match"
	"github.com/preston-bernstein/squares-service/internal/ledger"
	"github.com/preston-bernstein/squares-service/internal/logging"
)

const defaultPollTimeout = 8 * time.Second

// View is the merged ledger and match state of one game.
type View struct {
	Status    ledger.Status
	Tickets   ledger.Tickets
	Event     ledger.EventID
	Match     *match.Snapshot
	Live      bool
	UpdatedAt time.Time
}

// Config wires a Client.
type Config struct {
	GameID   string
	Ledger   LedgerReader
	Matches  MatchSource
	Activity *Activity
	Timeout  time.Duration
	Logger   *slog.Logger
}

// Client reconciles one game: it polls the ledger and the match feed at a state-dependent
// cadence, records activity from diffs and keeps the last good view across failures.
type Client struct {
	gameID   string
	ledger   LedgerReader
	matches  MatchSource
	activity *Activity
	timeout  time.Duration
	logger   *slog.Logger
	now      func() time.Time
	wait     func(ctx context.Context, d time.Duration) error

	mu   sync.RWMutex
	view *View
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultPollTimeout
	}
	activity := cfg.Activity
	if activity == nil {
		activity = NewActivity(0, nil)
	}
	return &Client{
		gameID:   cfg.GameID,
		ledger:   cfg.Ledger,
		matches:  cfg.Matches,
		activity: activity,
		timeout:  timeout,
		logger:   cfg.Logger,
		now:      time.Now,
		wait:     sleepContext,
	}
}

// View returns the last good view, if any poll has succeeded.
func (c *Client) View() (View, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.view == nil {
		return View{}, false
	}
	return *c.view, true
}

// PollOnce refreshes the view. On failure a transient notification is recorded and
// the previous view is kept.
func (c *Client) PollOnce(ctx context.Context) (View, error) {
	next, err := c.fetch(ctx)
	if err != nil {
		c.activity.Add(c.gameID, KindTransient, fmt.Sprintf("could not refresh game: %v", err))
		logging.Warn(c.logger, "reconcile poll failed", logging.FieldGameID, c.gameID, "error", err)
		prev, _ := c.View()
		return prev, err
	}

	c.mu.Lock()
	prev := c.view
	c.view = &next
	c.mu.Unlock()

	for _, change := range Diff(prev, next) {
		c.activity.Add(c.gameID, change.Kind, change.Message)
	}
	return next, nil
}

// Run polls until the game reaches a terminal state or ctx is cancelled.
func (c *Client) Run(ctx context.Context) error {
	for {
		_, _ = c.PollOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		interval := IdleInterval
		if view, ok := c.View(); ok {
			d, keepGoing := Cadence(view.Status.State, view.Live)
			if !keepGoing {
				logging.Info(c.logger, "reconcile finished",
					logging.FieldGameID, c.gameID,
					"state", string(view.Status.State),
				)
				return nil
			}
			interval = d
		}
		if err := c.wait(ctx, interval); err != nil {
			return err
		}
	}
}

func (c *Client) fetch(ctx context.Context) (View, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	status, err := c.ledger.Status(ctx, c.gameID)
	if err != nil {
		return View{}, fmt.Errorf("status: %w", err)
	}
	tickets, err := c.ledger.Tickets(ctx, c.gameID)
	if err != nil {
		return View{}, fmt.Errorf("tickets: %w", err)
	}

	view := View{Status: status, Tickets: tickets, UpdatedAt: c.now()}
	event, err := ledger.ParseEventID(status.EventID)
	if err != nil {
		logging.Warn(c.logger, "unparseable event id", logging.FieldGameID, c.gameID, "event_id", status.EventID)
		return view, nil
	}
	view.Event = event

	if c.matches == nil {
		return view, nil
	}
	snap, found, err := c.matches.Match(ctx, event)
	if err != nil {
		// Match telemetry is advisory; fall back to the previous liveness.
		logging.Warn(c.logger, "match lookup failed", logging.FieldGameID, c.gameID, "error", err)
		if prev, ok := c.View(); ok {
			view.Match, view.Live = prev.Match, prev.Live
		}
		return view, nil
	}
	if found {
		view.Match = &snap
		view.Live = snap.Status.IsLive()
	}
	return view, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
