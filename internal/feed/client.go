package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/preston-bernstein/squares-service/internal/domain/match"
	"github.com/preston-bernstein/squares-service/internal/metrics"
)

// Source yields the current snapshots for one competition.
type Source interface {
	Scoreboard(ctx context.Context, competition string) ([]match.Snapshot, error)
}

// Config controls how the client reaches the scoreboard API.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Retries    int
	Timeout    time.Duration
	Backoff    time.Duration
	Logger     *slog.Logger
	Metrics    *metrics.Recorder
}

// Client fetches competition scoreboards and maps them to match snapshots.
type Client struct {
	baseURL    string
	httpClient httpDoer
	opts       Options
	metrics    *metrics.Recorder
}

// NewClient constructs a scoreboard client with the provided configuration.
func NewClient(cfg Config) *Client {
	var doer httpDoer
	if cfg.HTTPClient != nil {
		doer = cfg.HTTPClient
	}
	return &Client{
		baseURL:    normalizeBaseURL(cfg.BaseURL),
		httpClient: resolveHTTPClient(doer),
		opts: Options{
			Retries: cfg.Retries,
			Timeout: cfg.Timeout,
			Backoff: cfg.Backoff,
			Logger:  cfg.Logger,
		},
		metrics: cfg.Metrics,
	}
}

// Scoreboard fetches {base}/{competition}/scoreboard and maps every event.
func (c *Client) Scoreboard(ctx context.Context, competition string) ([]match.Snapshot, error) {
	competition = strings.TrimSpace(competition)
	if competition == "" {
		return nil, fmt.Errorf("feed: competition is required")
	}

	opts := c.opts
	opts.OnAttempt = func(_ int, took time.Duration, err error) {
		c.metrics.RecordFeedAttempt(competition, took, err)
	}

	raw, err := Fetch(ctx, c.httpClient, c.scoreboardURL(competition), opts)
	if err != nil {
		return nil, err
	}

	var payload scoreboardResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &DataShapeError{Competition: competition, Field: "scoreboard: " + err.Error()}
	}
	return mapScoreboard(competition, payload)
}

// Match returns the snapshot with the given id, or false when the scoreboard does not list it.
func (c *Client) Match(ctx context.Context, competition, id string) (match.Snapshot, bool, error) {
	snaps, err := c.Scoreboard(ctx, competition)
	if err != nil {
		return match.Snapshot{}, false, err
	}
	for _, snap := range snaps {
		if snap.ID == id {
			return snap, true, nil
		}
	}
	return match.Snapshot{}, false, nil
}

func (c *Client) scoreboardURL(competition string) string {
	return c.baseURL + "/" + url.PathEscape(competition) + "/scoreboard"
}
