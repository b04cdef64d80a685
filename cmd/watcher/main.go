package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/preston-bernstein/squares-service/internal/config"
	"github.com/preston-bernstein/squares-service/internal/feed"
	"github.com/preston-bernstein/squares-service/internal/logging"
	"github.com/preston-bernstein/squares-service/internal/reconcile"
)

const appVersion = "dev"

func main() {
	if os.Getenv("SKIP_WATCHER_RUN") == "1" {
		return
	}
	_ = godotenv.Load()

	cfg := config.LoadWatcher()
	logger := logging.NewLogger(logging.Config{
		Level:   os.Getenv("LOG_LEVEL"),
		Format:  os.Getenv("LOG_FORMAT"),
		Service: "squares-watcher",
		Version: appVersion,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logging.Error(logger, "watcher failed", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.WatcherConfig, logger *slog.Logger) error {
	if len(cfg.GameIDs) == 0 {
		logging.Warn(logger, "no games to watch, set WATCH_GAMES")
		return nil
	}

	lc := reconcile.NewHTTPLedger(cfg.LedgerURL, nil)
	matches := reconcile.NewFeedMatchSource(matchFeed(cfg.Feed, logger))
	if cfg.Action != "" {
		return runAction(ctx, cfg, lc, matches, logger)
	}
	activity := reconcile.NewActivity(0, func(n reconcile.Notification) {
		logging.Info(logger, n.Message,
			slog.String(logging.FieldGameID, n.GameID),
			slog.String(logging.FieldEvent, string(n.Kind)),
		)
	})

	clients := make(map[string]*reconcile.Client, len(cfg.GameIDs))
	scheduler := reconcile.NewScheduler()
	for _, id := range cfg.GameIDs {
		client := reconcile.NewClient(reconcile.Config{
			GameID:   id,
			Ledger:   lc,
			Matches:  matches,
			Activity: activity,
			Timeout:  cfg.PollTimeout,
			Logger:   logger,
		})
		clients[id] = client
		scheduler.Start(ctx, id, client.Run)
	}
	logging.Info(logger, "watching games", slog.Int(logging.FieldCount, len(cfg.GameIDs)), slog.String(logging.FieldURL, cfg.LedgerURL))

	err := scheduler.Wait(ctx)
	scheduler.StopAll()
	if cfg.Viewer != "" {
		for id, client := range clients {
			if view, ok := client.View(); ok {
				logging.Info(logger, "viewer squares",
					slog.String(logging.FieldGameID, id),
					slog.String(logging.FieldCaller, cfg.Viewer),
					slog.Any("squares", ownedSquares(view, cfg.Viewer)),
					slog.String("state", string(view.Status.State)),
				)
			}
		}
	}
	if err != nil && ctx.Err() != nil {
		// Interrupted by signal.
		return nil
	}
	return err
}

func matchFeed(cfg config.FeedConfig, logger *slog.Logger) feed.Source {
	if cfg.Provider == "fixture" {
		return feed.NewFixture()
	}
	return feed.NewClient(feed.Config{
		BaseURL: cfg.BaseURL,
		Retries: cfg.Retries,
		Timeout: cfg.Timeout,
		Backoff: cfg.Backoff,
		Logger:  logger,
	})
}

func ownedSquares(view reconcile.View, owner string) []int {
	var out []int
	for i, o := range view.Tickets.Owners {
		if o == owner && i < len(view.Tickets.SquareIndexes) {
			out = append(out, view.Tickets.SquareIndexes[i])
		}
	}
	slices.Sort(out)
	return out
}
