package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/preston-bernstein/squares-service/internal/config"
	"github.com/preston-bernstein/squares-service/internal/domain/match"
	"github.com/preston-bernstein/squares-service/internal/ledger"
	"github.com/preston-bernstein/squares-service/internal/logging"
	"github.com/preston-bernstein/squares-service/internal/reconcile"
)

type ledgerClient interface {
	reconcile.LedgerReader
	reconcile.LedgerWriter
}

// runAction issues cfg.Action as cfg.Viewer against every configured game and stops at the first rejection.
func runAction(ctx context.Context, cfg config.WatcherConfig, lc ledgerClient, matches reconcile.MatchSource, logger *slog.Logger) error {
	if cfg.Viewer == "" {
		return errors.New("WATCH_ACTION needs WATCH_VIEWER as the caller")
	}
	for _, id := range cfg.GameIDs {
		if err := applyAction(ctx, cfg, id, lc, matches, logger); err != nil {
			if hint := reconcile.Hint(err); hint != "" {
				logging.Warn(logger, hint,
					slog.String(logging.FieldGameID, id),
					slog.String(logging.FieldCaller, cfg.Viewer),
				)
			}
			return fmt.Errorf("%s %s: %w", cfg.Action, id, err)
		}
	}
	return nil
}

func applyAction(ctx context.Context, cfg config.WatcherConfig, id string, lc ledgerClient, matches reconcile.MatchSource, logger *slog.Logger) error {
	switch strings.ToLower(cfg.Action) {
	case "finalize":
		squares, pcts, err := winningSquares(ctx, cfg, id, lc, matches)
		if err != nil {
			return err
		}
		if err := lc.Finalize(ctx, id, cfg.Viewer, squares, pcts); err != nil {
			return err
		}
		logging.Info(logger, "game finalized",
			slog.String(logging.FieldGameID, id),
			slog.Any("squares", squares),
			slog.Any("percentages", pcts),
		)
	case "distribute":
		transfers, err := lc.Distribute(ctx, id, cfg.Viewer)
		if err != nil {
			return err
		}
		logTransfers(logger, id, "prizes distributed", transfers)
	case "refund":
		transfers, err := lc.Refund(ctx, id, cfg.Viewer)
		if err != nil {
			return err
		}
		logTransfers(logger, id, "game refunded", transfers)
	default:
		return fmt.Errorf("unknown action %q", cfg.Action)
	}
	return nil
}

// winningSquares applies the referee policy to the halftime score and the final score.
func winningSquares(ctx context.Context, cfg config.WatcherConfig, id string, lc ledgerClient, matches reconcile.MatchSource) ([]int, []int, error) {
	halftime, err := parseScore(cfg.HalftimeScore)
	if err != nil {
		return nil, nil, fmt.Errorf("halftime score: %w", err)
	}
	final, err := finalScore(ctx, cfg, id, lc, matches)
	if err != nil {
		return nil, nil, err
	}
	squares := ledger.SelectWinningSquares(halftime, final)
	pcts := cfg.WinnerPercentages
	if pcts == nil {
		pcts = evenSplit(len(squares))
	}
	if len(pcts) != len(squares) {
		return nil, nil, fmt.Errorf("%d winner percentages for %d squares", len(pcts), len(squares))
	}
	return squares, pcts, nil
}

// finalScore prefers the configured score and otherwise reads the finished match from the feed.
func finalScore(ctx context.Context, cfg config.WatcherConfig, id string, lc ledgerClient, matches reconcile.MatchSource) (match.Score, error) {
	if cfg.FinalScore != "" {
		score, err := parseScore(cfg.FinalScore)
		if err != nil {
			return match.Score{}, fmt.Errorf("final score: %w", err)
		}
		return score, nil
	}
	status, err := lc.Status(ctx, id)
	if err != nil {
		return match.Score{}, err
	}
	event, err := ledger.ParseEventID(status.EventID)
	if err != nil {
		return match.Score{}, err
	}
	snap, found, err := matches.Match(ctx, event)
	if err != nil {
		return match.Score{}, err
	}
	if !found || !snap.Status.IsFinished() {
		return match.Score{}, fmt.Errorf("match %s has not finished; set WATCH_FINAL_SCORE", event.Label())
	}
	return snap.Score(), nil
}

// parseScore reads "home-away".
func parseScore(raw string) (match.Score, error) {
	h, a, ok := strings.Cut(strings.TrimSpace(raw), "-")
	if !ok {
		return match.Score{}, fmt.Errorf("want home-away, got %q", raw)
	}
	home, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil || home < 0 {
		return match.Score{}, fmt.Errorf("bad home score %q", h)
	}
	away, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil || away < 0 {
		return match.Score{}, fmt.Errorf("bad away score %q", a)
	}
	return match.Score{Home: home, Away: away}, nil
}

// evenSplit shares 100% across n winners; the truncated remainder goes to the treasury.
func evenSplit(n int) []int {
	if n <= 0 {
		return nil
	}
	out := make([]int, n)
	for i := range out {
		out[i] = 100 / n
	}
	return out
}

func logTransfers(logger *slog.Logger, id, msg string, transfers []ledger.Transfer) {
	total := decimal.Zero
	for _, t := range transfers {
		total = total.Add(t.Amount)
	}
	logging.Info(logger, msg,
		slog.String(logging.FieldGameID, id),
		slog.Int(logging.FieldCount, len(transfers)),
		slog.String("total", total.String()),
	)
}
