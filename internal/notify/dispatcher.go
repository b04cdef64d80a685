package notify

import (
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/preston-bernstein/squares-service/internal/domain/match"
	"github.com/preston-bernstein/squares-service/internal/logging"
	"github.com/preston-bernstein/squares-service/internal/metrics"
)

const DefaultBatchSize = 40

// Dispatcher fans a message out to recipients in fixed-width batches.
// Delivery inside a batch is concurrent; batches run one after another.
// Failures are logged and never retried.
type Dispatcher struct {
	notifier  Notifier
	resolver  RecipientResolver
	batchSize int
	logger    *slog.Logger
	metrics   *metrics.Recorder
}

func NewDispatcher(notifier Notifier, resolver RecipientResolver, batchSize int, logger *slog.Logger, recorder *metrics.Recorder) *Dispatcher {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Dispatcher{
		notifier:  notifier,
		resolver:  resolver,
		batchSize: batchSize,
		logger:    logger,
		metrics:   recorder,
	}
}

// Dispatch sends title/body to every distinct recipient and returns how many sends were attempted.
func (d *Dispatcher) Dispatch(ctx context.Context, recipients []string, title, body string) int {
	targets := dedupe(recipients)
	var failed atomic.Int64

	for start := 0; start < len(targets); start += d.batchSize {
		end := start + d.batchSize
		if end > len(targets) {
			end = len(targets)
		}

		var g errgroup.Group
		for _, id := range targets[start:end] {
			g.Go(func() error {
				msg := Message{RecipientID: id, Title: title, Body: body}
				if err := d.notifier.Notify(ctx, msg); err != nil {
					failed.Add(1)
					logging.Error(logging.FromContext(ctx, d.logger), "notification failed", err,
						logging.FieldRecipient, id,
					)
				}
				return nil
			})
		}
		_ = g.Wait()
	}

	d.metrics.RecordDispatch(len(targets), int(failed.Load()))
	return len(targets)
}

// DispatchEvent notifies the union of both teams' followers about ev.
func (d *Dispatcher) DispatchEvent(ctx context.Context, ev match.Event) int {
	var recipients []string
	for _, team := range ev.Teams() {
		if team == "" {
			continue
		}
		ids, err := d.resolver.Recipients(ctx, team)
		if err != nil {
			logging.Error(logging.FromContext(ctx, d.logger), "recipient lookup failed", err,
				"team", team,
				logging.FieldMatchID, ev.MatchID,
			)
			continue
		}
		recipients = append(recipients, ids...)
	}

	title, body := FormatEvent(ev)
	sent := d.Dispatch(ctx, recipients, title, body)
	logging.Info(logging.FromContext(ctx, d.logger), "event dispatched",
		logging.FieldEvent, string(ev.Kind),
		logging.FieldMatchID, ev.MatchID,
		logging.FieldCount, sent,
	)
	return sent
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
