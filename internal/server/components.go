package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/preston-bernstein/squares-service/internal/config"
	"github.com/preston-bernstein/squares-service/internal/feed"
	"github.com/preston-bernstein/squares-service/internal/ledger"
	"github.com/preston-bernstein/squares-service/internal/logging"
	"github.com/preston-bernstein/squares-service/internal/metrics"
	"github.com/preston-bernstein/squares-service/internal/notify"
	"github.com/preston-bernstein/squares-service/internal/store"
)

// Seams for tests.
var (
	connectRedis        = store.ConnectRedis
	openPostgres        = ledger.OpenPostgres
	newTelegramNotifier = func(token string) (notify.Notifier, error) {
		bot, err := notify.NewTelegramBot(token)
		if err != nil {
			return nil, err
		}
		return notify.NewTelegramNotifier(bot), nil
	}
)

// components are the backends selected by configuration.
type components struct {
	source     feed.Source
	matchStore store.MatchStateStore
	notifier   notify.Notifier
	resolver   notify.RecipientResolver
	ledger     *ledger.Ledger
	closers    []func() error
}

func (c *components) onClose(fn func() error) {
	c.closers = append(c.closers, fn)
}

// close releases backends in reverse order of creation.
func (c *components) close(logger *slog.Logger) {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			logging.Warn(logger, "backend close failed", "error", err)
		}
	}
	c.closers = nil
}

func buildComponents(ctx context.Context, cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*components, error) {
	source, err := buildSource(cfg.Feed, logger, recorder)
	if err != nil {
		return nil, err
	}
	c := &components{source: source}

	var redisClient *redis.Client
	if cfg.MatchState.Backend == "redis" || cfg.Notify.RecipientBackend == "redis" {
		client, err := connectRedis(ctx, cfg.MatchState.RedisAddr)
		if err != nil {
			return nil, err
		}
		redisClient = client
		c.onClose(client.Close)
	}

	steps := []func() error{
		func() error {
			c.matchStore = buildMatchStore(cfg.MatchState, redisClient)
			return nil
		},
		func() error {
			c.resolver = buildResolver(cfg.Notify, redisClient)
			return nil
		},
		func() (err error) {
			c.notifier, err = buildNotifier(c, cfg.Notify, logger)
			return err
		},
		func() (err error) {
			c.ledger, err = buildLedger(ctx, c, cfg.Ledger, logger, recorder)
			return err
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			c.close(logger)
			return nil, err
		}
	}
	return c, nil
}

func buildSource(cfg config.FeedConfig, logger *slog.Logger, recorder *metrics.Recorder) (feed.Source, error) {
	switch strings.ToLower(cfg.Provider) {
	case "fixture":
		return feed.NewFixture(), nil
	case "espn", "":
		return feed.NewClient(feed.Config{
			BaseURL: cfg.BaseURL,
			Retries: cfg.Retries,
			Timeout: cfg.Timeout,
			Backoff: cfg.Backoff,
			Logger:  logger,
			Metrics: recorder,
		}), nil
	default:
		// Scripted fixture events would reach real subscribers, so never fall back to it.
		return nil, fmt.Errorf("unknown feed provider %q", cfg.Provider)
	}
}

func buildMatchStore(cfg config.MatchStateConfig, client *redis.Client) store.MatchStateStore {
	if cfg.Backend == "redis" && client != nil {
		return store.NewRedisStore(client, cfg.TTL)
	}
	return store.NewMemoryStore()
}

func buildResolver(cfg config.NotifyConfig, client *redis.Client) notify.RecipientResolver {
	if cfg.RecipientBackend == "redis" && client != nil {
		return notify.NewRedisResolver(client)
	}
	return notify.NewStaticResolver(cfg.StaticRecipients)
}

func buildNotifier(c *components, cfg config.NotifyConfig, logger *slog.Logger) (notify.Notifier, error) {
	switch strings.ToLower(cfg.Transport) {
	case "webhook":
		if cfg.WebhookURL == "" {
			return nil, fmt.Errorf("notify transport webhook requires NOTIFY_WEBHOOK_URL")
		}
		return notify.NewWebhookNotifier(cfg.WebhookURL, nil), nil
	case "kafka":
		n := notify.NewKafkaNotifier(notify.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic))
		c.onClose(n.Close)
		return n, nil
	case "telegram":
		return newTelegramNotifier(cfg.TelegramToken)
	case "log", "":
		return notify.NewLogNotifier(logger), nil
	default:
		logging.Warn(logger, "unknown notify transport, falling back to log", slog.String("transport", cfg.Transport))
		return notify.NewLogNotifier(logger), nil
	}
}

func buildLedger(ctx context.Context, c *components, cfg config.LedgerConfig, logger *slog.Logger, recorder *metrics.Recorder) (*ledger.Ledger, error) {
	var repo ledger.Repository = ledger.NewMemoryRepository()
	if cfg.Backend == "postgres" {
		db, err := openPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		c.onClose(db.Close)
		pg := ledger.NewPostgresRepository(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ledger schema: %w", err)
		}
		repo = pg
	}
	return ledger.New(repo, ledger.Options{
		Fees: ledger.Fees{
			CommunityPercent: decimal.NewFromInt(int64(cfg.CommunityFeePercent)),
			Treasury:         cfg.Treasury,
		},
		Logger:  logger,
		Metrics: recorder,
	}), nil
}
