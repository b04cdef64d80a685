package config

import "time"

const (
	envPort          = "PORT"
	envPollInterval  = "POLL_INTERVAL"
	envAdminToken    = "ADMIN_TOKEN"
	envMetricsPort   = "METRICS_PORT"
	envMetricsOn     = "METRICS_ENABLED"
	envOtelEndpoint  = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService   = "OTEL_SERVICE_NAME"
	envOtelInsecure  = "OTEL_EXPORTER_OTLP_INSECURE"
	envCorsOrigins   = "CORS_ALLOWED_ORIGINS"
	envFeedProvider  = "FEED_PROVIDER"
	envFeedBaseURL   = "FEED_BASE_URL"
	envCompetitions  = "FEED_COMPETITIONS"
	envFeedRetries   = "FEED_RETRIES"
	envFeedTimeout   = "FEED_TIMEOUT"
	envFeedBackoff   = "FEED_BACKOFF"
	envNotifyKind    = "NOTIFY_TRANSPORT"
	envNotifyBatch   = "NOTIFY_BATCH_SIZE"
	envWebhookURL    = "NOTIFY_WEBHOOK_URL"
	envKafkaBrokers  = "KAFKA_BROKERS"
	envKafkaTopic    = "KAFKA_TOPIC_NOTIFICATIONS"
	envTelegramToken = "TELEGRAM_BOT_TOKEN"
	envRecipients    = "RECIPIENTS_BACKEND"
	envStaticRecips  = "RECIPIENTS_STATIC"
	envStoreBackend  = "MATCH_STATE_BACKEND"
	envRedisAddr     = "REDIS_ADDR"
	envMatchStateTTL = "MATCH_STATE_TTL"
	envLedgerBackend = "LEDGER_BACKEND"
	envPostgresDSN   = "POSTGRES_DSN"
	envCommunityFee  = "COMMUNITY_FEE_PERCENT"
	envTreasury      = "COMMUNITY_TREASURY"
	envLedgerURL     = "LEDGER_URL"
	envWatchGames    = "WATCH_GAMES"
	envWatchViewer   = "WATCH_VIEWER"
	envWatchTimeout  = "WATCH_POLL_TIMEOUT"
	envWatchAction   = "WATCH_ACTION"
	envWatchHalftime = "WATCH_HALFTIME_SCORE"
	envWatchFinal    = "WATCH_FINAL_SCORE"
	envWatchPercents = "WATCH_WINNER_PERCENTAGES"

	defaultPort = "4000"
	// Scoreboards refresh roughly once a minute upstream; polling faster only burns quota.
	defaultPollInterval  = 60 * Duration(time.Second)
	defaultMetricsPort   = "9090"
	defaultFeedProvider  = "espn"
	defaultFeedBaseURL   = "https://site.api.espn.com/apis/site/v2/sports/soccer"
	defaultCompetitions  = "eng.1"
	defaultFeedRetries   = 3
	defaultFeedTimeout   = 8 * Duration(time.Second)
	defaultFeedBackoff   = 500 * Duration(time.Millisecond)
	defaultNotifyKind    = "log"
	defaultNotifyBatch   = 40
	defaultKafkaTopic    = "match_notifications"
	defaultRecipients    = "static"
	defaultStoreBackend  = "memory"
	defaultRedisAddr     = "localhost:6379"
	defaultLedgerBackend = "memory"
	defaultCommunityFee  = 5
	defaultTreasury      = "community-treasury"
	defaultLedgerURL     = "http://localhost:4000"
	defaultWatchTimeout  = 8 * Duration(time.Second)
)
