package config

// Config holds runtime configuration for the server.
type Config struct {
	Port         string
	PollInterval Duration
	AdminToken   string
	CorsOrigins  []string
	Feed         FeedConfig
	Notify       NotifyConfig
	MatchState   MatchStateConfig
	Ledger       LedgerConfig
	Metrics      MetricsConfig
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		Port:         envOrDefault(envPort, defaultPort),
		PollInterval: durationEnvOrDefault(envPollInterval, defaultPollInterval),
		AdminToken:   envOrDefault(envAdminToken, ""),
		CorsOrigins:  listEnvOrDefault(envCorsOrigins, []string{"*"}),
		Feed:         loadFeed(),
		Notify:       loadNotify(),
		MatchState:   loadMatchState(),
		Ledger:       loadLedger(),
		Metrics:      loadMetrics(),
	}
}
