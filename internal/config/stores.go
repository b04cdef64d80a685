package config

// MatchStateConfig selects where notification flags and score records live.
type MatchStateConfig struct {
	Backend   string // memory or redis
	RedisAddr string
	// TTL expires per-match records; zero keeps them forever.
	TTL Duration
}

// LedgerConfig selects the ledger repository and fee policy.
type LedgerConfig struct {
	Backend             string // memory or postgres
	PostgresDSN         string
	CommunityFeePercent int
	Treasury            string
}

func loadMatchState() MatchStateConfig {
	return MatchStateConfig{
		Backend:   envOrDefault(envStoreBackend, defaultStoreBackend),
		RedisAddr: envOrDefault(envRedisAddr, defaultRedisAddr),
		TTL:       durationEnvOrDefault(envMatchStateTTL, 0),
	}
}

func loadLedger() LedgerConfig {
	return LedgerConfig{
		Backend:             envOrDefault(envLedgerBackend, defaultLedgerBackend),
		PostgresDSN:         envOrDefault(envPostgresDSN, ""),
		CommunityFeePercent: intEnvOrDefault(envCommunityFee, defaultCommunityFee),
		Treasury:            envOrDefault(envTreasury, defaultTreasury),
	}
}
