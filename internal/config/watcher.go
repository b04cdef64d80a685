package config

// WatcherConfig drives the reconciliation client binary.
type WatcherConfig struct {
	LedgerURL   string
	GameIDs     []string
	Viewer      string
	PollTimeout Duration
	Feed        FeedConfig
	// Action is a one-shot ledger write (finalize, distribute or refund) issued as Viewer
	// instead of watching.
	Action            string
	HalftimeScore     string
	FinalScore        string
	WinnerPercentages []int
}

// LoadWatcher reads watcher settings from the environment.
func LoadWatcher() WatcherConfig {
	return WatcherConfig{
		LedgerURL:         envOrDefault(envLedgerURL, defaultLedgerURL),
		GameIDs:           listEnvOrDefault(envWatchGames, nil),
		Viewer:            envOrDefault(envWatchViewer, ""),
		PollTimeout:       durationEnvOrDefault(envWatchTimeout, defaultWatchTimeout),
		Feed:              loadFeed(),
		Action:            envOrDefault(envWatchAction, ""),
		HalftimeScore:     envOrDefault(envWatchHalftime, ""),
		FinalScore:        envOrDefault(envWatchFinal, ""),
		WinnerPercentages: intListEnv(envWatchPercents),
	}
}
