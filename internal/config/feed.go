package config

// FeedConfig controls how scoreboards are fetched.
type FeedConfig struct {
	Provider     string // "espn" or "fixture"
	BaseURL      string
	Competitions []string
	Retries      int
	Timeout      Duration // per attempt
	Backoff      Duration // base delay, doubled per attempt
}

func loadFeed() FeedConfig {
	return FeedConfig{
		Provider:     envOrDefault(envFeedProvider, defaultFeedProvider),
		BaseURL:      envOrDefault(envFeedBaseURL, defaultFeedBaseURL),
		Competitions: listEnvOrDefault(envCompetitions, []string{defaultCompetitions}),
		Retries:      intEnvOrDefault(envFeedRetries, defaultFeedRetries),
		Timeout:      durationEnvOrDefault(envFeedTimeout, defaultFeedTimeout),
		Backoff:      durationEnvOrDefault(envFeedBackoff, defaultFeedBackoff),
	}
}
