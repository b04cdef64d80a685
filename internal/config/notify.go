package config

// NotifyConfig selects the push transport and recipient source.
type NotifyConfig struct {
	Transport        string // log, webhook, kafka, telegram
	BatchSize        int
	WebhookURL       string
	KafkaBrokers     []string
	KafkaTopic       string
	TelegramToken    string
	RecipientBackend string // static or redis
	StaticRecipients map[string][]string
}

func loadNotify() NotifyConfig {
	return NotifyConfig{
		Transport:        envOrDefault(envNotifyKind, defaultNotifyKind),
		BatchSize:        intEnvOrDefault(envNotifyBatch, defaultNotifyBatch),
		WebhookURL:       envOrDefault(envWebhookURL, ""),
		KafkaBrokers:     listEnvOrDefault(envKafkaBrokers, []string{"localhost:9092"}),
		KafkaTopic:       envOrDefault(envKafkaTopic, defaultKafkaTopic),
		TelegramToken:    envOrDefault(envTelegramToken, ""),
		RecipientBackend: envOrDefault(envRecipients, defaultRecipients),
		StaticRecipients: mapListEnv(envStaticRecips),
	}
}
