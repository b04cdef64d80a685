package notify

import (
	"context"
	"log/slog"

	"github.com/preston-bernstein/squares-service/internal/logging"
)

// Message is one push to one recipient.
type Message struct {
	RecipientID string `json:"recipientId"`
	Title       string `json:"title"`
	Body        string `json:"body"`
}

// Notifier delivers a single message. Implementations must be safe for concurrent use.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, msg Message) error

func (f NotifierFunc) Notify(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// LogNotifier writes messages to the logger instead of an external endpoint.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, msg Message) error {
	logging.Info(logging.FromContext(ctx, n.logger), "notification",
		logging.FieldRecipient, msg.RecipientID,
		"title", msg.Title,
		"body", msg.Body,
	)
	return nil
}
