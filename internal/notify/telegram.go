package notify

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier sends each message to the chat whose id is the recipient id.
type TelegramNotifier struct {
	bot telegramSender
}

// NewTelegramBot authenticates a bot with token.
func NewTelegramBot(token string) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	bot.Debug = false
	return bot, nil
}

func NewTelegramNotifier(bot telegramSender) *TelegramNotifier {
	return &TelegramNotifier{bot: bot}
}

func (n *TelegramNotifier) Notify(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	chatID, err := strconv.ParseInt(msg.RecipientID, 10, 64)
	if err != nil {
		return fmt.Errorf("telegram: recipient %q is not a chat id", msg.RecipientID)
	}
	out := tgbotapi.NewMessage(chatID, formatTelegram(msg))
	_, err = n.bot.Send(out)
	return err
}

func formatTelegram(msg Message) string {
	if msg.Title == "" {
		return msg.Body
	}
	if msg.Body == "" {
		return msg.Title
	}
	return msg.Title + "\n" + msg.Body
}
