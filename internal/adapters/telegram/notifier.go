package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"newsquant/pkg/errors"
	"newsquant/pkg/logger"
)

// Notifier pushes text messages to a single Telegram chat. Delivery is
// best-effort: failures are logged and swallowed, never surfaced to the
// trading cycle.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    *logger.Logger
}

// NewNotifier creates a Telegram notifier.
func NewNotifier(token string, chatID int64) (*Notifier, error) {
	if token == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "telegram bot token is required")
	}
	if chatID == 0 {
		return nil, errors.Wrap(errors.ErrInvalidInput, "telegram chat id is required")
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "create telegram bot")
	}

	return &Notifier{
		bot:    bot,
		chatID: chatID,
		log:    logger.Get().With("component", "telegram_notifier"),
	}, nil
}

// Notify sends text to the configured chat.
func (n *Notifier) Notify(ctx context.Context, text string) {
	if ctx.Err() != nil {
		n.log.Warnw("notification skipped", "reason", ctx.Err())
		return
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		n.log.Warnw("notification delivery failed", "error", err)
	}
}
