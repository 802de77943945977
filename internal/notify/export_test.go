package notify

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// Sender is the bot dependency tests replace.
type Sender = sender

// NewTelegramWithSender builds a Telegram notifier on a fake bot.
func NewTelegramWithSender(s Sender, chatID int64) *Telegram {
	return &Telegram{bot: s, chatID: chatID}
}

var _ Sender = (*tgbotapi.BotAPI)(nil)
