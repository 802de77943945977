// Package notify sends a short run summary to Telegram when configured.
package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ErrNotConfigured indicates Telegram credentials are missing.
var ErrNotConfigured = errors.New("telegram not configured")

// Notifier delivers a run summary.
type Notifier interface {
	Notify(ctx context.Context, s Summary) error
}

// Summary describes one finished command run.
type Summary struct {
	Command string
	Counts  []Count
	Err     error
}

// Count is one labeled number in a summary.
type Count struct {
	Label string
	N     int
}

// Text renders s as Telegram HTML.
func (s Summary) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>hhapply %s</b>", html.EscapeString(s.Command))
	for _, c := range s.Counts {
		fmt.Fprintf(&b, "\n%s: %d", html.EscapeString(c.Label), c.N)
	}
	if s.Err != nil {
		fmt.Fprintf(&b, "\n⚠️ %s", html.EscapeString(s.Err.Error()))
	}
	return b.String()
}

// Nop discards summaries.
type Nop struct{}

// Notify does nothing.
func (Nop) Notify(context.Context, Summary) error { return nil }

// sender is the part of *tgbotapi.BotAPI the notifier uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Compile-time interface compliance check.
var _ Notifier = (*Telegram)(nil)

// Telegram posts summaries to a chat.
type Telegram struct {
	bot    sender
	chatID int64
}

// NewTelegram connects a bot. It validates the token with a getMe call.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	if token == "" || chatID == 0 {
		return nil, ErrNotConfigured
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID}, nil
}

// Notify sends the summary.
func (t *Telegram) Notify(ctx context.Context, s Summary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, s.Text())
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
