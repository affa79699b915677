// Package notify delivers the run digest to a chat.
package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"viral-scout/internal/textutil"
)

// MaxMessage bounds a single outgoing message in runes.
const MaxMessage = 4000

// Notifier sends plain-text messages.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Telegram posts messages to one chat through the Bot API.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram authenticates the bot and resolves the target chat.
func NewTelegram(token, chatID string) (*Telegram, error) {
	id, err := ParseChatID(chatID)
	if err != nil {
		return nil, err
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return &Telegram{bot: bot, chatID: id}, nil
}

// ParseChatID accepts numeric user, group and channel ids.
func ParseChatID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("telegram: empty chat id")
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("telegram: invalid chat id %q: %w", s, err)
	}
	return id, nil
}

// Bound trims text to what a single message can carry.
func Bound(text string) string {
	return textutil.Head(text, MaxMessage)
}

// Send posts text without markup parsing so titles with brackets survive.
func (t *Telegram) Send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, Bound(text))
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
