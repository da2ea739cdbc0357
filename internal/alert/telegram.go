// Package alert sends operational notifications to a Telegram chat. The
// user only ever sees the generic failure message; this channel carries
// the real provider error to whoever runs the service.
package alert

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
)

const maxMessageLen = 4096

type TelegramAlerter struct {
	bot    *bot.Bot
	chatID int64
}

func NewTelegramAlerter(token string, chatID int64) (*TelegramAlerter, error) {
	b, err := bot.New(token)
	if err != nil {
		return nil, fmt.Errorf("create alert bot: %w", err)
	}
	return &TelegramAlerter{bot: b, chatID: chatID}, nil
}

func (a *TelegramAlerter) AnalysisFailure(sessionID string, err error) {
	msg := fmt.Sprintf("❌ *Analysis failure*\n\n*Session:* `%s`\n*Error:* `%s`\n*Time:* %s",
		sessionID, err.Error(), time.Now().Format("2006-01-02 15:04:05"))
	a.send(msg)
}

func (a *TelegramAlerter) send(message string) {
	if len([]rune(message)) > maxMessageLen {
		message = string([]rune(message)[:maxMessageLen-20]) + "\n\n... (truncated)"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := a.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    a.chatID,
		Text:      message,
		ParseMode: "Markdown",
	})
	if err != nil {
		slog.Error("failed to send telegram alert", "error", err)
	}
}
