package services

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type botClient interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramService delivers notifications to users who linked a Telegram chat.
type TelegramService struct {
	bot    botClient
	logger *slog.Logger
}

// NewTelegramService authenticates the bot token against the Bot API.
func NewTelegramService(botToken string, logger *slog.Logger) (*TelegramService, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	logger.Info("[tg][init] authorized", "bot", bot.Self.UserName)
	return &TelegramService{bot: bot, logger: logger}, nil
}

func (t *TelegramService) SendMessage(chatID int64, text string) error {
	if t == nil || t.bot == nil || chatID == 0 {
		return fmt.Errorf("telegram: bot or chat not configured (chat_id=%d)", chatID)
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true

	if _, err := t.bot.Send(msg); err != nil {
		t.logger.Warn("[tg][send][err]", "chat_id", chatID, "error", err)
		return fmt.Errorf("telegram sendMessage failed: %w", err)
	}
	t.logger.Debug("[tg][send] ok", "chat_id", chatID)
	return nil
}
