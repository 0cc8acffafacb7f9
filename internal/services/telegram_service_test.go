package services

import (
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBot struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func TestTelegramSendMessage(t *testing.T) {
	bot := &fakeBot{}
	svc := &TelegramService{bot: bot, logger: quietLogger()}

	require.NoError(t, svc.SendMessage(42, "System notification\n\nstatus changed"))
	require.Len(t, bot.sent, 1)
	assert.Equal(t, int64(42), bot.sent[0].ChatID)
	assert.Equal(t, "System notification\n\nstatus changed", bot.sent[0].Text)
	assert.True(t, bot.sent[0].DisableWebPagePreview)
}

func TestTelegramSendMessageErrors(t *testing.T) {
	var nilSvc *TelegramService
	assert.Error(t, nilSvc.SendMessage(42, "x"))

	svc := &TelegramService{bot: &fakeBot{}, logger: quietLogger()}
	assert.Error(t, svc.SendMessage(0, "x"), "zero chat id")

	failing := &TelegramService{bot: &fakeBot{err: errors.New("Forbidden: bot was blocked by the user")}, logger: quietLogger()}
	assert.ErrorContains(t, failing.SendMessage(42, "x"), "blocked")
}
