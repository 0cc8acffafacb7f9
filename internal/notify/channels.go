package notify

import (
	"context"
	"time"

	"tasktracker/internal/models"
	"tasktracker/internal/realtime"
)

const (
	ChannelStore    = "store"
	ChannelEmail    = "email"
	ChannelLive     = "live"
	ChannelTelegram = "telegram"
	ChannelSMS      = "sms"
)

type NotificationStore interface {
	Insert(ctx context.Context, n *models.Notification) error
}

type EmailSender interface {
	Send(to, subject, body string) error
}

type LiveRegistry interface {
	Get(userID int64) (realtime.Pusher, bool)
}

type TelegramSender interface {
	SendMessage(chatID int64, text string) error
}

type SMSSender interface {
	SendSMS(ctx context.Context, to, text string) error
}

// StoreChannel persists an unread notification for the recipient.
type StoreChannel struct {
	Store NotificationStore
}

func (StoreChannel) Name() string { return ChannelStore }

func (c StoreChannel) Deliver(ctx context.Context, to Recipient, msg Message, at time.Time) error {
	return c.Store.Insert(ctx, &models.Notification{
		UserID:    to.UserID,
		Message:   msg.Body,
		CreatedAt: at,
		Read:      false,
	})
}

type EmailChannel struct {
	Sender EmailSender
}

func (EmailChannel) Name() string { return ChannelEmail }

func (c EmailChannel) Deliver(_ context.Context, to Recipient, msg Message, _ time.Time) error {
	addr := to.User.EmailAddress()
	if addr == "" {
		return ErrNoAddress
	}
	return c.Sender.Send(addr, msg.Subject, msg.Body)
}

// LiveChannel pushes to the recipient's open connection, if there is one.
type LiveChannel struct {
	Registry LiveRegistry
}

func (LiveChannel) Name() string { return ChannelLive }

func (c LiveChannel) Deliver(_ context.Context, to Recipient, msg Message, _ time.Time) error {
	conn, ok := c.Registry.Get(to.UserID)
	if !ok {
		return ErrNoAddress
	}
	return conn.Push(msg.Body)
}

type TelegramChannel struct {
	Sender TelegramSender
}

func (TelegramChannel) Name() string { return ChannelTelegram }

func (c TelegramChannel) Deliver(_ context.Context, to Recipient, msg Message, _ time.Time) error {
	chatID, ok := to.User.TelegramTarget()
	if !ok {
		return ErrNoAddress
	}
	return c.Sender.SendMessage(chatID, msg.Subject+"\n\n"+msg.Body)
}

// SMSChannel only carries urgent messages.
type SMSChannel struct {
	Sender SMSSender
}

func (SMSChannel) Name() string { return ChannelSMS }

func (c SMSChannel) Deliver(ctx context.Context, to Recipient, msg Message, _ time.Time) error {
	phone := to.User.PhoneNumber()
	if !msg.Urgent || phone == "" {
		return ErrNoAddress
	}
	text := msg.Summary
	if text == "" {
		text = msg.Subject
	}
	return c.Sender.SendSMS(ctx, phone, text)
}
