package models

import (
	"strings"
	"time"
)

type User struct {
	ID             int64     `db:"id" json:"id"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	Email          *string   `db:"email" json:"email,omitempty"`
	Phone          *string   `db:"phone" json:"phone,omitempty"`
	TelegramChatID *int64    `db:"telegram_chat_id" json:"telegram_chat_id,omitempty"`
	NotifyTelegram bool      `db:"notify_telegram" json:"notify_telegram"`
	IsAdmin        bool      `db:"is_admin" json:"is_admin"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// EmailAddress returns the trimmed address or "" when none is on file.
func (u *User) EmailAddress() string {
	if u == nil || u.Email == nil {
		return ""
	}
	return strings.TrimSpace(*u.Email)
}

func (u *User) PhoneNumber() string {
	if u == nil || u.Phone == nil {
		return ""
	}
	return strings.TrimSpace(*u.Phone)
}

// TelegramTarget returns the chat id when the user opted in to telegram messages.
func (u *User) TelegramTarget() (int64, bool) {
	if u == nil || u.TelegramChatID == nil || *u.TelegramChatID == 0 || !u.NotifyTelegram {
		return 0, false
	}
	return *u.TelegramChatID, true
}
