package models

import "time"

// Notification is the persisted copy of every dispatched message.
type Notification struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Message   string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	Read      bool      `db:"is_read" json:"read"`
}
