package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"tasktracker/internal/errs"
	"tasktracker/internal/models"
)

type NotificationRepository interface {
	Insert(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
}

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Insert(ctx context.Context, n *models.Notification) error {
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(`
		INSERT INTO notifications (user_id, message, created_at, is_read)
		VALUES (?,?,?,?)
		RETURNING id`),
		n.UserID, n.Message, n.CreatedAt, n.Read,
	).Scan(&n.ID)
	return errs.Wrapf(err, "insert notification for user %d", n.UserID)
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]models.Notification, error) {
	query := `SELECT id, user_id, message, created_at, is_read FROM notifications WHERE user_id = ?`
	if unreadOnly {
		query += ` AND is_read = ?`
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`

	args := []interface{}{userID}
	if unreadOnly {
		args = append(args, false)
	}
	args = append(args, limit)

	out := []models.Notification{}
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(query), args...); err != nil {
		return nil, errs.Wrapf(err, "list notifications of user %d", userID)
	}
	return out, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind(`UPDATE notifications SET is_read = ? WHERE id = ? AND user_id = ?`), true, id, userID)
	if err != nil {
		return errs.Wrapf(err, "mark notification %d read", id)
	}
	return expectAffected(res, "notification", id)
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind(`UPDATE notifications SET is_read = ? WHERE user_id = ? AND is_read = ?`), true, userID, false)
	if err != nil {
		return 0, errs.Wrapf(err, "mark notifications of user %d read", userID)
	}
	n, err := res.RowsAffected()
	return n, errs.Wrap(err, "rows affected")
}
