package repositories

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"tasktracker/internal/errs"
	"tasktracker/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateContact(ctx context.Context, user *models.User) error
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, first_name, last_name, email, phone, telegram_chat_id,
       notify_telegram, is_admin, created_at`

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := r.db.Rebind(`
		INSERT INTO users (
			first_name, last_name, email, phone, telegram_chat_id,
			notify_telegram, is_admin, created_at
		)
		VALUES (?,?,?,?,?,?,?,?)
		RETURNING id`)
	err := r.db.QueryRowxContext(ctx, query,
		user.FirstName, user.LastName, user.Email, user.Phone, user.TelegramChatID,
		user.NotifyTelegram, user.IsAdmin, user.CreatedAt,
	).Scan(&user.ID)
	return errs.Wrap(err, "insert user")
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := r.db.GetContext(ctx, &u, r.db.Rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	if err != nil {
		if errs.Is(err, sql.ErrNoRows) {
			return nil, errs.NotFound("user", id)
		}
		return nil, errs.Wrapf(err, "find user %d", id)
	}
	return &u, nil
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY id`); err != nil {
		return nil, errs.Wrap(err, "list users")
	}
	return users, nil
}

// UpdateContact rewrites the delivery addresses of a user.
func (r *userRepository) UpdateContact(ctx context.Context, user *models.User) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE users SET email=?, phone=?, telegram_chat_id=?, notify_telegram=?
		WHERE id=?`),
		user.Email, user.Phone, user.TelegramChatID, user.NotifyTelegram, user.ID,
	)
	if err != nil {
		return errs.Wrapf(err, "update contact of user %d", user.ID)
	}
	return expectAffected(res, "user", user.ID)
}
