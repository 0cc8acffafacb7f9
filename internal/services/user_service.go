package services

import (
	"context"
	"net/mail"
	"strings"

	"tasktracker/internal/clock"
	"tasktracker/internal/errs"
	"tasktracker/internal/models"
	"tasktracker/internal/repositories"
)

type UserService interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateContact(ctx context.Context, id int64, contact ContactUpdate) (*models.User, error)
}

// ContactUpdate carries the delivery addresses a user may change. Nil fields
// are left as they are; empty strings clear the address.
type ContactUpdate struct {
	Email          *string
	Phone          *string
	TelegramChatID *int64
	NotifyTelegram *bool
}

type userService struct {
	repo  repositories.UserRepository
	clock clock.Clock
}

func NewUserService(repo repositories.UserRepository, clk clock.Clock) UserService {
	return &userService{repo: repo, clock: clk}
}

func (s *userService) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.FirstName = strings.TrimSpace(user.FirstName)
	user.LastName = strings.TrimSpace(user.LastName)
	if user.FirstName == "" {
		return nil, errs.Invalid("first_name is required")
	}
	email, err := normalizeEmail(user.Email)
	if err != nil {
		return nil, err
	}
	user.Email = email
	user.Phone = trimmedOrNil(user.Phone)
	user.CreatedAt = s.clock.Now()

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *userService) List(ctx context.Context) ([]models.User, error) {
	return s.repo.List(ctx)
}

func (s *userService) UpdateContact(ctx context.Context, id int64, contact ContactUpdate) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if contact.Email != nil {
		if user.Email, err = normalizeEmail(contact.Email); err != nil {
			return nil, err
		}
	}
	if contact.Phone != nil {
		user.Phone = trimmedOrNil(contact.Phone)
	}
	if contact.TelegramChatID != nil {
		user.TelegramChatID = contact.TelegramChatID
		if *contact.TelegramChatID == 0 {
			user.TelegramChatID = nil
		}
	}
	if contact.NotifyTelegram != nil {
		user.NotifyTelegram = *contact.NotifyTelegram
	}
	if err := s.repo.UpdateContact(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func normalizeEmail(email *string) (*string, error) {
	trimmed := trimmedOrNil(email)
	if trimmed == nil {
		return nil, nil
	}
	addr, err := mail.ParseAddress(*trimmed)
	if err != nil {
		return nil, errs.Invalid("invalid email %q", *trimmed)
	}
	lower := strings.ToLower(addr.Address)
	return &lower, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
