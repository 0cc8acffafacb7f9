package handlers

import (
	"time"

	"github.com/jinzhu/copier"

	"tasktracker/internal/errs"
	"tasktracker/internal/models"
	"tasktracker/internal/notify"
)

type TaskRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ProjectID   *int64 `json:"project_id"`
	AssigneeID  int64  `json:"assignee_id"`
	DueAt       string `json:"due_at"` // RFC3339
	Status      string `json:"status"`
}

type StatusRequest struct {
	Status  string `json:"status" binding:"required"`
	Comment string `json:"comment"`
}

type TaskResponse struct {
	ID             int64             `json:"id"`
	ProjectID      *int64            `json:"project_id,omitempty"`
	CreatorID      int64             `json:"creator_id"`
	AssigneeID     int64             `json:"assignee_id"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	DueAt          *time.Time        `json:"due_at,omitempty"`
	Status         models.TaskStatus `json:"status"`
	Comments       string            `json:"comments"`
	HoursRemaining *int64            `json:"hours_remaining,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

func toTaskResponse(t *models.Task, now time.Time) (TaskResponse, error) {
	var resp TaskResponse
	if err := copier.Copy(&resp, t); err != nil {
		return TaskResponse{}, errs.Wrap(err, "map task")
	}
	if t.DueAt != nil && t.Status != models.StatusCompleted {
		h := notify.HoursRemaining(*t.DueAt, now)
		resp.HoursRemaining = &h
	}
	return resp, nil
}

func toTaskResponses(tasks []models.Task, now time.Time) ([]TaskResponse, error) {
	out := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		resp, err := toTaskResponse(&tasks[i], now)
		if err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, nil
}

type ProjectRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	OwnerID     int64   `json:"owner_id"`
	RiskLevel   string  `json:"risk_level"`
	Budget      float64 `json:"budget"`
}

type CostRequest struct {
	ReferenceKind string  `json:"reference_kind" binding:"required"`
	ReferenceID   int64   `json:"reference_id" binding:"required"`
	Description   string  `json:"description"`
	Amount        float64 `json:"amount"`
	CostType      string  `json:"cost_type" binding:"required"`
}

type UserRequest struct {
	FirstName      string  `json:"first_name" binding:"required"`
	LastName       string  `json:"last_name"`
	Email          *string `json:"email"`
	Phone          *string `json:"phone"`
	TelegramChatID *int64  `json:"telegram_chat_id"`
	NotifyTelegram bool    `json:"notify_telegram"`
	IsAdmin        bool    `json:"is_admin"`
}

type ContactRequest struct {
	Email          *string `json:"email"`
	Phone          *string `json:"phone"`
	TelegramChatID *int64  `json:"telegram_chat_id"`
	NotifyTelegram *bool   `json:"notify_telegram"`
}

type UserResponse struct {
	ID             int64     `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          *string   `json:"email,omitempty"`
	Phone          *string   `json:"phone,omitempty"`
	TelegramChatID *int64    `json:"telegram_chat_id,omitempty"`
	NotifyTelegram bool      `json:"notify_telegram"`
	IsAdmin        bool      `json:"is_admin"`
	CreatedAt      time.Time `json:"created_at"`
}

func toUserResponse(u *models.User) (UserResponse, error) {
	var resp UserResponse
	if err := copier.Copy(&resp, u); err != nil {
		return UserResponse{}, errs.Wrap(err, "map user")
	}
	return resp, nil
}

func toUserResponses(users []models.User) ([]UserResponse, error) {
	out := make([]UserResponse, 0, len(users))
	if err := copier.Copy(&out, &users); err != nil {
		return nil, errs.Wrap(err, "map users")
	}
	return out, nil
}

type NotificationResponse struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func toNotificationResponses(ns []models.Notification) ([]NotificationResponse, error) {
	out := make([]NotificationResponse, 0, len(ns))
	if err := copier.Copy(&out, &ns); err != nil {
		return nil, errs.Wrap(err, "map notifications")
	}
	return out, nil
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
