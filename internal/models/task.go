package models

import (
	"strings"
	"time"
)

// TaskStatus defines the possible statuses for a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "PENDING"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusCompleted  TaskStatus = "COMPLETED"
)

// ParseTaskStatus accepts the canonical names plus the spellings older
// clients send ("in progress", "en proceso", "pendiente", "completada").
func ParseTaskStatus(s string) (TaskStatus, bool) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	switch norm {
	case "PENDING", "PENDIENTE", "NEW":
		return StatusPending, true
	case "IN_PROGRESS", "EN_PROCESO", "INPROGRESS":
		return StatusInProgress, true
	case "COMPLETED", "COMPLETADA", "DONE":
		return StatusCompleted, true
	}
	return "", false
}

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task represents the structure of a task in the system.
type Task struct {
	ID          int64      `db:"id" json:"id"`
	ProjectID   *int64     `db:"project_id" json:"project_id,omitempty"`
	CreatorID   int64      `db:"creator_id" json:"creator_id"`
	AssigneeID  int64      `db:"assignee_id" json:"assignee_id"`
	Name        string     `db:"name" json:"name"`
	Description string     `db:"description" json:"description"`
	DueAt       *time.Time `db:"due_at" json:"due_at,omitempty"`
	Status      TaskStatus `db:"status" json:"status"`
	Comments    string     `db:"comments" json:"comments"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// DueWithin reports whether the task is still open and due strictly between
// now and threshold.
func (t *Task) DueWithin(now, threshold time.Time) bool {
	if t.Status == StatusCompleted || t.DueAt == nil {
		return false
	}
	return t.DueAt.After(now) && t.DueAt.Before(threshold)
}

// TaskFilter defines the available parameters for filtering tasks.
type TaskFilter struct {
	AssigneeID *int64
	ProjectID  *int64
	Status     *TaskStatus
}
