package services

//go:generate mockgen -destination=mocks/mock_services.go -package=mocks tasktracker/internal/services CostService,NotificationService,ProjectService,ReportService,TaskService,UserService

import (
	"context"
	"log/slog"
	"strings"

	"tasktracker/internal/clock"
	"tasktracker/internal/errs"
	"tasktracker/internal/models"
	"tasktracker/internal/notify"
	"tasktracker/internal/repositories"
)

// TaskService defines the interface for task-related business logic.
type TaskService interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	GetByID(ctx context.Context, id int64) (*models.Task, error)
	GetAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	Update(ctx context.Context, id int64, updateData *models.Task) (*models.Task, error)
	Delete(ctx context.Context, id int64) error
	UpdateStatus(ctx context.Context, id int64, to models.TaskStatus, comment string) (*models.Task, error)
}

// StatusChangeNotifier is told about every persisted status update.
type StatusChangeNotifier interface {
	NotifyStatusChange(ctx context.Context, t *models.Task, previous models.TaskStatus) (notify.Result, bool)
}

type taskService struct {
	repo     repositories.TaskRepository
	notifier StatusChangeNotifier
	clock    clock.Clock
	logger   *slog.Logger
}

func NewTaskService(repo repositories.TaskRepository, notifier StatusChangeNotifier, clk clock.Clock, logger *slog.Logger) TaskService {
	return &taskService{repo: repo, notifier: notifier, clock: clk, logger: logger}
}

func (s *taskService) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	task.Name = strings.TrimSpace(task.Name)
	if task.Name == "" {
		return nil, errs.Invalid("task name is required")
	}
	if task.Status == "" {
		task.Status = models.StatusPending
	}
	if !task.Status.Valid() {
		return nil, errs.Invalid("unknown task status %q", task.Status)
	}
	now := s.clock.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	if err := s.repo.Store(ctx, task); err != nil {
		return nil, err
	}
	s.logger.Info("[task][create] ok", "task_id", task.ID, "assignee_id", task.AssigneeID)
	return task, nil
}

func (s *taskService) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *taskService) GetAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	return s.repo.FindAll(ctx, filter)
}

// Update replaces the editable fields. When the status changes the assignee is
// notified after the row is saved.
func (s *taskService) Update(ctx context.Context, id int64, updateData *models.Task) (*models.Task, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := existing.Status

	if name := strings.TrimSpace(updateData.Name); name != "" {
		existing.Name = name
	}
	existing.Description = updateData.Description
	existing.ProjectID = updateData.ProjectID
	existing.AssigneeID = updateData.AssigneeID
	existing.DueAt = updateData.DueAt
	if updateData.Status != "" {
		if !updateData.Status.Valid() {
			return nil, errs.Invalid("unknown task status %q", updateData.Status)
		}
		existing.Status = updateData.Status
	}
	existing.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	if existing.Status != previous {
		s.notifier.NotifyStatusChange(ctx, existing, previous)
	}
	return existing, nil
}

func (s *taskService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// UpdateStatus persists the new status (and optional comment) and only then
// notifies the assignee. A failed notification does not fail the update.
func (s *taskService) UpdateStatus(ctx context.Context, id int64, to models.TaskStatus, comment string) (*models.Task, error) {
	if !to.Valid() {
		return nil, errs.Invalid("unknown task status %q", to)
	}
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := current.Status

	if err := s.repo.UpdateStatus(ctx, id, to, strings.TrimSpace(comment), s.clock.Now()); err != nil {
		return nil, errs.Wrapf(err, "update status of task %d", id)
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Warn("[task][status] reload failed, using local copy", "task_id", id, "error", err)
		current.Status = to
		updated = current
	}

	s.notifier.NotifyStatusChange(ctx, updated, previous)
	s.logger.Info("[task][status] ok", "task_id", id, "from", previous, "to", to)
	return updated, nil
}
