package repositories

//go:generate mockgen -destination=mocks/mock_repositories.go -package=mocks tasktracker/internal/repositories CostRepository,ProjectRepository,TaskRepository,UserRepository

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"tasktracker/internal/errs"
	"tasktracker/internal/models"
)

type TaskRepository interface {
	Store(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id int64) (*models.Task, error)
	FindAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	ListAll(ctx context.Context) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id int64) error
	UpdateStatus(ctx context.Context, id int64, to models.TaskStatus, comment string, at time.Time) error
	CountByStatus(ctx context.Context, projectID int64) (map[models.TaskStatus]int, error)
}

type taskRepository struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewTaskRepository(db *sqlx.DB, logger *slog.Logger) TaskRepository {
	return &taskRepository{db: db, logger: logger}
}

const taskColumns = `id, project_id, creator_id, assignee_id, name, description,
       due_at, status, comments, created_at, updated_at`

func (r *taskRepository) Store(ctx context.Context, task *models.Task) error {
	query := r.db.Rebind(`
		INSERT INTO tasks (
			project_id, creator_id, assignee_id, name, description,
			due_at, status, comments, created_at, updated_at
		)
		VALUES (?,?,?,?,?,?,?,?,?,?)
		RETURNING id`)
	err := r.db.QueryRowxContext(ctx, query,
		task.ProjectID, task.CreatorID, task.AssigneeID, task.Name, task.Description,
		task.DueAt, task.Status, task.Comments, task.CreatedAt, task.UpdatedAt,
	).Scan(&task.ID)
	return errs.Wrap(err, "insert task")
}

func (r *taskRepository) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	var task models.Task
	err := r.db.GetContext(ctx, &task, r.db.Rebind(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`), id)
	if err != nil {
		if errs.Is(err, sql.ErrNoRows) {
			return nil, errs.NotFound("task", id)
		}
		return nil, errs.Wrapf(err, "find task %d", id)
	}
	return &task, nil
}

func (r *taskRepository) FindAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`

	conditions := []string{}
	args := []interface{}{}

	if filter.AssigneeID != nil {
		conditions = append(conditions, "assignee_id = ?")
		args = append(args, *filter.AssigneeID)
	}
	if filter.ProjectID != nil {
		conditions = append(conditions, "project_id = ?")
		args = append(args, *filter.ProjectID)
	}
	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *filter.Status)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	tasks := []models.Task{}
	if err := r.db.SelectContext(ctx, &tasks, r.db.Rebind(query), args...); err != nil {
		return nil, errs.Wrap(err, "list tasks")
	}
	return tasks, nil
}

// ListAll returns every task in storage order. Rows that fail to decode are
// logged and skipped so one bad row never hides the rest.
func (r *taskRepository) ListAll(ctx context.Context) ([]models.Task, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT `+taskColumns+` FROM tasks`)
	if err != nil {
		return nil, errs.Wrap(err, "list all tasks")
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var t models.Task
		if err := rows.StructScan(&t); err != nil {
			r.logger.Warn("[task][list][skip] undecodable row", "error", err)
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, errs.Wrap(rows.Err(), "iterate tasks")
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	query := r.db.Rebind(`
		UPDATE tasks SET
			project_id=?, assignee_id=?, name=?, description=?,
			due_at=?, status=?, updated_at=?
		WHERE id=?`)
	res, err := r.db.ExecContext(ctx, query,
		task.ProjectID, task.AssigneeID, task.Name, task.Description,
		task.DueAt, task.Status, task.UpdatedAt, task.ID,
	)
	if err != nil {
		return errs.Wrapf(err, "update task %d", task.ID)
	}
	return expectAffected(res, "task", task.ID)
}

func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM tasks WHERE id = ?`), id)
	if err != nil {
		return errs.Wrapf(err, "delete task %d", id)
	}
	return expectAffected(res, "task", id)
}

// UpdateStatus sets the status and, when comment is not empty, appends it on
// a new line to the task's comment log.
func (r *taskRepository) UpdateStatus(ctx context.Context, id int64, to models.TaskStatus, comment string, at time.Time) error {
	var (
		res sql.Result
		err error
	)
	comment = strings.TrimSpace(comment)
	if comment == "" {
		res, err = r.db.ExecContext(ctx,
			r.db.Rebind(`UPDATE tasks SET status=?, updated_at=? WHERE id=?`), to, at, id)
	} else {
		res, err = r.db.ExecContext(ctx, r.db.Rebind(`
			UPDATE tasks SET
				status=?,
				comments=CASE WHEN comments = '' THEN ? ELSE comments || ? END,
				updated_at=?
			WHERE id=?`), to, comment, "\n"+comment, at, id)
	}
	if err != nil {
		return errs.Wrapf(err, "update status of task %d", id)
	}
	return expectAffected(res, "task", id)
}

func (r *taskRepository) CountByStatus(ctx context.Context, projectID int64) (map[models.TaskStatus]int, error) {
	var rows []struct {
		Status models.TaskStatus `db:"status"`
		Count  int               `db:"n"`
	}
	err := r.db.SelectContext(ctx, &rows,
		r.db.Rebind(`SELECT status, COUNT(*) AS n FROM tasks WHERE project_id = ? GROUP BY status`), projectID)
	if err != nil {
		return nil, errs.Wrapf(err, "count tasks of project %d", projectID)
	}
	out := make(map[models.TaskStatus]int, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

func expectAffected(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errs.Wrapf(err, "rows affected for %s %d", entity, id)
	}
	if n == 0 {
		return errs.NotFound(entity, id)
	}
	return nil
}
