package repositories

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"tasktracker/internal/errs"
	"tasktracker/internal/models"
)

type ProjectRepository interface {
	Create(ctx context.Context, p *models.Project) error
	FindByID(ctx context.Context, id int64) (*models.Project, error)
	List(ctx context.Context, ownerID *int64) ([]models.Project, error)
	Update(ctx context.Context, p *models.Project) error
	Delete(ctx context.Context, id int64) error
}

type projectRepository struct {
	db *sqlx.DB
}

func NewProjectRepository(db *sqlx.DB) ProjectRepository {
	return &projectRepository{db: db}
}

const projectColumns = `id, name, description, start_date, end_date, owner_id, risk_level, budget, created_at`

func (r *projectRepository) Create(ctx context.Context, p *models.Project) error {
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(`
		INSERT INTO projects (name, description, start_date, end_date, owner_id, risk_level, budget, created_at)
		VALUES (?,?,?,?,?,?,?,?)
		RETURNING id`),
		p.Name, p.Description, p.StartDate, p.EndDate, p.OwnerID, p.RiskLevel, p.Budget, p.CreatedAt,
	).Scan(&p.ID)
	return errs.Wrap(err, "insert project")
}

func (r *projectRepository) FindByID(ctx context.Context, id int64) (*models.Project, error) {
	var p models.Project
	err := r.db.GetContext(ctx, &p, r.db.Rebind(`SELECT `+projectColumns+` FROM projects WHERE id = ?`), id)
	if err != nil {
		if errs.Is(err, sql.ErrNoRows) {
			return nil, errs.NotFound("project", id)
		}
		return nil, errs.Wrapf(err, "find project %d", id)
	}
	return &p, nil
}

func (r *projectRepository) List(ctx context.Context, ownerID *int64) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	args := []interface{}{}
	if ownerID != nil {
		query += ` WHERE owner_id = ?`
		args = append(args, *ownerID)
	}
	query += ` ORDER BY id`

	out := []models.Project{}
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(query), args...); err != nil {
		return nil, errs.Wrap(err, "list projects")
	}
	return out, nil
}

func (r *projectRepository) Update(ctx context.Context, p *models.Project) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE projects SET
			name=?, description=?, start_date=?, end_date=?, owner_id=?, risk_level=?, budget=?
		WHERE id=?`),
		p.Name, p.Description, p.StartDate, p.EndDate, p.OwnerID, p.RiskLevel, p.Budget, p.ID,
	)
	if err != nil {
		return errs.Wrapf(err, "update project %d", p.ID)
	}
	return expectAffected(res, "project", p.ID)
}

func (r *projectRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM projects WHERE id = ?`), id)
	if err != nil {
		return errs.Wrapf(err, "delete project %d", id)
	}
	return expectAffected(res, "project", id)
}
