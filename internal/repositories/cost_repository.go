package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"tasktracker/internal/errs"
	"tasktracker/internal/models"
)

type CostRepository interface {
	Create(ctx context.Context, c *models.Cost) error
	ListByReference(ctx context.Context, kind models.ReferenceKind, refID int64) ([]models.Cost, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Cost, error)
	TotalsByType(ctx context.Context, kind models.ReferenceKind, refID int64) (map[models.CostType]float64, error)
}

type costRepository struct {
	db *sqlx.DB
}

func NewCostRepository(db *sqlx.DB) CostRepository {
	return &costRepository{db: db}
}

const costColumns = `id, reference_kind, reference_id, description, amount, cost_type, recorded_at, recorded_by`

func (r *costRepository) Create(ctx context.Context, c *models.Cost) error {
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(`
		INSERT INTO costs (reference_kind, reference_id, description, amount, cost_type, recorded_at, recorded_by)
		VALUES (?,?,?,?,?,?,?)
		RETURNING id`),
		c.ReferenceKind, c.ReferenceID, c.Description, c.Amount, c.CostType, c.RecordedAt, c.RecordedBy,
	).Scan(&c.ID)
	return errs.Wrap(err, "insert cost")
}

func (r *costRepository) ListByReference(ctx context.Context, kind models.ReferenceKind, refID int64) ([]models.Cost, error) {
	out := []models.Cost{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT `+costColumns+` FROM costs
		WHERE reference_kind = ? AND reference_id = ?
		ORDER BY recorded_at, id`), kind, refID)
	return out, errs.Wrapf(err, "list costs of %s %d", kind, refID)
}

func (r *costRepository) ListByUser(ctx context.Context, userID int64) ([]models.Cost, error) {
	out := []models.Cost{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT `+costColumns+` FROM costs WHERE recorded_by = ? ORDER BY recorded_at, id`), userID)
	return out, errs.Wrapf(err, "list costs recorded by %d", userID)
}

func (r *costRepository) TotalsByType(ctx context.Context, kind models.ReferenceKind, refID int64) (map[models.CostType]float64, error) {
	var rows []struct {
		CostType models.CostType `db:"cost_type"`
		Total    float64         `db:"total"`
	}
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT cost_type, COALESCE(SUM(amount), 0) AS total FROM costs
		WHERE reference_kind = ? AND reference_id = ?
		GROUP BY cost_type`), kind, refID)
	if err != nil {
		return nil, errs.Wrapf(err, "sum costs of %s %d", kind, refID)
	}
	out := map[models.CostType]float64{
		models.CostAdvance:        0,
		models.CostDelay:          0,
		models.CostPlannedExpense: 0,
	}
	for _, row := range rows {
		out[row.CostType] = row.Total
	}
	return out, nil
}
