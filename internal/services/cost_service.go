package services

import (
	"context"
	"strings"

	"tasktracker/internal/clock"
	"tasktracker/internal/errs"
	"tasktracker/internal/models"
	"tasktracker/internal/repositories"
)

type CostService interface {
	Record(ctx context.Context, c *models.Cost) (*models.Cost, error)
	List(ctx context.Context, kind models.ReferenceKind, refID int64) ([]models.Cost, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Cost, error)
	Summary(ctx context.Context, kind models.ReferenceKind, refID int64) (*models.CostSummary, error)
}

type costService struct {
	costs    repositories.CostRepository
	projects repositories.ProjectRepository
	tasks    repositories.TaskRepository
	clock    clock.Clock
}

func NewCostService(costs repositories.CostRepository, projects repositories.ProjectRepository, tasks repositories.TaskRepository, clk clock.Clock) CostService {
	return &costService{costs: costs, projects: projects, tasks: tasks, clock: clk}
}

// Record validates and stores a cost line against an existing project or task.
func (s *costService) Record(ctx context.Context, c *models.Cost) (*models.Cost, error) {
	c.ReferenceKind = models.ReferenceKind(strings.ToUpper(strings.TrimSpace(string(c.ReferenceKind))))
	c.CostType = models.CostType(strings.ToUpper(strings.TrimSpace(string(c.CostType))))
	if !c.ReferenceKind.Valid() {
		return nil, errs.Invalid("reference_kind must be PROJECT or TASK")
	}
	if !c.CostType.Valid() {
		return nil, errs.Invalid("cost_type must be DELAY, ADVANCE or PLANNED_EXPENSE")
	}
	if c.Amount <= 0 {
		return nil, errs.Invalid("amount must be greater than zero")
	}
	if err := s.ensureReference(ctx, c.ReferenceKind, c.ReferenceID); err != nil {
		return nil, err
	}
	if c.RecordedAt.IsZero() {
		c.RecordedAt = s.clock.Now()
	}
	if err := s.costs.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *costService) ensureReference(ctx context.Context, kind models.ReferenceKind, id int64) error {
	var err error
	switch kind {
	case models.ReferenceProject:
		_, err = s.projects.FindByID(ctx, id)
	case models.ReferenceTask:
		_, err = s.tasks.FindByID(ctx, id)
	}
	return err
}

func (s *costService) List(ctx context.Context, kind models.ReferenceKind, refID int64) ([]models.Cost, error) {
	return s.costs.ListByReference(ctx, kind, refID)
}

func (s *costService) ListByUser(ctx context.Context, userID int64) ([]models.Cost, error) {
	return s.costs.ListByUser(ctx, userID)
}

func (s *costService) Summary(ctx context.Context, kind models.ReferenceKind, refID int64) (*models.CostSummary, error) {
	if !kind.Valid() {
		return nil, errs.Invalid("reference_kind must be PROJECT or TASK")
	}
	if err := s.ensureReference(ctx, kind, refID); err != nil {
		return nil, err
	}
	totals, err := s.costs.TotalsByType(ctx, kind, refID)
	if err != nil {
		return nil, err
	}
	return &models.CostSummary{
		ReferenceKind: kind,
		ReferenceID:   refID,
		Totals:        totals,
		Balance:       models.ComputeBalance(totals),
	}, nil
}
