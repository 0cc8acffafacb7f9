package services

import (
	"context"
	"strings"

	"tasktracker/internal/clock"
	"tasktracker/internal/errs"
	"tasktracker/internal/models"
	"tasktracker/internal/repositories"
)

type ProjectService interface {
	Create(ctx context.Context, p *models.Project) (*models.Project, error)
	GetByID(ctx context.Context, id int64) (*models.Project, error)
	List(ctx context.Context, ownerID *int64) ([]models.Project, error)
	Update(ctx context.Context, id int64, p *models.Project) (*models.Project, error)
	Delete(ctx context.Context, id int64) error
}

type projectService struct {
	repo  repositories.ProjectRepository
	clock clock.Clock
}

func NewProjectService(repo repositories.ProjectRepository, clk clock.Clock) ProjectService {
	return &projectService{repo: repo, clock: clk}
}

func validateProject(p *models.Project) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return errs.Invalid("project name is required")
	}
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		return errs.Invalid("end date must not precede start date")
	}
	if p.Budget < 0 {
		return errs.Invalid("budget must not be negative")
	}
	p.RiskLevel = models.NormalizeRiskLevel(string(p.RiskLevel))
	return nil
}

func (s *projectService) Create(ctx context.Context, p *models.Project) (*models.Project, error) {
	if err := validateProject(p); err != nil {
		return nil, err
	}
	p.CreatedAt = s.clock.Now()
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *projectService) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *projectService) List(ctx context.Context, ownerID *int64) ([]models.Project, error) {
	return s.repo.List(ctx, ownerID)
}

func (s *projectService) Update(ctx context.Context, id int64, p *models.Project) (*models.Project, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.ID = existing.ID
	p.OwnerID = existing.OwnerID
	p.CreatedAt = existing.CreatedAt
	if err := validateProject(p); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *projectService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
