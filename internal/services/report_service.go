package services

import (
	"context"
	"io"

	"tasktracker/internal/clock"
	"tasktracker/internal/models"
	"tasktracker/internal/pdf"
	"tasktracker/internal/repositories"
)

type ReportService interface {
	ProjectReport(ctx context.Context, projectID int64) (*models.ProjectReport, error)
	WriteProjectPDF(ctx context.Context, projectID int64, w io.Writer) error
}

type reportService struct {
	projects repositories.ProjectRepository
	tasks    repositories.TaskRepository
	costs    CostService
	pdf      pdf.Generator
	clock    clock.Clock
}

func NewReportService(projects repositories.ProjectRepository, tasks repositories.TaskRepository, costs CostService, gen pdf.Generator, clk clock.Clock) ReportService {
	return &reportService{projects: projects, tasks: tasks, costs: costs, pdf: gen, clock: clk}
}

func (s *reportService) ProjectReport(ctx context.Context, projectID int64) (*models.ProjectReport, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	counts, err := s.tasks.CountByStatus(ctx, projectID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.FindAll(ctx, models.TaskFilter{ProjectID: &projectID})
	if err != nil {
		return nil, err
	}
	summary, err := s.costs.Summary(ctx, models.ReferenceProject, projectID)
	if err != nil {
		return nil, err
	}
	return &models.ProjectReport{
		Project:         *project,
		TaskCounts:      counts,
		Tasks:           tasks,
		Costs:           *summary,
		BudgetRemaining: project.Budget + summary.Balance,
		GeneratedAt:     s.clock.Now(),
	}, nil
}

func (s *reportService) WriteProjectPDF(ctx context.Context, projectID int64, w io.Writer) error {
	report, err := s.ProjectReport(ctx, projectID)
	if err != nil {
		return err
	}
	return s.pdf.ProjectReport(w, report)
}
