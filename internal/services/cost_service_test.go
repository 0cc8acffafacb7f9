package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"tasktracker/internal/clock"
	"tasktracker/internal/errs"
	"tasktracker/internal/models"
	repomocks "tasktracker/internal/repositories/mocks"
)

type costMocks struct {
	costs    *repomocks.MockCostRepository
	projects *repomocks.MockProjectRepository
	tasks    *repomocks.MockTaskRepository
}

func newCostService(t *testing.T) (CostService, costMocks) {
	ctrl := gomock.NewController(t)
	m := costMocks{
		costs:    repomocks.NewMockCostRepository(ctrl),
		projects: repomocks.NewMockProjectRepository(ctrl),
		tasks:    repomocks.NewMockTaskRepository(ctrl),
	}
	return NewCostService(m.costs, m.projects, m.tasks, clock.NewManual(testNow)), m
}

func TestRecordCostValidation(t *testing.T) {
	svc, _ := newCostService(t)

	tests := []struct {
		name string
		cost models.Cost
	}{
		{"unknown reference", models.Cost{ReferenceKind: "CLIENT", ReferenceID: 1, CostType: models.CostDelay, Amount: 10}},
		{"unknown type", models.Cost{ReferenceKind: models.ReferenceTask, ReferenceID: 1, CostType: "BONUS", Amount: 10}},
		{"zero amount", models.Cost{ReferenceKind: models.ReferenceTask, ReferenceID: 1, CostType: models.CostDelay}},
		{"negative amount", models.Cost{ReferenceKind: models.ReferenceTask, ReferenceID: 1, CostType: models.CostDelay, Amount: -5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.cost
			_, err := svc.Record(context.Background(), &c)
			assert.True(t, errs.Is(err, errs.ErrInvalidInput), "got %v", err)
		})
	}
}

func TestRecordCost(t *testing.T) {
	svc, m := newCostService(t)

	m.tasks.EXPECT().FindByID(gomock.Any(), int64(4)).Return(&models.Task{ID: 4}, nil)
	m.costs.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	got, err := svc.Record(context.Background(), &models.Cost{
		ReferenceKind: "task",
		ReferenceID:   4,
		CostType:      "planned_expense",
		Amount:        120.5,
		RecordedBy:    2,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReferenceTask, got.ReferenceKind)
	assert.Equal(t, models.CostPlannedExpense, got.CostType)
	assert.Equal(t, testNow, got.RecordedAt)
}

func TestRecordCostMissingProject(t *testing.T) {
	svc, m := newCostService(t)
	m.projects.EXPECT().FindByID(gomock.Any(), int64(9)).Return(nil, errs.NotFound("project", 9))

	_, err := svc.Record(context.Background(), &models.Cost{
		ReferenceKind: models.ReferenceProject, ReferenceID: 9, CostType: models.CostAdvance, Amount: 1,
	})
	assert.True(t, errs.Is(err, errs.ErrNotFound))
}

func TestCostSummaryBalance(t *testing.T) {
	svc, m := newCostService(t)
	m.projects.EXPECT().FindByID(gomock.Any(), int64(1)).Return(&models.Project{ID: 1}, nil)
	m.costs.EXPECT().TotalsByType(gomock.Any(), models.ReferenceProject, int64(1)).Return(map[models.CostType]float64{
		models.CostAdvance:        500,
		models.CostDelay:          120,
		models.CostPlannedExpense: 80,
	}, nil)

	got, err := svc.Summary(context.Background(), models.ReferenceProject, 1)
	require.NoError(t, err)
	assert.InDelta(t, 300.0, got.Balance, 1e-9)
	assert.Equal(t, int64(1), got.ReferenceID)
}
