package models

import "time"

type ReferenceKind string

const (
	ReferenceProject ReferenceKind = "PROJECT"
	ReferenceTask    ReferenceKind = "TASK"
)

func (k ReferenceKind) Valid() bool {
	return k == ReferenceProject || k == ReferenceTask
}

type CostType string

const (
	CostDelay          CostType = "DELAY"
	CostAdvance        CostType = "ADVANCE"
	CostPlannedExpense CostType = "PLANNED_EXPENSE"
)

func (t CostType) Valid() bool {
	switch t {
	case CostDelay, CostAdvance, CostPlannedExpense:
		return true
	}
	return false
}

type Cost struct {
	ID            int64         `db:"id" json:"id"`
	ReferenceKind ReferenceKind `db:"reference_kind" json:"reference_kind"`
	ReferenceID   int64         `db:"reference_id" json:"reference_id"`
	Description   string        `db:"description" json:"description"`
	Amount        float64       `db:"amount" json:"amount"`
	CostType      CostType      `db:"cost_type" json:"cost_type"`
	RecordedAt    time.Time     `db:"recorded_at" json:"recorded_at"`
	RecordedBy    int64         `db:"recorded_by" json:"recorded_by"`
}

// CostSummary aggregates the costs attached to one project or task.
type CostSummary struct {
	ReferenceKind ReferenceKind        `json:"reference_kind"`
	ReferenceID   int64                `json:"reference_id"`
	Totals        map[CostType]float64 `json:"totals"`
	Balance       float64              `json:"balance"`
}

// ComputeBalance is advances minus delays minus planned expenses.
func ComputeBalance(totals map[CostType]float64) float64 {
	return totals[CostAdvance] - totals[CostDelay] - totals[CostPlannedExpense]
}
