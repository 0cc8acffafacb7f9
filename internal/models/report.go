package models

import "time"

// ProjectReport is the read model behind the project report endpoints.
type ProjectReport struct {
	Project         Project            `json:"project"`
	TaskCounts      map[TaskStatus]int `json:"task_counts"`
	Tasks           []Task             `json:"tasks"`
	Costs           CostSummary        `json:"costs"`
	BudgetRemaining float64            `json:"budget_remaining"`
	GeneratedAt     time.Time          `json:"generated_at"`
}

// Progress is the share of completed tasks, 0 when the project has none.
func (r *ProjectReport) Progress() float64 {
	total := 0
	for _, n := range r.TaskCounts {
		total += n
	}
	if total == 0 {
		return 0
	}
	return float64(r.TaskCounts[StatusCompleted]) / float64(total)
}
