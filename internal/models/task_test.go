package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTaskDueWithin(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	threshold := now.Add(24 * time.Hour)
	at := func(d time.Duration) *time.Time {
		v := now.Add(d)
		return &v
	}

	tests := []struct {
		name   string
		task   Task
		expect bool
	}{
		{name: "pending due in 23h59m", task: Task{Status: StatusPending, DueAt: at(23*time.Hour + 59*time.Minute)}, expect: true},
		{name: "in progress due in 1h", task: Task{Status: StatusInProgress, DueAt: at(time.Hour)}, expect: true},
		{name: "due in 24h01m", task: Task{Status: StatusPending, DueAt: at(24*time.Hour + time.Minute)}, expect: false},
		{name: "due exactly at threshold", task: Task{Status: StatusPending, DueAt: at(24 * time.Hour)}, expect: false},
		{name: "due exactly now", task: Task{Status: StatusPending, DueAt: at(0)}, expect: false},
		{name: "overdue", task: Task{Status: StatusPending, DueAt: at(-time.Hour)}, expect: false},
		{name: "completed due in 1h", task: Task{Status: StatusCompleted, DueAt: at(time.Hour)}, expect: false},
		{name: "no due date", task: Task{Status: StatusPending}, expect: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.task.DueWithin(now, threshold))
		})
	}
}

func TestParseTaskStatus(t *testing.T) {
	tests := []struct {
		in     string
		want   TaskStatus
		wantOK bool
	}{
		{in: "PENDING", want: StatusPending, wantOK: true},
		{in: " pendiente ", want: StatusPending, wantOK: true},
		{in: "in progress", want: StatusInProgress, wantOK: true},
		{in: "EN PROCESO", want: StatusInProgress, wantOK: true},
		{in: "in-progress", want: StatusInProgress, wantOK: true},
		{in: "completed", want: StatusCompleted, wantOK: true},
		{in: "archived", wantOK: false},
		{in: "", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseTaskStatus(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeBalance(t *testing.T) {
	totals := map[CostType]float64{
		CostAdvance:        500,
		CostDelay:          120.5,
		CostPlannedExpense: 200,
	}
	assert.InDelta(t, 179.5, ComputeBalance(totals), 1e-9)
	assert.Zero(t, ComputeBalance(map[CostType]float64{}))
}

func TestNormalizeRiskLevel(t *testing.T) {
	assert.Equal(t, RiskRed, NormalizeRiskLevel("rojo"))
	assert.Equal(t, RiskYellow, NormalizeRiskLevel(" yellow"))
	assert.Equal(t, RiskGreen, NormalizeRiskLevel("purple"))
	assert.Equal(t, RiskGreen, NormalizeRiskLevel(""))
}

func TestUserAccessors(t *testing.T) {
	email := "  ana@example.com "
	chat := int64(42)
	u := &User{FirstName: "Ana", LastName: "Diaz", Email: &email, TelegramChatID: &chat}

	assert.Equal(t, "Ana Diaz", u.FullName())
	assert.Equal(t, "ana@example.com", u.EmailAddress())
	_, ok := u.TelegramTarget()
	assert.False(t, ok, "telegram requires opt-in")

	u.NotifyTelegram = true
	id, ok := u.TelegramTarget()
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	var missing *User
	assert.Empty(t, missing.EmailAddress())
}
