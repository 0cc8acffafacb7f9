package models

import (
	"strings"
	"time"
)

type RiskLevel string

const (
	RiskGreen  RiskLevel = "GREEN"
	RiskYellow RiskLevel = "YELLOW"
	RiskRed    RiskLevel = "RED"
)

// NormalizeRiskLevel maps free-form input onto a risk level; anything
// unrecognized is GREEN.
func NormalizeRiskLevel(s string) RiskLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "YELLOW", "AMARILLO":
		return RiskYellow
	case "RED", "ROJO":
		return RiskRed
	}
	return RiskGreen
}

type Project struct {
	ID          int64      `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Description string     `db:"description" json:"description"`
	StartDate   *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate     *time.Time `db:"end_date" json:"end_date,omitempty"`
	OwnerID     int64      `db:"owner_id" json:"owner_id"`
	RiskLevel   RiskLevel  `db:"risk_level" json:"risk_level"`
	Budget      float64    `db:"budget" json:"budget"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}
