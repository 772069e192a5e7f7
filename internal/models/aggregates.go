package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Goal is a savings target. The engine only reads goals; managing them is a
// collaborator responsibility.
type Goal struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	Name           string          `json:"name"`
	TargetAmount   decimal.Decimal `json:"target_amount"`
	CurrentAmount  decimal.Decimal `json:"current_amount"`
	MonthlyDeposit decimal.Decimal `json:"monthly_deposit"`
	Deadline       time.Time       `json:"deadline,omitzero"`
}

// Remaining returns how much is still missing to reach the target.
func (g Goal) Remaining() decimal.Decimal {
	return g.TargetAmount.Sub(g.CurrentAmount)
}

// MonthlyBalance is the current-month aggregate view read from the
// repository collaborator.
type MonthlyBalance struct {
	UserID        string          `json:"user_id"`
	TotalIncome   decimal.Decimal `json:"total_income"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
}

// CategoryTotal is one row of the per-category spending breakdown.
type CategoryTotal struct {
	UserID string          `json:"user_id"`
	Name   string          `json:"name"`
	Icon   string          `json:"icon,omitempty"`
	Total  decimal.Decimal `json:"total"`
}

// TrendPoint is one month of income/expense history.
type TrendPoint struct {
	UserID   string          `json:"user_id"`
	Month    string          `json:"month"` // "2026-08"
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}

// CommunicationStyle selects the tone preset used in composed prompts.
type CommunicationStyle string

const (
	StyleCasual   CommunicationStyle = "casual"
	StyleBalanced CommunicationStyle = "balanced"
	StyleFormal   CommunicationStyle = "formal"
)

// UserProfile carries the per-user settings the composer needs.
type UserProfile struct {
	UserID        string             `json:"user_id"`
	Name          string             `json:"name,omitempty"`
	Currency      string             `json:"currency"`
	MonthlyIncome decimal.Decimal    `json:"monthly_income"`
	Style         CommunicationStyle `json:"communication_style"`
	FirstActivity time.Time          `json:"first_activity,omitzero"`
}
