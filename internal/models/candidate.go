// Package models defines the core entities of the transaction intelligence
// engine: transaction candidates, categories, conversation turns, embedding
// records and the aggregate views consumed by the advisory composer.
package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Direction classifies where money moved from the user's point of view.
type Direction string

const (
	DirectionIncome   Direction = "income"
	DirectionExpense  Direction = "expense"
	DirectionTransfer Direction = "transfer"
)

// Valid reports whether d is one of the three known directions.
func (d Direction) Valid() bool {
	switch d {
	case DirectionIncome, DirectionExpense, DirectionTransfer:
		return true
	}
	return false
}

// Source records how a candidate entered the system.
type Source string

const (
	SourceManual Source = "manual"
	SourceImport Source = "import"
)

// TransactionCandidate is an unconfirmed structured record extracted from
// free text or an imported statement row. Amount is always positive; the
// Direction carries the sign semantics. A candidate below the confidence
// floor is surfaced for user confirmation instead of being persisted
// silently.
type TransactionCandidate struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Direction   Direction       `json:"direction"`
	RawText     string          `json:"raw_text"`
	Description string          `json:"description"`
	CategoryID  string          `json:"category_id,omitempty"`
	Source      Source          `json:"source"`
	Date        time.Time       `json:"date"`
	Confidence  float64         `json:"confidence"`

	// NeedsConfirmation marks low-confidence or duplicate-suspect candidates
	// that must not enter statistics until the user approves them.
	NeedsConfirmation bool `json:"needs_confirmation"`
	// IgnoreInStats excludes debt repayments and split bills from aggregates.
	IgnoreInStats bool `json:"ignore_in_stats"`
}

// Validate checks the candidate invariants: a positive amount, a known
// direction and a confidence inside [0, 1].
func (c TransactionCandidate) Validate() error {
	if !c.Amount.IsPositive() {
		return fmt.Errorf("candidate amount must be positive, got %s", c.Amount)
	}
	if !c.Direction.Valid() {
		return fmt.Errorf("unknown direction %q", c.Direction)
	}
	if c.Confidence < 0 || c.Confidence > 1 {
		return fmt.Errorf("confidence %f outside [0,1]", c.Confidence)
	}
	return nil
}

// RoundedAmount returns the amount at the fixed two-digit precision used
// for persistence and dedup keys.
func (c TransactionCandidate) RoundedAmount() decimal.Decimal {
	return c.Amount.Round(2)
}
