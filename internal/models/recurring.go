package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recurring rule frequencies
const (
	FrequencyDaily     = "daily"
	FrequencyWeekly    = "weekly"
	FrequencyBiWeekly  = "bi-weekly"
	FrequencyMonthly   = "monthly"
	FrequencyQuarterly = "quarterly"
	FrequencyAnnually  = "annually"
)

// ValidFrequency reports whether f is one of the six supported frequencies.
func ValidFrequency(f string) bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiWeekly,
		FrequencyMonthly, FrequencyQuarterly, FrequencyAnnually:
		return true
	}
	return false
}

// RecurringRule is the template for automatically generated user transactions.
// The engine advances NextOccurrence after each materialization; everything
// else is mutated only by the owner.
type RecurringRule struct {
	ID             string          `json:"id" db:"id"`
	UserID         string          `json:"user_id" db:"user_id"`
	Amount         decimal.Decimal `json:"amount" db:"amount"`
	Category       string          `json:"category" db:"category"`
	Type           string          `json:"type" db:"type"`
	Description    string          `json:"description" db:"description"`
	Frequency      string          `json:"frequency" db:"frequency"`
	NextOccurrence time.Time       `json:"next_occurrence" db:"next_occurrence"`
	IsActive       bool            `json:"is_active" db:"is_active"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// UserTransaction is a dashboard transaction. Entries materialized from a
// recurring rule carry the rule id; (recurring_rule_id, transaction_date) is
// unique so a duplicate trigger for the same due date cannot double-post.
type UserTransaction struct {
	ID              string          `json:"id" db:"id"`
	UserID          string          `json:"user_id" db:"user_id"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	Category        string          `json:"category" db:"category"`
	Type            string          `json:"type" db:"type"`
	Description     string          `json:"description" db:"description"`
	TransactionDate time.Time       `json:"transaction_date" db:"transaction_date"`
	RecurringRuleID *string         `json:"recurring_rule_id,omitempty" db:"recurring_rule_id"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}
