package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Metadata is a free-form JSONB column.
type Metadata map[string]any

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *Metadata) Scan(src any) error {
	if src == nil {
		*m = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("metadata: cannot scan %T", src)
	}
	return json.Unmarshal(b, m)
}

// Ledger entry types
const (
	EntryDeposit    = "deposit"
	EntryInterest   = "interest"
	EntryWithdrawal = "withdrawal"
)

// Account is a user's tax-savings account. One per user; created lazily on
// the first deposit attempt.
type Account struct {
	ID                       string          `json:"id" db:"id"`
	UserID                   string          `json:"user_id" db:"user_id"`
	Balance                  decimal.Decimal `json:"balance" db:"balance"`
	TotalDeposits            decimal.Decimal `json:"total_deposits" db:"total_deposits"`
	TotalInterestEarned      decimal.Decimal `json:"total_interest_earned" db:"total_interest_earned"`
	HasWithdrawalThisQuarter bool            `json:"has_withdrawal_this_quarter" db:"has_withdrawal_this_quarter"`
	LastInterestDate         *time.Time      `json:"last_interest_date" db:"last_interest_date"`
	CreatedAt                time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt                time.Time       `json:"updated_at" db:"updated_at"`
}

// LedgerEntry is an immutable record of one balance-affecting event.
// BalanceAfter snapshots the running balance at write time. GatewayReference,
// when present, is the idempotency key for externally-triggered entries.
type LedgerEntry struct {
	ID               string          `json:"id" db:"id"`
	AccountID        string          `json:"account_id" db:"account_id"`
	UserID           string          `json:"user_id" db:"user_id"`
	Type             string          `json:"type" db:"type"`
	Amount           decimal.Decimal `json:"amount" db:"amount"`
	BalanceAfter     decimal.Decimal `json:"balance_after" db:"balance_after"`
	GatewayReference *string         `json:"gateway_reference,omitempty" db:"gateway_reference"`
	Metadata         Metadata        `json:"metadata,omitempty" db:"metadata"`
	Description      string          `json:"description" db:"description"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}

// Signed returns the entry amount with the sign implied by its type.
// The sum of signed amounts over an account's entries equals its balance.
func (e *LedgerEntry) Signed() decimal.Decimal {
	if e.Type == EntryWithdrawal {
		return e.Amount.Neg()
	}
	return e.Amount
}
