package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Subscription plans
const (
	PlanFree    = "free"
	PlanMonthly = "monthly"
	PlanAnnual  = "annual"
)

// Subscription statuses
const (
	SubscriptionActive    = "active"
	SubscriptionCancelled = "cancelled"
	SubscriptionExpired   = "expired"
	SubscriptionPastDue   = "past_due"
)

// Subscription payment statuses
const (
	PaymentSuccess = "success"
	PaymentFailed  = "failed"
	PaymentPending = "pending"
)

// Subscription is the live billing state for a user. One row per user,
// overwritten wholesale on each verified payment; never patched outside the
// settlement path.
type Subscription struct {
	ID                      string          `json:"id" db:"id"`
	UserID                  string          `json:"user_id" db:"user_id"`
	Plan                    string          `json:"plan" db:"plan"`
	Status                  string          `json:"status" db:"status"`
	GatewaySubscriptionCode *string         `json:"gateway_subscription_code,omitempty" db:"gateway_subscription_code"`
	Amount                  decimal.Decimal `json:"amount" db:"amount"`
	CurrentPeriodStart      time.Time       `json:"current_period_start" db:"current_period_start"`
	CurrentPeriodEnd        time.Time       `json:"current_period_end" db:"current_period_end"`
	CancelledAt             *time.Time      `json:"cancelled_at,omitempty" db:"cancelled_at"`
	UpdatedAt               time.Time       `json:"updated_at" db:"updated_at"`
}

// SubscriptionPayment is the append-only settlement history. GatewayReference
// is unique and serves as the idempotency key.
type SubscriptionPayment struct {
	ID               string          `json:"id" db:"id"`
	UserID           string          `json:"user_id" db:"user_id"`
	Plan             string          `json:"plan" db:"plan"`
	Amount           decimal.Decimal `json:"amount" db:"amount"`
	Status           string          `json:"status" db:"status"`
	GatewayReference string          `json:"gateway_reference" db:"gateway_reference"`
	PeriodStart      time.Time       `json:"period_start" db:"period_start"`
	PeriodEnd        time.Time       `json:"period_end" db:"period_end"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}
