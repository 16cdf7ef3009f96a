package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sterlingcraftco/taxaware-backend/internal/config"
	"github.com/sterlingcraftco/taxaware-backend/internal/models"
)

// InterestService credits quarterly interest to eligible savings accounts.
// The job is not self-limiting to once per quarter: eligibility gating is the
// deployment scheduler's contract, expressed through the withdrawal flag and
// the reset-quarter maintenance operation.
type InterestService struct {
	db  *sql.DB
	cfg config.SavingsConfig
}

func NewInterestService(db *sql.DB, cfg config.SavingsConfig) *InterestService {
	return &InterestService{db: db, cfg: cfg}
}

// AccrualError records one account's failure without aborting the batch.
type AccrualError struct {
	AccountID string `json:"account_id"`
	Error     string `json:"error"`
}

// AccrualResult is the batch outcome: how many accounts were credited and
// which ones failed.
type AccrualResult struct {
	Processed int            `json:"processed"`
	Errors    []AccrualError `json:"errors"`
}

// RunAccrual scans eligible accounts (no withdrawal this quarter, positive
// balance) and credits balance * annual_rate / 4 to each. Per-account store
// failures are collected; they never abort the scan.
func (s *InterestService) RunAccrual(ctx context.Context) (*AccrualResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, balance
		FROM savings_accounts
		WHERE has_withdrawal_this_quarter = FALSE AND balance > 0`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type eligibleAccount struct {
		ID      string
		UserID  string
		Balance decimal.Decimal
	}

	var accounts []eligibleAccount
	for rows.Next() {
		var a eligibleAccount
		if err := rows.Scan(&a.ID, &a.UserID, &a.Balance); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	quarterlyRate := s.cfg.AnnualInterestRate.Div(decimal.NewFromInt(4))
	result := &AccrualResult{Errors: []AccrualError{}}

	for _, account := range accounts {
		interest := account.Balance.Mul(quarterlyRate).Round(2)
		if err := s.creditInterest(ctx, account.ID, account.UserID, account.Balance, interest, quarterlyRate); err != nil {
			log.Printf("[INTEREST] Failed to credit account %s: %v", account.ID, err)
			result.Errors = append(result.Errors, AccrualError{AccountID: account.ID, Error: err.Error()})
			continue
		}
		interestAccrualsTotal.Inc()
		result.Processed++
	}

	log.Printf("[INTEREST] Accrual run complete: %d credited, %d failed", result.Processed, len(result.Errors))
	return result, nil
}

// creditInterest applies one account's interest: atomic increment plus the
// interest ledger entry, in a single database transaction.
func (s *InterestService) creditInterest(ctx context.Context, accountID, userID string, balanceBefore, interest, rate decimal.Decimal) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var newBalance decimal.Decimal
	err = tx.QueryRowContext(ctx, `
		UPDATE savings_accounts
		SET balance = balance + $1,
		    total_interest_earned = total_interest_earned + $1,
		    last_interest_date = NOW(),
		    updated_at = NOW()
		WHERE id = $2
		RETURNING balance`,
		interest, accountID).Scan(&newBalance)
	if err != nil {
		return err
	}

	metaJSON, err := json.Marshal(models.Metadata{
		"quarterly_rate": rate,
		"balance_before": balanceBefore,
	})
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO savings_transactions
		(id, account_id, user_id, type, amount, balance_after, metadata, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())`,
		uuid.NewString(), accountID, userID, models.EntryInterest, interest, newBalance,
		metaJSON, "Quarterly savings interest")
	if err != nil {
		return err
	}

	return tx.Commit()
}

// RunAccrualHandler triggers the quarterly interest accrual batch
// @Summary Run the interest accrual job
// @Description Credit quarterly interest to every eligible account; per-account failures are reported, never fatal
// @Tags interest
// @Produce json
// @Success 200 {object} APIResponse
// @Failure 500 {object} APIResponse
// @Router /interest/run [post]
func (s *InterestService) RunAccrualHandler(w http.ResponseWriter, r *http.Request) {
	result, err := s.RunAccrual(r.Context())
	if err != nil {
		log.Printf("[INTEREST] Accrual scan failed: %v", err)
		SendErrorResponse(w, "Failed to run interest accrual", http.StatusInternalServerError, nil)
		return
	}

	SendSuccessResponse(w, http.StatusOK, result)
}

// ResetQuarterHandler clears the per-quarter withdrawal flags
// @Summary Reset quarterly withdrawal flags
// @Description Start-of-quarter maintenance: restore interest eligibility for every account
// @Tags interest
// @Produce json
// @Success 200 {object} APIResponse
// @Failure 500 {object} APIResponse
// @Router /interest/reset-quarter [post]
func (s *InterestService) ResetQuarterHandler(w http.ResponseWriter, r *http.Request) {
	res, err := s.db.ExecContext(r.Context(), `
		UPDATE savings_accounts
		SET has_withdrawal_this_quarter = FALSE, updated_at = NOW()
		WHERE has_withdrawal_this_quarter = TRUE`)
	if err != nil {
		log.Printf("[INTEREST] Quarter reset failed: %v", err)
		SendErrorResponse(w, "Failed to reset quarterly flags", http.StatusInternalServerError, nil)
		return
	}

	affected, _ := res.RowsAffected()
	log.Printf("[INTEREST] Quarter reset: %d accounts restored to eligibility", affected)
	SendSuccessResponse(w, http.StatusOK, map[string]any{"reset": affected})
}
