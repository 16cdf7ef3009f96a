package services

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/sterlingcraftco/taxaware-backend/internal/config"
	"github.com/sterlingcraftco/taxaware-backend/internal/models"
	"github.com/sterlingcraftco/taxaware-backend/internal/paystack"
)

// SavingsService owns the tax-savings ledger: deposit initialization and
// settlement, withdrawals, and history views. All balance changes go through
// atomic SQL increments paired with an immutable ledger entry in the same
// database transaction.
type SavingsService struct {
	db        *sql.DB
	redis     *redis.Client
	gateway   *paystack.Client
	validator *ValidationHelper
	cfg       config.SavingsConfig
}

func NewSavingsService(db *sql.DB, redisClient *redis.Client, gateway *paystack.Client, cfg config.SavingsConfig) *SavingsService {
	return &SavingsService{
		db:        db,
		redis:     redisClient,
		gateway:   gateway,
		validator: NewValidationHelper(),
		cfg:       cfg,
	}
}

// InitializeDepositRequest carries the deposit amount in the gateway's minor
// unit (kobo).
type InitializeDepositRequest struct {
	Amount      int64  `json:"amount" validate:"required,gt=0"`
	Email       string `json:"email" validate:"required,email"`
	CallbackURL string `json:"callback_url" validate:"omitempty,url"`
}

type VerifyDepositRequest struct {
	Reference string `json:"reference" validate:"required"`
}

type WithdrawRequest struct {
	Amount      int64  `json:"amount" validate:"required,gt=0"`
	Description string `json:"description" validate:"max=200"`
}

// InitializeDeposit starts a gateway checkout for a savings deposit
// @Summary Initialize a savings deposit
// @Description Validate the amount against the deposit floor and create a gateway checkout session
// @Tags savings
// @Accept json
// @Produce json
// @Param request body InitializeDepositRequest true "Deposit request (amount in kobo)"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Failure 502 {object} APIResponse
// @Router /savings/deposit/initialize [post]
func (s *SavingsService) InitializeDeposit(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	maxBytes := 1_048_576 // 1 MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req InitializeDepositRequest
	if err := dec.Decode(&req); err != nil {
		SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}

	if err := s.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	// Floor check happens before any gateway call.
	amount := minorToMajor(req.Amount)
	if amount.LessThan(s.cfg.MinimumDeposit) {
		log.Printf("[DEPOSIT] Below-minimum deposit attempt by user %s: %s < %s", userID, amount, s.cfg.MinimumDeposit)
		SendErrorResponse(w, fmt.Sprintf("%s, minimum deposit is %s", ErrBelowMinimum, s.cfg.MinimumDeposit), http.StatusBadRequest, nil)
		return
	}

	session, err := s.gateway.InitializeTransaction(r.Context(), paystack.InitializeRequest{
		Email:       req.Email,
		Amount:      req.Amount,
		CallbackURL: req.CallbackURL,
		Metadata: map[string]any{
			"purpose": "savings_deposit",
			"user_id": userID,
		},
	})
	if err != nil {
		log.Printf("[DEPOSIT] Gateway initialize failed for user %s: %v", userID, err)
		SendErrorResponse(w, "Payment gateway unavailable, please retry", http.StatusBadGateway, nil)
		return
	}

	log.Printf("[DEPOSIT] Checkout initialized for user %s, reference: %s", userID, session.Reference)

	data := map[string]any{
		"authorization_url": session.AuthorizationURL,
		"access_code":       session.AccessCode,
		"reference":         session.Reference,
	}
	if png, err := qrcode.Encode(session.AuthorizationURL, qrcode.Medium, 256); err == nil {
		data["qr_code"] = "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	}

	SendSuccessResponse(w, http.StatusOK, data)
}

// VerifyDeposit verifies a gateway reference and credits the savings account
// @Summary Verify and settle a savings deposit
// @Description Fetch the authoritative gateway status for the reference and credit the account at most once
// @Tags savings
// @Accept json
// @Produce json
// @Param request body VerifyDepositRequest true "Verification request"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Failure 502 {object} APIResponse
// @Router /savings/deposit/verify [post]
func (s *SavingsService) VerifyDeposit(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	maxBytes := 1_048_576 // 1 MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req VerifyDepositRequest
	if err := dec.Decode(&req); err != nil {
		SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}

	if err := s.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	verification, err := s.gateway.VerifyTransaction(r.Context(), req.Reference)
	if err != nil {
		// Transport failure, not a payment failure. Nothing has been written;
		// the caller retries.
		log.Printf("[DEPOSIT] Verify failed for reference %s: %v", req.Reference, &GatewayError{Err: err})
		SendErrorResponse(w, "Payment gateway unavailable, please retry", http.StatusBadGateway, nil)
		return
	}

	if verification.Status != "success" {
		log.Printf("[DEPOSIT] Payment not successful for reference %s, status: %s", req.Reference, verification.Status)
		payErr := &PaymentNotSuccessfulError{Status: verification.Status}
		SendErrorResponse(w, payErr.Error(), http.StatusBadRequest, nil)
		return
	}

	// A reference settles only on the surface that initialized it. Without
	// this, a payment recorded under another purpose could settle a second
	// time here as a deposit.
	if purpose, _ := verification.Metadata["purpose"].(string); purpose != "savings_deposit" {
		log.Printf("[DEPOSIT] Reference %s carries purpose %q, refusing to settle as a deposit", req.Reference, purpose)
		SendErrorResponse(w, "Reference is not a savings deposit", http.StatusBadRequest, nil)
		return
	}
	if owner, _ := verification.Metadata["user_id"].(string); owner != userID {
		log.Printf("[DEPOSIT] Reference %s was initialized by user %s, claimed by %s", req.Reference, owner, userID)
		SendErrorResponse(w, "Reference does not belong to this user", http.StatusForbidden, nil)
		return
	}

	amount := minorToMajor(verification.Amount)
	outcome, err := s.settleDeposit(r.Context(), userID, req.Reference, amount, verification.Metadata)
	if err != nil {
		log.Printf("[DEPOSIT] Settlement failed for reference %s: %v", req.Reference, err)
		SendErrorResponse(w, "Failed to settle deposit, please retry", http.StatusInternalServerError, nil)
		return
	}

	if outcome.AlreadyProcessed {
		log.Printf("[DEPOSIT] Duplicate settlement for reference %s, no writes performed", req.Reference)
		settlementsTotal.WithLabelValues("savings_deposit", "duplicate").Inc()
		SendSuccessResponse(w, http.StatusOK, map[string]any{
			"reference":         req.Reference,
			"already_processed": true,
		})
		return
	}

	settlementsTotal.WithLabelValues("savings_deposit", "applied").Inc()
	s.queueSettlementEvent(req.Reference, userID, "savings_deposit", amount)

	log.Printf("[DEPOSIT] Settled reference %s for user %s: +%s, new balance %s", req.Reference, userID, amount, outcome.NewBalance)
	SendSuccessResponse(w, http.StatusOK, map[string]any{
		"reference":         req.Reference,
		"amount":            amount,
		"new_balance":       outcome.NewBalance,
		"already_processed": false,
	})
}

type settleOutcome struct {
	AlreadyProcessed bool
	NewBalance       decimal.Decimal
}

// settleDeposit applies a verified deposit exactly once. The credit and the
// ledger entry share one database transaction; a unique-violation on the
// gateway reference rolls the credit back and reports AlreadyProcessed.
func (s *SavingsService) settleDeposit(ctx context.Context, userID, reference string, amount decimal.Decimal, metadata map[string]any) (*settleOutcome, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Lazy account creation on first deposit.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO savings_accounts (id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING`,
		uuid.NewString(), userID)
	if err != nil {
		return nil, err
	}

	var accountID string
	var newBalance decimal.Decimal
	err = tx.QueryRowContext(ctx, `
		UPDATE savings_accounts
		SET balance = balance + $1, total_deposits = total_deposits + $1, updated_at = NOW()
		WHERE user_id = $2
		RETURNING id, balance`,
		amount, userID).Scan(&accountID, &newBalance)
	if err != nil {
		return nil, err
	}

	meta := models.Metadata{"gateway": "paystack"}
	for k, v := range metadata {
		meta[k] = v
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO savings_transactions
		(id, account_id, user_id, type, amount, balance_after, gateway_reference, metadata, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())`,
		uuid.NewString(), accountID, userID, models.EntryDeposit, amount, newBalance,
		reference, metaJSON, "Savings deposit via Paystack")
	if err != nil {
		if isUniqueViolation(err) {
			// Concurrent or repeated settlement of the same reference. The
			// rollback discards the balance increment above.
			return &settleOutcome{AlreadyProcessed: true}, nil
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &settleOutcome{NewBalance: newBalance}, nil
}

// Withdraw debits the savings account and marks the withdrawal quarter flag
// @Summary Withdraw from the savings account
// @Description Conditionally debit the balance and record an immutable withdrawal entry
// @Tags savings
// @Accept json
// @Produce json
// @Param request body WithdrawRequest true "Withdrawal request (amount in kobo)"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /savings/withdraw [post]
func (s *SavingsService) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req WithdrawRequest
	if err := dec.Decode(&req); err != nil {
		SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if err := s.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	amount := minorToMajor(req.Amount)

	tx, err := s.db.BeginTx(r.Context(), nil)
	if err != nil {
		SendErrorResponse(w, "Failed to process withdrawal", http.StatusInternalServerError, nil)
		return
	}
	defer tx.Rollback()

	// Conditional decrement; withdrawing forfeits this quarter's interest.
	var accountID string
	var newBalance decimal.Decimal
	err = tx.QueryRowContext(r.Context(), `
		UPDATE savings_accounts
		SET balance = balance - $1, has_withdrawal_this_quarter = TRUE, updated_at = NOW()
		WHERE user_id = $2 AND balance >= $1
		RETURNING id, balance`,
		amount, userID).Scan(&accountID, &newBalance)
	if err != nil {
		if err == sql.ErrNoRows {
			// Either no account or not enough funds; look up which.
			var exists bool
			if lookupErr := s.db.QueryRowContext(r.Context(),
				`SELECT EXISTS(SELECT 1 FROM savings_accounts WHERE user_id = $1)`, userID).Scan(&exists); lookupErr == nil && !exists {
				SendErrorResponse(w, "Savings account not found", http.StatusNotFound, nil)
				return
			}
			log.Printf("[WITHDRAWAL] Insufficient balance for user %s, requested %s", userID, amount)
			SendErrorResponse(w, ErrInsufficientBalance.Error(), http.StatusBadRequest, nil)
			return
		}
		SendErrorResponse(w, "Failed to process withdrawal", http.StatusInternalServerError, nil)
		return
	}

	description := req.Description
	if description == "" {
		description = "Savings withdrawal"
	}
	_, err = tx.ExecContext(r.Context(), `
		INSERT INTO savings_transactions
		(id, account_id, user_id, type, amount, balance_after, metadata, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())`,
		uuid.NewString(), accountID, userID, models.EntryWithdrawal, amount, newBalance,
		[]byte(`{}`), description)
	if err != nil {
		SendErrorResponse(w, "Failed to record withdrawal", http.StatusInternalServerError, nil)
		return
	}

	if err := tx.Commit(); err != nil {
		SendErrorResponse(w, "Failed to process withdrawal", http.StatusInternalServerError, nil)
		return
	}

	log.Printf("[WITHDRAWAL] User %s withdrew %s, new balance %s", userID, amount, newBalance)
	SendSuccessResponse(w, http.StatusOK, map[string]any{
		"amount":      amount,
		"new_balance": newBalance,
	})
}

// GetAccount returns the savings account summary
// @Summary Get the savings account
// @Tags savings
// @Produce json
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /savings/account [get]
func (s *SavingsService) GetAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var account models.Account
	err := s.db.QueryRowContext(r.Context(), `
		SELECT id, user_id, balance, total_deposits, total_interest_earned,
		       has_withdrawal_this_quarter, last_interest_date, created_at, updated_at
		FROM savings_accounts
		WHERE user_id = $1`,
		userID).Scan(
		&account.ID, &account.UserID, &account.Balance, &account.TotalDeposits,
		&account.TotalInterestEarned, &account.HasWithdrawalThisQuarter,
		&account.LastInterestDate, &account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			SendErrorResponse(w, "Savings account not found", http.StatusNotFound, nil)
			return
		}
		SendErrorResponse(w, "Failed to fetch account", http.StatusInternalServerError, nil)
		return
	}

	SendSuccessResponse(w, http.StatusOK, account)
}

// ListTransactions returns the savings ledger history, newest first
// @Summary List savings ledger entries
// @Tags savings
// @Produce json
// @Param limit query int false "Number of entries to return (default: 50, max: 200)"
// @Success 200 {object} APIResponse
// @Router /savings/transactions [get]
func (s *SavingsService) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := parsePositiveInt(limitStr, 200); err == nil {
			limit = l
		}
	}

	rows, err := s.db.QueryContext(r.Context(), `
		SELECT id, account_id, user_id, type, amount, balance_after,
		       gateway_reference, metadata, description, created_at
		FROM savings_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		userID, limit)
	if err != nil {
		SendErrorResponse(w, "Failed to fetch transactions", http.StatusInternalServerError, nil)
		return
	}
	defer rows.Close()

	entries := []models.LedgerEntry{}
	for rows.Next() {
		var entry models.LedgerEntry
		if err := rows.Scan(
			&entry.ID, &entry.AccountID, &entry.UserID, &entry.Type, &entry.Amount,
			&entry.BalanceAfter, &entry.GatewayReference, &entry.Metadata,
			&entry.Description, &entry.CreatedAt,
		); err != nil {
			SendErrorResponse(w, "Failed to fetch transactions", http.StatusInternalServerError, nil)
			return
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		SendErrorResponse(w, "Failed to fetch transactions", http.StatusInternalServerError, nil)
		return
	}

	SendSuccessResponse(w, http.StatusOK, map[string]any{
		"transactions": entries,
		"count":        len(entries),
	})
}

func (s *SavingsService) queueSettlementEvent(reference, userID, purpose string, amount decimal.Decimal) {
	if s.redis == nil {
		return
	}
	event, err := json.Marshal(map[string]any{
		"reference":  reference,
		"user_id":    userID,
		"purpose":    purpose,
		"amount":     amount,
		"settled_at": time.Now().UTC(),
	})
	if err != nil {
		return
	}
	if err := s.redis.RPush(context.Background(), "settlement_events", event).Err(); err != nil {
		log.Printf("[DEPOSIT] Failed to queue settlement event for %s: %v", reference, err)
	}
}

// Utility functions

func minorToMajor(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Div(decimal.NewFromInt(100))
}

func majorToMinor(major decimal.Decimal) int64 {
	return major.Mul(decimal.NewFromInt(100)).IntPart()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func parsePositiveInt(s string, max int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 1 || n > max {
		return 0, fmt.Errorf("out of range")
	}
	return n, nil
}
