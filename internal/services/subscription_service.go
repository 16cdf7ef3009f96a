package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sterlingcraftco/taxaware-backend/internal/config"
	"github.com/sterlingcraftco/taxaware-backend/internal/models"
	"github.com/sterlingcraftco/taxaware-backend/internal/paystack"
)

// SubscriptionService handles premium plan billing: checkout initialization,
// payment verification and the wholesale upsert of the user's live
// subscription row. Payment history is append-only and keyed by the gateway
// reference.
type SubscriptionService struct {
	db        *sql.DB
	gateway   *paystack.Client
	validator *ValidationHelper
	cfg       config.BillingConfig
}

func NewSubscriptionService(db *sql.DB, gateway *paystack.Client, cfg config.BillingConfig) *SubscriptionService {
	return &SubscriptionService{
		db:        db,
		gateway:   gateway,
		validator: NewValidationHelper(),
		cfg:       cfg,
	}
}

type InitializeSubscriptionRequest struct {
	Plan        string `json:"plan" validate:"required,oneof=monthly annual"`
	Email       string `json:"email" validate:"required,email"`
	CallbackURL string `json:"callback_url" validate:"omitempty,url"`
}

type VerifySubscriptionRequest struct {
	Reference string `json:"reference" validate:"required"`
}

// InitializeSubscription starts a gateway checkout for a paid plan
// @Summary Initialize a subscription payment
// @Description The plan price comes from server configuration, never from the request
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param request body InitializeSubscriptionRequest true "Plan selection"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Failure 502 {object} APIResponse
// @Router /subscriptions/initialize [post]
func (s *SubscriptionService) InitializeSubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	maxBytes := 1_048_576 // 1 MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req InitializeSubscriptionRequest
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

	amount, err := s.planAmount(req.Plan)
	if err != nil {
		SendErrorResponse(w, ErrInvalidPlan.Error(), http.StatusBadRequest, nil)
		return
	}

	session, err := s.gateway.InitializeTransaction(r.Context(), paystack.InitializeRequest{
		Email:       req.Email,
		Amount:      majorToMinor(amount),
		CallbackURL: req.CallbackURL,
		Metadata: map[string]any{
			"purpose": "subscription",
			"plan":    req.Plan,
			"user_id": userID,
		},
	})
	if err != nil {
		log.Printf("[SUBSCRIPTION] Gateway initialize failed for user %s: %v", userID, err)
		SendErrorResponse(w, "Payment gateway unavailable, please retry", http.StatusBadGateway, nil)
		return
	}

	log.Printf("[SUBSCRIPTION] Checkout initialized for user %s, plan %s, reference: %s", userID, req.Plan, session.Reference)
	SendSuccessResponse(w, http.StatusOK, map[string]any{
		"authorization_url": session.AuthorizationURL,
		"access_code":       session.AccessCode,
		"reference":         session.Reference,
		"plan":              req.Plan,
		"amount":            amount,
	})
}

// VerifySubscription verifies a payment reference and activates the plan
// @Summary Verify and apply a subscription payment
// @Description Record the payment at most once, then overwrite the live subscription row
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param request body VerifySubscriptionRequest true "Verification request"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Failure 502 {object} APIResponse
// @Router /subscriptions/verify [post]
func (s *SubscriptionService) VerifySubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	maxBytes := 1_048_576 // 1 MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req VerifySubscriptionRequest
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
		log.Printf("[SUBSCRIPTION] Verify failed for reference %s: %v", req.Reference, &GatewayError{Err: err})
		SendErrorResponse(w, "Payment gateway unavailable, please retry", http.StatusBadGateway, nil)
		return
	}

	if verification.Status != "success" {
		log.Printf("[SUBSCRIPTION] Payment not successful for reference %s, status: %s", req.Reference, verification.Status)
		payErr := &PaymentNotSuccessfulError{Status: verification.Status}
		SendErrorResponse(w, payErr.Error(), http.StatusBadRequest, nil)
		return
	}

	// A reference settles only on the surface that initialized it; a deposit
	// reference must not activate a plan.
	if purpose, _ := verification.Metadata["purpose"].(string); purpose != "subscription" {
		log.Printf("[SUBSCRIPTION] Reference %s carries purpose %q, refusing to settle as a subscription", req.Reference, purpose)
		SendErrorResponse(w, "Reference is not a subscription payment", http.StatusBadRequest, nil)
		return
	}
	if owner, _ := verification.Metadata["user_id"].(string); owner != userID {
		log.Printf("[SUBSCRIPTION] Reference %s was initialized by user %s, claimed by %s", req.Reference, owner, userID)
		SendErrorResponse(w, "Reference does not belong to this user", http.StatusForbidden, nil)
		return
	}

	plan, _ := verification.Metadata["plan"].(string)
	if plan != models.PlanMonthly && plan != models.PlanAnnual {
		log.Printf("[SUBSCRIPTION] Reference %s carries unknown plan %q", req.Reference, plan)
		SendErrorResponse(w, ErrInvalidPlan.Error(), http.StatusBadRequest, nil)
		return
	}

	amount := minorToMajor(verification.Amount)
	now := time.Now()
	periodEnd := endOfYear(now)

	// Append-only history first. A unique violation on the reference means
	// this payment was already applied; no further writes happen.
	_, err = s.db.ExecContext(r.Context(), `
		INSERT INTO subscription_payments
		(id, user_id, plan, amount, status, gateway_reference, period_start, period_end, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())`,
		uuid.NewString(), userID, plan, amount, models.PaymentSuccess,
		req.Reference, now, periodEnd)
	if err != nil {
		if isUniqueViolation(err) {
			log.Printf("[SUBSCRIPTION] Duplicate settlement for reference %s, no writes performed", req.Reference)
			settlementsTotal.WithLabelValues("subscription", "duplicate").Inc()
			SendSuccessResponse(w, http.StatusOK, map[string]any{
				"reference":         req.Reference,
				"already_processed": true,
			})
			return
		}
		log.Printf("[SUBSCRIPTION] Failed to record payment %s: %v", req.Reference, err)
		SendErrorResponse(w, "Failed to record payment, please retry", http.StatusInternalServerError, nil)
		return
	}

	subscription, err := s.activateSubscription(r.Context(), userID, plan, amount, now, periodEnd)
	if err != nil {
		// The payment row stands; reconciliation can replay the activation.
		log.Printf("[SUBSCRIPTION] Payment %s recorded but activation failed: %v", req.Reference, err)
		SendErrorResponse(w, "Payment recorded but activation failed, please retry", http.StatusInternalServerError, nil)
		return
	}

	settlementsTotal.WithLabelValues("subscription", "applied").Inc()
	log.Printf("[SUBSCRIPTION] User %s activated on %s plan until %s", userID, plan, periodEnd.Format("2006-01-02"))
	SendSuccessResponse(w, http.StatusOK, map[string]any{
		"reference":         req.Reference,
		"subscription":      subscription,
		"already_processed": false,
	})
}

// activateSubscription overwrites the user's live subscription row. Whatever
// the previous state (expired, cancelled, a different plan), the verified
// payment wins.
func (s *SubscriptionService) activateSubscription(ctx context.Context, userID, plan string, amount decimal.Decimal, periodStart, periodEnd time.Time) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO subscriptions
		(id, user_id, plan, status, amount, current_period_start, current_period_end, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			plan                 = EXCLUDED.plan,
			status               = EXCLUDED.status,
			amount               = EXCLUDED.amount,
			current_period_start = EXCLUDED.current_period_start,
			current_period_end   = EXCLUDED.current_period_end,
			cancelled_at         = NULL,
			updated_at           = NOW()
		RETURNING id, user_id, plan, status, gateway_subscription_code, amount,
		          current_period_start, current_period_end, cancelled_at, updated_at`,
		uuid.NewString(), userID, plan, models.SubscriptionActive, amount, periodStart, periodEnd).Scan(
		&sub.ID, &sub.UserID, &sub.Plan, &sub.Status, &sub.GatewaySubscriptionCode,
		&sub.Amount, &sub.CurrentPeriodStart, &sub.CurrentPeriodEnd, &sub.CancelledAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetSubscription returns the caller's subscription state
// @Summary Get the current subscription
// @Description Users with no subscription row are on the free plan
// @Tags subscriptions
// @Produce json
// @Success 200 {object} APIResponse
// @Router /subscriptions [get]
func (s *SubscriptionService) GetSubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var sub models.Subscription
	err := s.db.QueryRowContext(r.Context(), `
		SELECT id, user_id, plan, status, gateway_subscription_code, amount,
		       current_period_start, current_period_end, cancelled_at, updated_at
		FROM subscriptions
		WHERE user_id = $1`,
		userID).Scan(
		&sub.ID, &sub.UserID, &sub.Plan, &sub.Status, &sub.GatewaySubscriptionCode,
		&sub.Amount, &sub.CurrentPeriodStart, &sub.CurrentPeriodEnd, &sub.CancelledAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			SendSuccessResponse(w, http.StatusOK, map[string]any{
				"plan":   models.PlanFree,
				"status": models.SubscriptionActive,
			})
			return
		}
		SendErrorResponse(w, "Failed to fetch subscription", http.StatusInternalServerError, nil)
		return
	}

	SendSuccessResponse(w, http.StatusOK, sub)
}

func (s *SubscriptionService) planAmount(plan string) (decimal.Decimal, error) {
	switch plan {
	case models.PlanMonthly:
		return s.cfg.MonthlyAmount, nil
	case models.PlanAnnual:
		return s.cfg.AnnualAmount, nil
	default:
		return decimal.Zero, ErrInvalidPlan
	}
}

// endOfYear is the last instant of the calendar year containing t; both plans
// run until then under the current billing model.
func endOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.December, 31, 23, 59, 59, int(999*time.Millisecond), t.Location())
}
