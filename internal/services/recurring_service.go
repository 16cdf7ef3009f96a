package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sterlingcraftco/taxaware-backend/internal/models"
)

// RecurringService manages recurring transaction rules and materializes due
// rules into concrete dashboard transactions. Materializations are keyed by
// (rule id, due date) so a duplicate trigger cannot double-post.
type RecurringService struct {
	db        *sql.DB
	validator *ValidationHelper
}

func NewRecurringService(db *sql.DB) *RecurringService {
	return &RecurringService{
		db:        db,
		validator: NewValidationHelper(),
	}
}

// CreateRuleRequest carries the rule template. Amount is in kobo.
type CreateRuleRequest struct {
	Amount      int64  `json:"amount" validate:"required,gt=0"`
	Category    string `json:"category" validate:"required,max=100"`
	Type        string `json:"type" validate:"required,oneof=income expense"`
	Description string `json:"description" validate:"max=200"`
	Frequency   string `json:"frequency" validate:"required,oneof=daily weekly bi-weekly monthly quarterly annually"`
	StartDate   string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
}

type UpdateRuleRequest struct {
	Amount      *int64  `json:"amount" validate:"omitempty,gt=0"`
	Category    *string `json:"category" validate:"omitempty,max=100"`
	Type        *string `json:"type" validate:"omitempty,oneof=income expense"`
	Description *string `json:"description" validate:"omitempty,max=200"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// CreateRule persists a recurring rule
// @Summary Create a recurring rule
// @Description Validate the template and seed next_occurrence to the first future due date
// @Tags recurring
// @Accept json
// @Produce json
// @Param request body CreateRuleRequest true "Rule template (amount in kobo)"
// @Success 201 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /recurring [post]
func (s *RecurringService) CreateRule(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	maxBytes := 1_048_576 // 1 MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req CreateRuleRequest
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

	start := time.Now().UTC().Truncate(24 * time.Hour)
	if req.StartDate != "" {
		parsed, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			SendErrorResponse(w, "Invalid start_date", http.StatusBadRequest, nil)
			return
		}
		start = parsed
	}

	next, err := seedNextOccurrence(req.Frequency, start, time.Now().UTC())
	if err != nil {
		SendErrorResponse(w, ErrInvalidFrequency.Error(), http.StatusBadRequest, nil)
		return
	}

	rule := models.RecurringRule{
		ID:             uuid.NewString(),
		UserID:         userID,
		Amount:         minorToMajor(req.Amount),
		Category:       req.Category,
		Type:           req.Type,
		Description:    req.Description,
		Frequency:      req.Frequency,
		NextOccurrence: next,
		IsActive:       true,
	}

	err = s.db.QueryRowContext(r.Context(), `
		INSERT INTO recurring_rules
		(id, user_id, amount, category, type, description, frequency, next_occurrence, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE, NOW(), NOW())
		RETURNING created_at, updated_at`,
		rule.ID, rule.UserID, rule.Amount, rule.Category, rule.Type, rule.Description,
		rule.Frequency, rule.NextOccurrence).Scan(&rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		log.Printf("[RECURRING] Failed to create rule for user %s: %v", userID, err)
		SendErrorResponse(w, "Failed to create rule", http.StatusInternalServerError, nil)
		return
	}

	log.Printf("[RECURRING] Rule %s created for user %s, first due %s", rule.ID, userID, rule.NextOccurrence.Format("2006-01-02"))
	SendSuccessResponse(w, http.StatusCreated, rule)
}

// ListRules returns the caller's recurring rules
// @Summary List recurring rules
// @Tags recurring
// @Produce json
// @Success 200 {object} APIResponse
// @Router /recurring [get]
func (s *RecurringService) ListRules(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	rows, err := s.db.QueryContext(r.Context(), `
		SELECT id, user_id, amount, category, type, description, frequency,
		       next_occurrence, is_active, created_at, updated_at
		FROM recurring_rules
		WHERE user_id = $1
		ORDER BY next_occurrence ASC`,
		userID)
	if err != nil {
		SendErrorResponse(w, "Failed to fetch rules", http.StatusInternalServerError, nil)
		return
	}
	defer rows.Close()

	rules := []models.RecurringRule{}
	for rows.Next() {
		var rule models.RecurringRule
		if err := rows.Scan(
			&rule.ID, &rule.UserID, &rule.Amount, &rule.Category, &rule.Type,
			&rule.Description, &rule.Frequency, &rule.NextOccurrence, &rule.IsActive,
			&rule.CreatedAt, &rule.UpdatedAt,
		); err != nil {
			SendErrorResponse(w, "Failed to fetch rules", http.StatusInternalServerError, nil)
			return
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		SendErrorResponse(w, "Failed to fetch rules", http.StatusInternalServerError, nil)
		return
	}

	SendSuccessResponse(w, http.StatusOK, map[string]any{
		"rules": rules,
		"count": len(rules),
	})
}

// UpdateRule patches a rule's template fields
// @Summary Update a recurring rule
// @Tags recurring
// @Accept json
// @Produce json
// @Param ruleId path string true "Rule ID"
// @Param request body UpdateRuleRequest true "Fields to update"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /recurring/{ruleId} [put]
func (s *RecurringService) UpdateRule(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}
	ruleID := chi.URLParam(r, "ruleId")

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req UpdateRuleRequest
	if err := dec.Decode(&req); err != nil {
		SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if err := s.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	var amount any
	if req.Amount != nil {
		amount = minorToMajor(*req.Amount)
	}

	res, err := s.db.ExecContext(r.Context(), `
		UPDATE recurring_rules
		SET amount      = COALESCE($1, amount),
		    category    = COALESCE($2, category),
		    type        = COALESCE($3, type),
		    description = COALESCE($4, description),
		    updated_at  = NOW()
		WHERE id = $5 AND user_id = $6`,
		amount, req.Category, req.Type, req.Description, ruleID, userID)
	if err != nil {
		SendErrorResponse(w, "Failed to update rule", http.StatusInternalServerError, nil)
		return
	}

	if affected, _ := res.RowsAffected(); affected == 0 {
		SendErrorResponse(w, "Rule not found", http.StatusNotFound, nil)
		return
	}

	SendSuccessResponse(w, http.StatusOK, map[string]any{"id": ruleID})
}

// DeleteRule removes a rule; deletion is always explicit, never automatic
// @Summary Delete a recurring rule
// @Tags recurring
// @Produce json
// @Param ruleId path string true "Rule ID"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /recurring/{ruleId} [delete]
func (s *RecurringService) DeleteRule(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}
	ruleID := chi.URLParam(r, "ruleId")

	res, err := s.db.ExecContext(r.Context(),
		`DELETE FROM recurring_rules WHERE id = $1 AND user_id = $2`, ruleID, userID)
	if err != nil {
		SendErrorResponse(w, "Failed to delete rule", http.StatusInternalServerError, nil)
		return
	}

	if affected, _ := res.RowsAffected(); affected == 0 {
		SendErrorResponse(w, "Rule not found", http.StatusNotFound, nil)
		return
	}

	log.Printf("[RECURRING] Rule %s deleted by user %s", ruleID, userID)
	SendSuccessResponse(w, http.StatusOK, map[string]any{"id": ruleID})
}

// ToggleRule activates or deactivates a rule
// @Summary Set a rule's active flag
// @Tags recurring
// @Accept json
// @Produce json
// @Param ruleId path string true "Rule ID"
// @Param request body SetActiveRequest true "Active flag"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /recurring/{ruleId}/toggle [patch]
func (s *RecurringService) ToggleRule(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}
	ruleID := chi.URLParam(r, "ruleId")

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req SetActiveRequest
	if err := dec.Decode(&req); err != nil {
		SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if err := s.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	res, err := s.db.ExecContext(r.Context(), `
		UPDATE recurring_rules SET is_active = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3`,
		*req.IsActive, ruleID, userID)
	if err != nil {
		SendErrorResponse(w, "Failed to update rule", http.StatusInternalServerError, nil)
		return
	}

	if affected, _ := res.RowsAffected(); affected == 0 {
		SendErrorResponse(w, "Rule not found", http.StatusNotFound, nil)
		return
	}

	SendSuccessResponse(w, http.StatusOK, map[string]any{"id": ruleID, "is_active": *req.IsActive})
}

// ProcessDue materializes a single rule if it is due
// @Summary Process one due recurring rule
// @Description Inactive or not-yet-due rules are skipped with a success response; duplicate triggers never double-post
// @Tags recurring
// @Produce json
// @Param ruleId path string true "Rule ID"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /recurring/{ruleId}/process [post]
func (s *RecurringService) ProcessDue(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}
	ruleID := chi.URLParam(r, "ruleId")

	rule, err := s.fetchRule(r.Context(), ruleID, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			SendErrorResponse(w, "Rule not found", http.StatusNotFound, nil)
			return
		}
		SendErrorResponse(w, "Failed to fetch rule", http.StatusInternalServerError, nil)
		return
	}

	// An inactive rule is intentionally skipped, not an error.
	if !rule.IsActive {
		SendSuccessResponse(w, http.StatusOK, map[string]any{
			"rule_id": rule.ID,
			"skipped": true,
			"reason":  "inactive",
		})
		return
	}

	if rule.NextOccurrence.After(time.Now().UTC()) {
		SendSuccessResponse(w, http.StatusOK, map[string]any{
			"rule_id":         rule.ID,
			"skipped":         true,
			"reason":          "not due",
			"next_occurrence": rule.NextOccurrence,
		})
		return
	}

	materialized, next, err := s.processRule(r.Context(), rule)
	if err != nil {
		log.Printf("[RECURRING] Failed to process rule %s: %v", rule.ID, err)
		SendErrorResponse(w, "Failed to process rule", http.StatusInternalServerError, nil)
		return
	}

	SendSuccessResponse(w, http.StatusOK, map[string]any{
		"rule_id":          rule.ID,
		"materialized":     materialized,
		"transaction_date": rule.NextOccurrence.Format("2006-01-02"),
		"amount":           rule.Amount,
		"next_occurrence":  next.Format("2006-01-02"),
	})
}

// ProcessDueRules materializes every due rule across all users
// @Summary Process all due recurring rules
// @Description Scheduler entry point; rules are independent and one failure does not block the rest
// @Tags recurring
// @Produce json
// @Success 200 {object} APIResponse
// @Router /recurring/process-due [post]
func (s *RecurringService) ProcessDueRules(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.QueryContext(r.Context(), `
		SELECT id, user_id, amount, category, type, description, frequency,
		       next_occurrence, is_active, created_at, updated_at
		FROM recurring_rules
		WHERE is_active = TRUE AND next_occurrence <= NOW()
		ORDER BY next_occurrence ASC`)
	if err != nil {
		SendErrorResponse(w, "Failed to scan due rules", http.StatusInternalServerError, nil)
		return
	}
	defer rows.Close()

	var dueRules []*models.RecurringRule
	for rows.Next() {
		var rule models.RecurringRule
		if err := rows.Scan(
			&rule.ID, &rule.UserID, &rule.Amount, &rule.Category, &rule.Type,
			&rule.Description, &rule.Frequency, &rule.NextOccurrence, &rule.IsActive,
			&rule.CreatedAt, &rule.UpdatedAt,
		); err != nil {
			SendErrorResponse(w, "Failed to scan due rules", http.StatusInternalServerError, nil)
			return
		}
		dueRules = append(dueRules, &rule)
	}
	if err := rows.Err(); err != nil {
		SendErrorResponse(w, "Failed to scan due rules", http.StatusInternalServerError, nil)
		return
	}

	processed := 0
	ruleErrors := []map[string]string{}
	for _, rule := range dueRules {
		if _, _, err := s.processRule(r.Context(), rule); err != nil {
			log.Printf("[RECURRING] Batch: rule %s failed: %v", rule.ID, err)
			ruleErrors = append(ruleErrors, map[string]string{"rule_id": rule.ID, "error": err.Error()})
			continue
		}
		processed++
	}

	log.Printf("[RECURRING] Due scan complete: %d processed, %d failed", processed, len(ruleErrors))
	SendSuccessResponse(w, http.StatusOK, map[string]any{
		"processed": processed,
		"errors":    ruleErrors,
	})
}

// processRule materializes rule at its current due date and advances the
// schedule, as one database transaction. The (rule id, due date) unique key
// makes retries upsert-or-skip instead of double-posting.
func (s *RecurringService) processRule(ctx context.Context, rule *models.RecurringRule) (bool, time.Time, error) {
	next, err := NextOccurrence(rule.Frequency, rule.NextOccurrence)
	if err != nil {
		return false, time.Time{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, time.Time{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO user_transactions
		(id, user_id, amount, category, type, description, transaction_date, recurring_rule_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (recurring_rule_id, transaction_date) DO NOTHING`,
		uuid.NewString(), rule.UserID, rule.Amount, rule.Category, rule.Type,
		rule.Description, rule.NextOccurrence, rule.ID)
	if err != nil {
		return false, time.Time{}, err
	}
	inserted, _ := res.RowsAffected()

	_, err = tx.ExecContext(ctx, `
		UPDATE recurring_rules SET next_occurrence = $1, updated_at = NOW()
		WHERE id = $2`,
		next, rule.ID)
	if err != nil {
		return false, time.Time{}, err
	}

	if err := tx.Commit(); err != nil {
		return false, time.Time{}, err
	}

	if inserted > 0 {
		recurringMaterializationsTotal.Inc()
	}
	return inserted > 0, next, nil
}

func (s *RecurringService) fetchRule(ctx context.Context, ruleID, userID string) (*models.RecurringRule, error) {
	var rule models.RecurringRule
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, amount, category, type, description, frequency,
		       next_occurrence, is_active, created_at, updated_at
		FROM recurring_rules
		WHERE id = $1 AND user_id = $2`,
		ruleID, userID).Scan(
		&rule.ID, &rule.UserID, &rule.Amount, &rule.Category, &rule.Type,
		&rule.Description, &rule.Frequency, &rule.NextOccurrence, &rule.IsActive,
		&rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rule, nil
}

// seedNextOccurrence returns the first due date implied by the template: the
// start date itself when it has not passed, otherwise the first occurrence
// after today.
func seedNextOccurrence(frequency string, start, now time.Time) (time.Time, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	next := start
	for next.Before(today) {
		advanced, err := NextOccurrence(frequency, next)
		if err != nil {
			return time.Time{}, err
		}
		next = advanced
	}
	// Validate the frequency even when the start date needs no advancing.
	if _, err := NextOccurrence(frequency, next); err != nil {
		return time.Time{}, err
	}
	return next, nil
}
