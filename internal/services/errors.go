package services

import (
	"errors"
	"fmt"
)

// Sentinel errors for the settlement and scheduling paths. Handlers map them
// to HTTP statuses; everything else is a 500.
var (
	ErrBelowMinimum        = errors.New("amount below minimum deposit")
	ErrInvalidPlan         = errors.New("invalid subscription plan")
	ErrInvalidFrequency    = errors.New("invalid frequency")
	ErrNotFound            = errors.New("not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// GatewayError marks a failed call to the payment gateway. No ledger writes
// have happened when it is returned, so the operation is safe to retry.
type GatewayError struct {
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway error: %v", e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// PaymentNotSuccessfulError reports that the gateway resolved the reference
// to a non-success status. The gateway status is surfaced to the caller.
type PaymentNotSuccessfulError struct {
	Status string
}

func (e *PaymentNotSuccessfulError) Error() string {
	return fmt.Sprintf("payment not successful, gateway status: %s", e.Status)
}
