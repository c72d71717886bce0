package services

import (
	"errors"
	"fmt"
)

// Errors resolved locally, before any network call is attempted
var (
	ErrStateConflict       = errors.New("booking is not in a state that allows this transition")
	ErrAlreadyCanceled     = errors.New("booking is already canceled")
	ErrNotCancelable       = errors.New("booking can no longer be canceled")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrUnsupportedCurrency = errors.New("no payment gateway configured for currency")
	ErrAmountMismatch      = errors.New("refund and fee do not reconcile to the original price")
	ErrPaymentInFlight     = errors.New("payment has not reached a terminal state yet")
)

// ValidationError marks malformed booking/payment input, rejected before
// anything is sent to a provider.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// GatewayError carries a provider decline, network failure or timeout,
// including the provider error code when one was returned.
type GatewayError struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *GatewayError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s gateway error [%s]: %s", e.Provider, e.Code, e.Message)
	}
	return fmt.Sprintf("%s gateway error: %s", e.Provider, e.Message)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// ReconciliationError marks a provider status outside the adapter's known
// mapping. Such statuses fail closed to the unified failed status with the
// raw value preserved here.
type ReconciliationError struct {
	Provider  string
	RawStatus string
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("%s returned unmapped status %q", e.Provider, e.RawStatus)
}
