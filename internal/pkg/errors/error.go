package xerrors

import (
	"errors"
	"fmt"
)

// Common reusable application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized access")
	ErrForbidden    = errors.New("forbidden")
	ErrInternal     = errors.New("internal server error")
	ErrConflict     = errors.New("conflict: resource already exists")
)

// Billing and offboarding errors
var (
	// ErrPlanLocked signals a plan change attempt while the subscription
	// is bound to its current plan until renewal.
	ErrPlanLocked = errors.New("payment plan is locked until renewal")

	// ErrMissingProof signals a bank transfer submission without a proof reference.
	ErrMissingProof = errors.New("bank transfer proof is required")

	// ErrSubscriptionInactive signals a feature-gated action attempted
	// without an active subscription.
	ErrSubscriptionInactive = errors.New("subscription is not active")

	// ErrGateway signals a payment gateway failure or decline.
	ErrGateway = errors.New("payment gateway error")

	// ErrWindowExpired signals a withdraw attempt after the 24-hour undo window.
	ErrWindowExpired = errors.New("undo window has expired")

	// ErrDuplicateRequest signals a second non-terminal offboarding request
	// for the same staff member.
	ErrDuplicateRequest = errors.New("an offboarding request is already in progress for this staff member")
)

// ValidationError carries per-field messages for bad user input. The input is
// locally recoverable; no state change is attempted.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %d field(s)", len(e.Fields))
}

// NewValidationError builds a ValidationError from a field->message map.
func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// AsValidation extracts a ValidationError from an error chain.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Wrap adds context to an error (similar to fmt.Errorf("%w")).
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is allows checking whether an error is a specific sentinel error.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
