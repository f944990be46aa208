package apperrors

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates the caller is not allowed to act on the resource.
var ErrForbidden = errors.New("forbidden")

// AppError wraps infrastructure failures with an HTTP-ish code and a message.
// Business-rule rejections use the typed errors below instead.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping an underlying cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// InsufficientFundsError is returned when a debit would drive the balance
// below zero. The balance is left untouched.
type InsufficientFundsError struct {
	Balance  int64
	Required int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: balance %d FCFA, required %d FCFA", e.Balance, e.Required)
}

// LimitScope identifies which withdrawal cap was hit.
type LimitScope string

const (
	LimitDaily   LimitScope = "DAILY"
	LimitMonthly LimitScope = "MONTHLY"
)

// LimitExceededError is returned when a withdrawal would exceed a rolling cap.
// Remaining is the headroom still available in the current window.
type LimitExceededError struct {
	Scope     LimitScope
	Cap       int64
	Remaining int64
	ResetsAt  time.Time
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("%s withdrawal limit exceeded: cap %d FCFA, %d FCFA remaining until %s",
		e.Scope, e.Cap, e.Remaining, e.ResetsAt.Format(time.RFC3339))
}

// PreconditionError is returned when a withdrawal precondition is not met.
// Missing names the specific precondition so the UI can route the user to it.
type PreconditionError struct {
	Missing string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition not met: %s", e.Missing)
}

// Precondition identifiers surfaced by the withdrawal gatekeeper.
const (
	PreconditionPayoutSettings = "payout settings not configured"
	PreconditionVerified       = "identity verification not approved"
)
