// utils/errors.go
package utils

import (
	"errors"
	"fmt"
)

var ErrUserIDNotFound = errors.New("authentication required: user ID not found")

// ValidationError reports a user-correctable field problem. It blocks wizard
// advancement but never leaves the wizard as a hard failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// ConfigurationError indicates a data or config bug such as an unknown vehicle
// or extra id. It is surfaced generically to users.
type ConfigurationError struct {
	Kind string // "vehicle", "extra"
	ID   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("unknown %s id %q", e.Kind, e.ID)
}

// PaymentError distinguishes a declined payment from an unreachable gateway.
type PaymentError struct {
	Declined bool
	Gateway  string
	Err      error
}

func (e *PaymentError) Error() string {
	if e.Declined {
		return fmt.Sprintf("payment declined by %s: %v", e.Gateway, e.Err)
	}
	return fmt.Sprintf("payment gateway %s unreachable: %v", e.Gateway, e.Err)
}

func (e *PaymentError) Unwrap() error { return e.Err }

// PersistenceError wraps a failed database write. Reconciliation is set when a
// payment was already captured, meaning the failure needs manual correction
// rather than a plain retry.
type PersistenceError struct {
	Reconciliation bool
	PaymentRef     string
	Err            error
}

func (e *PersistenceError) Error() string {
	if e.Reconciliation {
		return fmt.Sprintf("booking not persisted after captured payment %s: %v", e.PaymentRef, e.Err)
	}
	return fmt.Sprintf("persistence failure: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
