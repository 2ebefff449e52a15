package demurrage

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	// Business errors returned by ledger operations. No state is written
	// when one of these is returned.
	ErrBalanceTooLow           = errors.New("demurrage: balance too low")
	ErrTotalIssuanceOverflow   = errors.New("demurrage: total issuance overflow")
	ErrAmountIntoBalanceFailed = errors.New("demurrage: amount not representable as a balance")
	ErrBalanceOverflow         = errors.New("demurrage: balance overflow")

	// Input errors
	ErrInvalidAmount   = errors.New("demurrage: amount must not be negative")
	ErrUnknownCurrency = errors.New("demurrage: unknown currency")

	// Store errors
	ErrEntryNotFound = errors.New("demurrage: entry not found")
	ErrStoreClosed   = errors.New("demurrage: store is closed")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("demurrage: validation failed for %s: %s", e.Field, e.Message)
}

// MultiError represents multiple errors that occurred.
type MultiError struct {
	Errors []error
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "demurrage: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("demurrage: %d errors occurred", len(e.Errors))
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e MultiError) Unwrap() []error {
	return e.Errors
}

// Add adds an error to the multi-error.
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors.
func (e MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// First returns the first error or nil.
func (e MultiError) First() error {
	if len(e.Errors) > 0 {
		return e.Errors[0]
	}
	return nil
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEntryNotFound)
}

// IsBusinessError returns true if err is a recoverable rejection of the
// requested operation rather than an infrastructure failure.
func IsBusinessError(err error) bool {
	return errors.Is(err, ErrBalanceTooLow) ||
		errors.Is(err, ErrTotalIssuanceOverflow) ||
		errors.Is(err, ErrAmountIntoBalanceFailed) ||
		errors.Is(err, ErrBalanceOverflow)
}

// IsInputError returns true if the caller supplied an argument outside the
// operation's domain.
func IsInputError(err error) bool {
	var ve ValidationError
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrUnknownCurrency) ||
		errors.As(err, &ve)
}
