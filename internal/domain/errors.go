// Package domain holds the quote model and the failures the pipeline can
// report. The errors here carry no transport detail; adapters map them to
// HTTP statuses or CLI exit codes.
package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error built in this file matches exactly one of them
// under errors.Is.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrValidation  = errors.New("validation failed")
	ErrUnavailable = errors.New("unavailable")
)

// QuoteNotFoundError means neither the store nor the upstream page had a
// quote for the requested day.
type QuoteNotFoundError struct {
	Key QuoteKey

	// Date is the caller's raw input when it never became a key.
	Date string
}

func (e *QuoteNotFoundError) Error() string {
	switch {
	case e.Key != (QuoteKey{}):
		return "no quote for " + e.Key.String()
	case e.Date != "":
		return "no quote for " + e.Date
	default:
		return "no quote found"
	}
}

func (e *QuoteNotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewQuoteNotFoundError reports that no quote exists for key.
func NewQuoteNotFoundError(key QuoteKey) error {
	return &QuoteNotFoundError{Key: key}
}

// NewDateNotFoundError reports an absent quote by the date the caller sent.
func NewDateNotFoundError(date string) error {
	return &QuoteNotFoundError{Date: date}
}

// DuplicateQuoteError is an insert rejected because the key is already
// stored. Cause is the driver error, when there is one.
type DuplicateQuoteError struct {
	Key   QuoteKey
	Cause error
}

func (e *DuplicateQuoteError) Error() string {
	return "quote " + e.Key.String() + " is already stored"
}

func (e *DuplicateQuoteError) Is(target error) bool { return target == ErrConflict }

func (e *DuplicateQuoteError) Unwrap() error { return e.Cause }

// NewDuplicateQuoteError wraps a uniqueness violation for key.
func NewDuplicateQuoteError(key QuoteKey, cause error) error {
	return &DuplicateQuoteError{Key: key, Cause: cause}
}

// ValidationError rejects caller input. Message is safe to show the caller.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Message
	}

	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidationError rejects field with a caller-facing message.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewValidationErrorWithValue is NewValidationError that keeps the rejected value.
func NewValidationErrorWithValue(field, message string, value any) error {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// UnavailableError means a dependency (the store or the upstream site)
// could not be reached. Retrying later may succeed.
type UnavailableError struct {
	Dependency string
	Reason     string
}

func (e *UnavailableError) Error() string {
	if e.Reason == "" {
		return e.Dependency + " is unavailable"
	}

	return e.Dependency + " is unavailable: " + e.Reason
}

func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }

// NewUnavailableError reports dependency as unreachable.
func NewUnavailableError(dependency, reason string) error {
	return &UnavailableError{Dependency: dependency, Reason: reason}
}

func IsNotFound(err error) bool    { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool    { return errors.Is(err, ErrConflict) }
func IsValidation(err error) bool  { return errors.Is(err, ErrValidation) }
func IsUnavailable(err error) bool { return errors.Is(err, ErrUnavailable) }
