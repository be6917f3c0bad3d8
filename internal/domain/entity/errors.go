package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrOrderNotFound is returned when no order exists for the given id
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidOrderState is returned when an operation is attempted
	// against an order whose status forbids it
	ErrInvalidOrderState = errors.New("invalid order state")

	// ErrUnauthorized is returned when the caller is not allowed to act on
	// the order, e.g. a cancel attempted by a non-creator
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidQuote is returned when the routing service responds with a
	// payload missing required mint or amount fields
	ErrInvalidQuote = errors.New("invalid quote payload")
)

// ValidationError reports a bad input value, detected before any network
// call and without mutating stored state.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for the given field
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// QuoteServiceError is a non-success response from the quote endpoint,
// carrying the service's own error message when it provided one.
type QuoteServiceError struct {
	StatusCode int
	Message    string
}

func (e *QuoteServiceError) Error() string {
	return fmt.Sprintf("quote service: status %d: %s", e.StatusCode, e.Message)
}

// TransactionBuildError is a non-success response from the swap endpoint
type TransactionBuildError struct {
	StatusCode int
	Message    string
}

func (e *TransactionBuildError) Error() string {
	return fmt.Sprintf("transaction build: status %d: %s", e.StatusCode, e.Message)
}

// NetworkSubmissionError reports a failed submission, confirmation, or
// on-chain execution. The lifecycle manager raises it after recording the
// failure on the order.
type NetworkSubmissionError struct {
	Signature string
	Message   string
}

func (e *NetworkSubmissionError) Error() string {
	if e.Signature == "" {
		return fmt.Sprintf("network submission: %s", e.Message)
	}
	return fmt.Sprintf("network submission: %s: %s", e.Signature, e.Message)
}
