package domain

import (
	"errors"
	"fmt"
)

// Error codes shared by every service package.
const (
	CodeNotFound         = "NOT_FOUND"
	CodeValidation       = "VALIDATION_ERROR"
	CodeBookingCreate    = "BOOKING_CREATE"
	CodeInvalidBooking   = "INVALID_BOOKING"
	CodeUnsupportedState = "UNSUPPORTED_STATE"
	CodeConflict         = "CONFLICT"
	CodeInternal         = "INTERNAL"
)

// DomainError is a typed business error that the transport layer maps onto a response.
type DomainError struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewNotFoundError reports a missing entity of the given kind.
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{Code: CodeNotFound, Message: fmt.Sprintf("%s with id %s not found", entity, id)}
}

// NewValidationError reports malformed input.
func NewValidationError(message string) *DomainError {
	return &DomainError{Code: CodeValidation, Message: message}
}

// NewBookingCreateError reports a booking request rejected by a precondition.
func NewBookingCreateError(message string) *DomainError {
	return &DomainError{Code: CodeBookingCreate, Message: message}
}

// NewInvalidBookingError reports an action the actor is not entitled to perform on a booking.
func NewInvalidBookingError(message string) *DomainError {
	return &DomainError{Code: CodeInvalidBooking, Message: message}
}

// NewUnsupportedStateError reports an unknown booking state filter. The message is part of
// the public contract and does not echo the rejected value.
func NewUnsupportedStateError() *DomainError {
	return &DomainError{Code: CodeUnsupportedState, Message: "Unknown state: UNSUPPORTED_STATUS"}
}

// NewConflictError reports a uniqueness or concurrent-modification conflict.
func NewConflictError(message string) *DomainError {
	return &DomainError{Code: CodeConflict, Message: message}
}

// CodeOf returns the domain code carried by err, or CodeInternal.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// IsNotFound reports whether err is a not-found domain error.
func IsNotFound(err error) bool {
	return CodeOf(err) == CodeNotFound
}
