package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthorizationDenied indicates a non-administrator tried to register an offering
	ErrAuthorizationDenied = errors.New("operator is not authorized to register offerings")

	// ErrOfferingNotFound indicates that the requested offering does not exist
	ErrOfferingNotFound = errors.New("offering not found")

	// ErrCustomerNotFound indicates that no buyer is mapped to the provider customer id
	ErrCustomerNotFound = errors.New("no customer mapping found")

	// ErrMalformedEvent indicates a payment event without the correlation metadata we need
	ErrMalformedEvent = errors.New("payment event is missing correlation metadata")

	// ErrAuthenticityFailure indicates a payment event whose payload or signature failed verification
	ErrAuthenticityFailure = errors.New("payment event failed authenticity check")

	// ErrNoActiveDialog indicates input arrived for a conversation with no registration in progress
	ErrNoActiveDialog = errors.New("no registration in progress")
)

// ValidationError is recoverable operator input rejected by a dialog step.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
