package model

import (
	"errors"
	"fmt"
)

// Error kinds returned by the core services. The HTTP layer maps each kind
// to a stable status code.
const (
	ErrKindNotFound        = "NOT_FOUND"
	ErrKindValidation      = "VALIDATION_FAILED"
	ErrKindStateConflict   = "STATE_CONFLICT"
	ErrKindEmptyCart       = "EMPTY_CART"
	ErrKindStaleReference  = "STALE_REFERENCE"
	ErrKindExternalService = "EXTERNAL_SERVICE_FAILURE"
)

// DomainError is a typed business error. Services recover infrastructure
// failures into one of these at the component boundary.
type DomainError struct {
	Kind    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error.
func NewDomainError(kind, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Message: message,
	}
}

// NotFoundError reports a missing referenced entity.
func NotFoundError(format string, args ...any) *DomainError {
	return NewDomainError(ErrKindNotFound, fmt.Sprintf(format, args...))
}

// ValidationError reports structurally invalid input.
func ValidationError(format string, args ...any) *DomainError {
	return NewDomainError(ErrKindValidation, fmt.Sprintf(format, args...))
}

// StateConflictError reports a transition that is not legal from the
// entity's current state.
func StateConflictError(format string, args ...any) *DomainError {
	return NewDomainError(ErrKindStateConflict, fmt.Sprintf(format, args...))
}

// StaleReferenceError reports a cart line pointing at a product that is no
// longer purchasable.
func StaleReferenceError(format string, args ...any) *DomainError {
	return NewDomainError(ErrKindStaleReference, fmt.Sprintf(format, args...))
}

// ExternalServiceError reports a failed external-provider call that is not
// the caller's fault.
func ExternalServiceError(format string, args ...any) *DomainError {
	return NewDomainError(ErrKindExternalService, fmt.Sprintf(format, args...))
}

// ErrCartEmpty is returned when checkout is attempted with no cart lines.
var ErrCartEmpty = NewDomainError(ErrKindEmptyCart, "cart is empty")

// IsKind reports whether err is a DomainError of the given kind.
func IsKind(err error, kind string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind == kind
	}
	return false
}

// AsDomainError unwraps err into a DomainError, or nil if it is not one.
func AsDomainError(err error) *DomainError {
	var de *DomainError
	if errors.As(err, &de) {
		return de
	}
	return nil
}
