package model

import (
	"errors"
	"fmt"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeValidation        = "VALIDATION_FAILED"
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
	ErrCodePayment           = "PAYMENT_FAILED"
	ErrCodeEmptyCart         = "EMPTY_CART"
	ErrCodeInvalidState      = "INVALID_STATE"
	ErrCodePersistence       = "PERSISTENCE_ERROR"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// DomainError is a business-rule failure that is safe to show to the caller.
// Two domain errors match under errors.Is when their codes are equal.
type DomainError struct {
	Code    string
	Message string
	Fields  map[string]string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Sentinels for errors.Is checks. Use the constructors below to build
// errors carrying specific detail.
var (
	ErrNotFound          = NewDomainError(ErrCodeNotFound, "Resource not found")
	ErrUnauthorised      = NewDomainError(ErrCodeUnauthorised, "Not authorised")
	ErrValidation        = NewDomainError(ErrCodeValidation, "Validation failed")
	ErrInsufficientStock = NewDomainError(ErrCodeInsufficientStock, "Insufficient stock")
	ErrPayment           = NewDomainError(ErrCodePayment, "Payment was not completed")
	ErrEmptyCart         = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrInvalidState      = NewDomainError(ErrCodeInvalidState, "Operation not allowed in current state")
	ErrPersistence       = NewDomainError(ErrCodePersistence, "Could not save changes")
)

// NewNotFoundError reports a missing resource of the given kind.
func NewNotFoundError(resource string) *DomainError {
	return NewDomainError(ErrCodeNotFound, resource+" not found")
}

// NewAuthorizationError reports an access the caller is not allowed to make.
func NewAuthorizationError(message string) *DomainError {
	return NewDomainError(ErrCodeUnauthorised, message)
}

// NewValidationError carries field-level messages.
func NewValidationError(fields map[string]string) *DomainError {
	return &DomainError{
		Code:    ErrCodeValidation,
		Message: "Validation failed",
		Fields:  fields,
	}
}

// NewInsufficientStockError names the product that cannot be filled.
func NewInsufficientStockError(productName string) *DomainError {
	return NewDomainError(ErrCodeInsufficientStock, fmt.Sprintf("%s is out of stock", productName))
}

// NewPaymentError wraps the provider failure.
func NewPaymentError(message string, err error) *DomainError {
	return &DomainError{Code: ErrCodePayment, Message: message, Err: err}
}

// NewInvalidStateError reports an operation rejected by the current state.
func NewInvalidStateError(message string) *DomainError {
	return NewDomainError(ErrCodeInvalidState, message)
}

// NewPersistenceError reports a constraint violation such as a duplicate key.
func NewPersistenceError(message string, err error) *DomainError {
	return &DomainError{Code: ErrCodePersistence, Message: message, Err: err}
}

// AsDomainError extracts a DomainError from err's chain.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Validator collects field errors.
type Validator map[string]string

// Check records message against field when ok is false.
func (v Validator) Check(ok bool, field, message string) {
	if ok {
		return
	}
	if _, exists := v[field]; !exists {
		v[field] = message
	}
}

// Err returns a validation error or nil when nothing was recorded.
func (v Validator) Err() error {
	if len(v) == 0 {
		return nil
	}
	return NewValidationError(map[string]string(v))
}
