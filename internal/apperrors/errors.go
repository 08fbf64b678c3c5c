// internal/apperrors/errors.go
package apperrors

import (
	"net/http"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
	kind      *BaseError
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// newKindError creates an error that also matches its broader kind with errors.Is
func newKindError(kind *BaseError, errorCode, message string) *BaseError {
	e := NewBaseError(kind.httpCode, errorCode, message, "")
	e.kind = kind
	return e
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.details != "" {
		return e.message + ": " + e.details
	}
	return e.message
}

// Is matches on the business code so copies made by WithDetails still compare equal
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	if !ok {
		return false
	}
	if e.errorCode == t.errorCode {
		return true
	}
	return e.kind != nil && e.kind.Is(t)
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
		kind:      e.kind,
	}
}

// Predefined error kinds
var (
	ErrUnauthenticated = NewBaseError(
		http.StatusUnauthorized,
		"UNAUTHENTICATED",
		"Authentication required",
		"",
	)

	ErrForbidden = NewBaseError(
		http.StatusForbidden,
		"FORBIDDEN",
		"Insufficient permissions",
		"",
	)

	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"NOT_FOUND",
		"Resource not found",
		"",
	)

	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"Validation failed",
		"",
	)

	ErrInsufficientStock = NewBaseError(
		http.StatusConflict,
		"INSUFFICIENT_STOCK",
		"Requested quantity exceeds available stock",
		"",
	)

	ErrConflict = NewBaseError(
		http.StatusConflict,
		"CONFLICT",
		"Resource already exists",
		"",
	)

	ErrPersistenceFailure = NewBaseError(
		http.StatusInternalServerError,
		"PERSISTENCE_FAILURE",
		"Failed to access storage",
		"",
	)
)

// Specific errors
var (
	ErrProductNotFound  = newKindError(ErrNotFound, "PRODUCT_NOT_FOUND", "Product not found")
	ErrCategoryNotFound = newKindError(ErrNotFound, "CATEGORY_NOT_FOUND", "Category not found")
	ErrCartLineNotFound = newKindError(ErrNotFound, "CART_LINE_NOT_FOUND", "Cart item not found")
	ErrOrderNotFound    = newKindError(ErrNotFound, "ORDER_NOT_FOUND", "Order not found")
	ErrUserNotFound     = newKindError(ErrNotFound, "USER_NOT_FOUND", "User not found")

	ErrEmptyCart       = newKindError(ErrValidationFailed, "EMPTY_CART", "Cart is empty")
	ErrInvalidQuantity = newKindError(ErrValidationFailed, "INVALID_QUANTITY", "Quantity must be at least 1")
	ErrInvalidPrice    = newKindError(ErrValidationFailed, "INVALID_PRICE", "Compare-at price must not be lower than price")

	ErrEmailTaken = newKindError(ErrConflict, "EMAIL_TAKEN", "Email already registered")
	ErrSlugTaken  = newKindError(ErrConflict, "SLUG_TAKEN", "Slug already in use")

	ErrInvalidCredentials = newKindError(ErrUnauthenticated, "INVALID_CREDENTIALS", "Invalid email or password")
	ErrInvalidToken       = newKindError(ErrUnauthenticated, "INVALID_TOKEN", "Invalid or expired token")
)

// Persistence wraps a storage error so it surfaces as PersistenceFailure
func Persistence(err error, message string) error {
	if err == nil {
		return nil
	}
	return Wrap(ErrPersistenceFailure.WithDetails(err.Error()), message)
}

// From extracts the AppError carried by err, falling back to PersistenceFailure
func From(err error) AppError {
	var appErr AppError
	if As(err, &appErr) {
		return appErr
	}
	return ErrPersistenceFailure.WithDetails(err.Error())
}
