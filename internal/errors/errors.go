// Package errors provides custom error types for the account service API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrAuthenticationRequired = &AppError{Code: "AUTHENTICATION_REQUIRED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials     = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrAccessDenied           = &AppError{Code: "ACCESS_DENIED", Message: "Access Denied!", StatusCode: http.StatusForbidden}
	ErrAccountLocked          = &AppError{Code: "ACCOUNT_LOCKED", Message: "User account is locked", StatusCode: http.StatusUnauthorized}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User & role errors.
var (
	ErrUserNotFound         = &AppError{Code: "USER_NOT_FOUND", Message: "User not found!", StatusCode: http.StatusNotFound}
	ErrRoleNotFound         = &AppError{Code: "ROLE_NOT_FOUND", Message: "Role not found!", StatusCode: http.StatusNotFound}
	ErrUserExists           = &AppError{Code: "USER_EXISTS", Message: "User exist!", StatusCode: http.StatusBadRequest}
	ErrForbiddenOperation   = &AppError{Code: "FORBIDDEN_OPERATION", Message: "Operation not allowed on this account", StatusCode: http.StatusBadRequest}
	ErrInvalidRoleOperation = &AppError{Code: "INVALID_ROLE_OPERATION", Message: "Invalid role operation", StatusCode: http.StatusBadRequest}
)

// Password policy errors. Breached passwords reuse the WEAK_PASSWORD code
// with a different message.
var (
	ErrWeakPassword  = &AppError{Code: "WEAK_PASSWORD", Message: "Password length must be 12 chars minimum!", StatusCode: http.StatusBadRequest}
	ErrPasswordReuse = &AppError{Code: "PASSWORD_REUSE", Message: "The passwords must be different!", StatusCode: http.StatusBadRequest}
)

// Payroll errors.
var (
	ErrPaymentNotFound = &AppError{Code: "PAYMENT_NOT_FOUND", Message: "Payment not found!", StatusCode: http.StatusNotFound}
	ErrDuplicatePeriod = &AppError{Code: "DUPLICATE_PERIOD", Message: "Duplicate employee and period pair", StatusCode: http.StatusBadRequest}
)
