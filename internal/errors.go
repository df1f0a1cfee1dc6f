package internal

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
	ErrorTypeRateLimit    ErrorType = "RATE_LIMITED"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidRequest   ErrorCode = "INVALID_REQUEST"
	ErrCodeInvalidFilter    ErrorCode = "INVALID_FILTER"
	ErrCodeInvalidLevel     ErrorCode = "INVALID_HIERARCHY_LEVEL"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"

	// tenancy
	ErrCodeCGNotFound        ErrorCode = "CG_NOT_FOUND"
	ErrCodeRegionNotFound    ErrorCode = "REGION_NOT_FOUND"
	ErrCodeCGCodeConflict    ErrorCode = "CG_CODE_CONFLICT"
	ErrCodeCGHasDependencies ErrorCode = "CG_HAS_DEPENDENCIES"
	ErrCodeCGAccessDenied    ErrorCode = "CG_ACCESS_DENIED"
	ErrCodeScopeUnavailable  ErrorCode = "SCOPE_UNAVAILABLE"
	ErrCodeSuperAdminOnly    ErrorCode = "SUPER_ADMIN_REQUIRED"

	ErrCodeVolunteerNotFound ErrorCode = "VOLUNTEER_NOT_FOUND"
	ErrCodeUserNotFound      ErrorCode = "USER_NOT_FOUND"
	ErrCodeVolunteerLinked   ErrorCode = "VOLUNTEER_ALREADY_LINKED"
	ErrCodeRateLimited       ErrorCode = "RATE_LIMITED"

	// auth
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
)

// AppError is the only error shape written to HTTP clients. StatusCode and
// Cause stay server side.
type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func newAppError(typ ErrorType, status int, code ErrorCode, message string) *AppError {
	return &AppError{Type: typ, Code: code, Message: message, StatusCode: status}
}

// Error prefers the first field message so logs read like the response.
func (e *AppError) Error() string {
	if v, ok := e.Details.(ValidationErrors); ok && len(v.Errors) > 0 {
		return v.Errors[0].Message
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails mutates e; call it on freshly built errors, never on the
// package level sentinels below.
func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, code, message)
}

// NewValidationFieldError reports a single invalid field.
func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return NewValidationError("Validation failed", ErrCodeValidationFailed).WithDetails(ValidationErrors{
		Errors: []ValidationError{{Field: field, Message: message, Code: string(code)}},
	})
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeNotFound, http.StatusNotFound, code, message)
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeUnauthorized, http.StatusUnauthorized, code, message)
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeForbidden, http.StatusForbidden, code, message)
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeConflict, http.StatusConflict, code, message)
}

func NewInternalError(message string, cause error) *AppError {
	e := newAppError(ErrorTypeInternal, http.StatusInternalServerError, ErrCodeInternal, message)
	e.Cause = cause
	return e
}

// NewDependencyError reports a construction group that still owns active records.
func NewDependencyError(counts interface{}) *AppError {
	return NewConflictError("Construction group has active dependencies", ErrCodeCGHasDependencies).WithDetails(counts)
}

var (
	ErrCGNotFound        = NewNotFoundError("Construction group not found", ErrCodeCGNotFound)
	ErrRegionNotFound    = NewNotFoundError("Region not found", ErrCodeRegionNotFound)
	ErrCGCodeConflict    = NewConflictError("Construction group code already exists", ErrCodeCGCodeConflict)
	ErrCGAccessDenied    = NewForbiddenError("Access to construction group denied", ErrCodeCGAccessDenied)
	ErrScopeUnavailable  = NewUnauthorizedError("Authentication required", ErrCodeScopeUnavailable)
	ErrSuperAdminOnly    = NewForbiddenError("Only SUPER_ADMIN can perform this action", ErrCodeSuperAdminOnly)
	ErrVolunteerNotFound = NewNotFoundError("Volunteer not found", ErrCodeVolunteerNotFound)
	ErrUserNotFound      = NewNotFoundError("User not found", ErrCodeUserNotFound)
	ErrVolunteerLinked   = NewConflictError("Volunteer is linked to another user", ErrCodeVolunteerLinked)
	ErrRateLimited       = newAppError(ErrorTypeRateLimit, http.StatusTooManyRequests, ErrCodeRateLimited, "Too many requests")

	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrUserInactive       = NewForbiddenError("User account is inactive", ErrCodeUserInactive)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Response wraps an AppError as {"error": {...}}.
type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}
