package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error kinds for business logic errors.
const (
	CodeNotFound     = 1
	CodeConflict     = 2
	CodeValidation   = 3
	CodeInternal     = 4
	CodeBadRequest   = 5
	CodeUnauthorized = 6
	CodeForbidden    = 7
	CodeExternal     = 8
)

// AppError represents a business logic error. Code classifies the error
// into one of the kinds above. Reason is a stable machine-readable
// identifier (e.g. "SKU_ALREADY_EXISTS") that clients branch on; it never
// changes for a given rule. Context carries structured detail such as the
// entity name and lookup key.
type AppError struct {
	Code    int            `json:"code"`
	Reason  string         `json:"reason"`
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
	Err     error          `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the wrapped error for use with errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// With sets key in the error's context map and returns the error, so
// callers can chain context onto a fresh constructor result.
func (e *AppError) With(key string, value any) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// NewAppError creates an AppError with the given kind, reason, message,
// and wrapped error.
func NewAppError(code int, reason, message string, err error) *AppError {
	return &AppError{Code: code, Reason: reason, Message: message, Err: err}
}

// NotFound creates a not-found error.
func NotFound(reason, message string) *AppError {
	return &AppError{Code: CodeNotFound, Reason: reason, Message: message}
}

// NotFoundFor builds the standard not-found error for an entity lookup.
// The entity name is snake_case ("collection", "service_key"); the reason
// becomes "<ENTITY>_NOT_FOUND" and the context carries entity and key.
func NotFoundFor(entity string, key any) *AppError {
	return NotFound(
		strings.ToUpper(entity)+"_NOT_FOUND",
		fmt.Sprintf("%s %v not found", strings.ReplaceAll(entity, "_", " "), key),
	).With("entity", entity).With("key", fmt.Sprint(key))
}

// Conflict creates a conflict error (uniqueness or state collisions).
func Conflict(reason, message string) *AppError {
	return &AppError{Code: CodeConflict, Reason: reason, Message: message}
}

// Validation creates a domain validation error.
func Validation(reason, message string) *AppError {
	return &AppError{Code: CodeValidation, Reason: reason, Message: message}
}

// BadRequest creates a malformed-input error.
func BadRequest(reason, message string) *AppError {
	return &AppError{Code: CodeBadRequest, Reason: reason, Message: message}
}

// Unauthorized creates a missing-or-invalid-credentials error.
func Unauthorized(reason, message string) *AppError {
	return &AppError{Code: CodeUnauthorized, Reason: reason, Message: message}
}

// Forbidden creates an insufficient-permissions error.
func Forbidden(reason, message string) *AppError {
	return &AppError{Code: CodeForbidden, Reason: reason, Message: message}
}

// External creates an error for upstream provider failures.
func External(reason, message string, err error) *AppError {
	return &AppError{Code: CodeExternal, Reason: reason, Message: message, Err: err}
}

// Internal creates an unexpected-failure error wrapping its cause.
func Internal(message string, err error) *AppError {
	return &AppError{Code: CodeInternal, Reason: "INTERNAL_ERROR", Message: message, Err: err}
}

// The Is* helpers use errors.As with kind comparison, so they match any
// *AppError carrying the same kind anywhere in the wrap chain. Use them
// instead of errors.Is, which would only match by pointer identity.

// IsNotFound reports whether err is or wraps an AppError with CodeNotFound.
func IsNotFound(err error) bool { return hasCode(err, CodeNotFound) }

// IsConflict reports whether err is or wraps an AppError with CodeConflict.
func IsConflict(err error) bool { return hasCode(err, CodeConflict) }

// IsValidation reports whether err is or wraps an AppError with CodeValidation.
func IsValidation(err error) bool { return hasCode(err, CodeValidation) }

// IsInternal reports whether err is or wraps an AppError with CodeInternal.
func IsInternal(err error) bool { return hasCode(err, CodeInternal) }

// IsBadRequest reports whether err is or wraps an AppError with CodeBadRequest.
func IsBadRequest(err error) bool { return hasCode(err, CodeBadRequest) }

// IsUnauthorized reports whether err is or wraps an AppError with CodeUnauthorized.
func IsUnauthorized(err error) bool { return hasCode(err, CodeUnauthorized) }

// IsForbidden reports whether err is or wraps an AppError with CodeForbidden.
func IsForbidden(err error) bool { return hasCode(err, CodeForbidden) }

// IsExternal reports whether err is or wraps an AppError with CodeExternal.
func IsExternal(err error) bool { return hasCode(err, CodeExternal) }

// hasCode checks whether err is or wraps an *AppError with the given kind.
func hasCode(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Reason returns the stable reason string of err, or "" when err is not
// an *AppError.
func Reason(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Reason
	}
	return ""
}

// HTTPStatusCode maps an error to an HTTP status code. Unknown errors map
// to http.StatusInternalServerError.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if err != nil && errors.As(err, &appErr) {
		switch appErr.Code {
		case CodeNotFound:
			return http.StatusNotFound
		case CodeConflict:
			return http.StatusConflict
		case CodeValidation:
			return http.StatusUnprocessableEntity
		case CodeBadRequest:
			return http.StatusBadRequest
		case CodeUnauthorized:
			return http.StatusUnauthorized
		case CodeForbidden:
			return http.StatusForbidden
		case CodeExternal:
			return http.StatusBadGateway
		case CodeInternal:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}
