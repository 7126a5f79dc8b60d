package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/signup-service/internal/domain"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
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

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// sentinelErrors maps engine sentinels to their outward signal. Order matters:
// the first match wins.
var sentinelErrors = []struct {
	target  error
	code    string
	message string
	status  int
}{
	{domain.ErrCodeMismatch, "AUTHCODE_INVALID", "authentication failed", http.StatusUnauthorized},
	{domain.ErrCodeExpired, "AUTHCODE_EXPIRED", "authcode has expired", http.StatusForbidden},
	{domain.ErrStagingNotFound, "REGISTRATION_NOT_FOUND", "registration is no longer pending; request a new code", http.StatusGone},
	{domain.ErrDuplicateEmail, "EMAIL_ALREADY_REGISTERED", "email address is already in use", http.StatusConflict},
	{domain.ErrUsernameTaken, "CONFLICT", "username already taken", http.StatusConflict},
	{domain.ErrTokenInvalid, "UNAUTHORIZED", "invalid token", http.StatusUnauthorized},
	{domain.ErrTokenRevoked, "UNAUTHORIZED", "token revoked or expired", http.StatusUnauthorized},
	{domain.ErrAccountInactive, "FORBIDDEN", "account locked or deleted", http.StatusForbidden},
	{domain.ErrAccountNotFound, "NOT_FOUND", "account not found", http.StatusNotFound},
	{domain.ErrStoreUnavailable, "STORE_UNAVAILABLE", "backing store unavailable", http.StatusServiceUnavailable},
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	for _, s := range sentinelErrors {
		if errors.Is(err, s.target) {
			return &DomainError{Code: s.code, Message: s.message, HTTPStatus: s.status, Err: err}
		}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	if de, ok := NewInternalError(err).(*DomainError); ok {
		return de
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}
