package domain

import "errors"

// Sentinel errors for the code, registration and token lifecycle.
// Engines wrap these with %w so transports can map them with errors.Is.
var (
	// ErrCodeMismatch covers both an unknown code id and a wrong code value.
	ErrCodeMismatch = errors.New("authcode not found or mismatch")
	// ErrCodeExpired is only returned once id and code both matched.
	ErrCodeExpired      = errors.New("authcode expired")
	ErrStagingNotFound  = errors.New("staged registration not found")
	ErrDuplicateEmail   = errors.New("email already registered")
	ErrUsernameTaken    = errors.New("username already taken")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrTokenInvalid     = errors.New("token invalid")
	ErrTokenRevoked     = errors.New("token revoked or expired")
	ErrAccountNotFound  = errors.New("account not found")
	ErrAccountInactive  = errors.New("account locked or deleted")
)
