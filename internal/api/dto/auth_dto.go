package dto

import (
	"time"

	"github.com/spec-kit/signup-service/internal/domain"
)

// IssueAuthCodeRequest payload for issuing a code to an email.
type IssueAuthCodeRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

// VerifyAuthCodeRequest identifies an authcode and the candidate value.
type VerifyAuthCodeRequest struct {
	AuthCodeID string `json:"authcode_id" validate:"required,uuid"`
	Code       string `json:"code" validate:"required,numeric,max=16"`
}

// LogoutRequest optionally names the refresh token to revoke with the session.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"omitempty,jwt"`
}

// AuthCodeResponse is returned whenever a code is issued.
type AuthCodeResponse struct {
	AuthCodeID     string    `json:"authcode_id"`
	ExpireDatetime time.Time `json:"expire_datetime"`
}

// VerifyAuthCodeResponse reports a successful match.
type VerifyAuthCodeResponse struct {
	AuthCodeID string `json:"authcode_id"`
	Verified   bool   `json:"verified"`
}

// TokenResponse carries a freshly minted token pair.
type TokenResponse struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	TokenType        string    `json:"token_type"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// NewAuthCodeResponse maps an issued code without exposing its value.
func NewAuthCodeResponse(code *domain.AuthCode) AuthCodeResponse {
	return AuthCodeResponse{AuthCodeID: code.ID, ExpireDatetime: code.ExpiresAt}
}

// NewTokenResponse maps a token pair.
func NewTokenResponse(pair *domain.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		TokenType:        pair.TokenType,
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
	}
}
