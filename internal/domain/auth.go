package domain

import "time"

// TokenUse differentiates access vs refresh tokens.
type TokenUse string

const (
	TokenUseAccess  TokenUse = "access"
	TokenUseRefresh TokenUse = "refresh"
)

// TokenTypeBearer is the token_type reported to clients.
const TokenTypeBearer = "bearer"

// TokenGrant associates an issued token id with the account it was minted for.
type TokenGrant struct {
	TokenID   string    `json:"jti"`
	Use       TokenUse  `json:"use"`
	Account   Account   `json:"account"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenPair is the result of minting tokens for an account.
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	TokenType        string    `json:"token_type"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}
