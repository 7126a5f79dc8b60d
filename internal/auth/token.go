package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/signup-service/internal/domain"
)

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	secret     []byte
	method     jwt.SigningMethod
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// TokenManagerConfig carries the signing parameters.
type TokenManagerConfig struct {
	Secret     string
	Algorithm  string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// NewTokenManager builds a new manager. Only HMAC algorithms are accepted.
func NewTokenManager(cfg TokenManagerConfig) (*TokenManager, error) {
	method := jwt.GetSigningMethod(cfg.Algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", cfg.Algorithm)
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token lifetimes must be positive")
	}
	return &TokenManager{
		secret:     []byte(cfg.Secret),
		method:     method,
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}, nil
}

// WithClock replaces the time source; used by tests.
func (tm *TokenManager) WithClock(now func() time.Time) *TokenManager {
	tm.now = now
	return tm
}

// Claims describes JWT payload.
type Claims struct {
	Use domain.TokenUse `json:"use"`
	jwt.RegisteredClaims
}

// IssuedToken is a signed token plus the metadata needed to record its grant.
type IssuedToken struct {
	Token     string
	ID        string
	Use       domain.TokenUse
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TTL returns the configured lifetime for use.
func (tm *TokenManager) TTL(use domain.TokenUse) time.Duration {
	if use == domain.TokenUseRefresh {
		return tm.refreshTTL
	}
	return tm.accessTTL
}

// GenerateToken builds and signs a JWT for the account id with a fresh jti.
func (tm *TokenManager) GenerateToken(accountID int64, use domain.TokenUse) (*IssuedToken, error) {
	// JWT NumericDate is second-granular; truncate so the grant matches the claims.
	now := tm.now().Truncate(time.Second)
	expiresAt := now.Add(tm.TTL(use))
	tokenID := uuid.NewString()

	claims := &Claims{
		Use: use,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Issuer:    tm.issuer,
			Subject:   strconv.FormatInt(accountID, 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(tm.method, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return nil, err
	}
	return &IssuedToken{
		Token:     tokenString,
		ID:        tokenID,
		Use:       use,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}, nil
}

// ParseToken validates signature, issuer and time claims and returns claims.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != tm.method {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{tm.method.Alg()}),
		jwt.WithIssuer(tm.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.ID == "" {
		return nil, fmt.Errorf("%w: invalid token claims", domain.ErrTokenInvalid)
	}
	return claims, nil
}

// AccountID returns the subject as an account id.
func (c *Claims) AccountID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: subject %q", domain.ErrTokenInvalid, c.Subject)
	}
	return id, nil
}
