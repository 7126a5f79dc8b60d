package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/signup-service/internal/domain"
	apperrors "github.com/spec-kit/signup-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	Token string
	Grant *domain.TokenGrant
}

// Account returns the account snapshot taken when the token was minted.
func (p *Principal) Account() domain.Account {
	return p.Grant.Account
}

// GrantIntrospector resolves a bearer token into its live grant.
type GrantIntrospector interface {
	Introspect(ctx context.Context, token string) (*domain.TokenGrant, error)
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	grants GrantIntrospector
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(grants GrantIntrospector) *AuthMiddleware {
	return &AuthMiddleware{grants: grants}
}

// Handle enforces authentication for protected routes. Only access tokens
// with a live grant are accepted.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	grant, err := m.grants.Introspect(c.UserContext(), parts[1])
	if err != nil {
		return err
	}
	if grant.Use != domain.TokenUseAccess {
		return apperrors.NewUnauthorized("access token required")
	}

	c.Locals(principalKey, &Principal{Token: parts[1], Grant: grant})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
