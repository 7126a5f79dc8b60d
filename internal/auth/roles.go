package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/signup-service/internal/domain"
	apperrors "github.com/spec-kit/signup-service/pkg/util"
)

// RequireActiveAccount rejects principals whose account was locked or
// soft-deleted when the token was minted.
func RequireActiveAccount() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !principal.Account().Active() {
			return domain.ErrAccountInactive
		}
		return c.Next()
	}
}
