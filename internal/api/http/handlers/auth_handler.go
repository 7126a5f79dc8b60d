package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/signup-service/internal/api/dto"
	"github.com/spec-kit/signup-service/internal/auth"
	"github.com/spec-kit/signup-service/internal/domain"
	"github.com/spec-kit/signup-service/internal/observability"
	"github.com/spec-kit/signup-service/internal/pkg/validate"
	apperrors "github.com/spec-kit/signup-service/pkg/util"
)

// AuthCodeIssuer issues and checks authcodes.
type AuthCodeIssuer interface {
	Issue(ctx context.Context, email string) (*domain.AuthCode, error)
	Verify(ctx context.Context, id, candidate string) (*domain.AuthCode, error)
}

// TokenRevoker drops token grants.
type TokenRevoker interface {
	Logout(ctx context.Context, accessToken, refreshToken string) error
}

// AuthHandler exposes authcode and session endpoints.
type AuthHandler struct {
	codes   AuthCodeIssuer
	tokens  TokenRevoker
	metrics *observability.Metrics
}

// NewAuthHandler constructs handler.
func NewAuthHandler(codes AuthCodeIssuer, tokens TokenRevoker, metrics *observability.Metrics) *AuthHandler {
	return &AuthHandler{codes: codes, tokens: tokens, metrics: metrics}
}

// IssueAuthCode handles POST /auth/email/issue-authcode.
func (h *AuthHandler) IssueAuthCode(c *fiber.Ctx) error {
	var req dto.IssueAuthCodeRequest
	if err := parseAndValidate(c, &req); err != nil {
		return err
	}

	code, err := h.codes.Issue(c.UserContext(), req.Email)
	recordOutcome(h.metrics, "issue", err)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewAuthCodeResponse(code)})
}

// VerifyAuthCode handles POST /auth/verify-authcode. The code stays usable
// afterwards.
func (h *AuthHandler) VerifyAuthCode(c *fiber.Ctx) error {
	var req dto.VerifyAuthCodeRequest
	if err := parseAndValidate(c, &req); err != nil {
		return err
	}

	code, err := h.codes.Verify(c.UserContext(), req.AuthCodeID, req.Code)
	recordOutcome(h.metrics, "verify", err)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.VerifyAuthCodeResponse{AuthCodeID: code.ID, Verified: true}})
}

// Logout handles POST /auth/logout by revoking the presented access token.
// The refresh token is revoked too when the body carries it; otherwise its
// grant stays live until the refresh lifetime ends.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.LogoutRequest
	if len(c.Body()) > 0 {
		if err := parseAndValidate(c, &req); err != nil {
			return err
		}
	}
	if err := h.tokens.Logout(c.UserContext(), principal.Token, req.RefreshToken); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func parseAndValidate(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validate.Struct(req); err != nil {
		if verr, ok := err.(*validate.Error); ok {
			return apperrors.NewValidationError("request validation failed", verr.Details())
		}
		return apperrors.NewValidationError(err.Error(), nil)
	}
	return nil
}

func recordOutcome(metrics *observability.Metrics, operation string, err error) {
	if err == nil {
		metrics.RecordOutcome(operation, "ok")
		return
	}
	metrics.RecordOutcome(operation, apperrors.ToDomainError(err).Code)
}
