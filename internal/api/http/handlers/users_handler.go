package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/signup-service/internal/api/dto"
	"github.com/spec-kit/signup-service/internal/auth"
	"github.com/spec-kit/signup-service/internal/domain"
	"github.com/spec-kit/signup-service/internal/observability"
	apperrors "github.com/spec-kit/signup-service/pkg/util"
)

// Registrar stages registrations and completes them.
type Registrar interface {
	Register(ctx context.Context, profile domain.Profile) (*domain.AuthCode, error)
	Complete(ctx context.Context, id, candidate string) (*domain.Account, *domain.TokenPair, error)
}

// UsersHandler exposes registration endpoints for end-users.
type UsersHandler struct {
	registrations Registrar
	metrics       *observability.Metrics
}

// NewUsersHandler constructs handler.
func NewUsersHandler(registrations Registrar, metrics *observability.Metrics) *UsersHandler {
	return &UsersHandler{registrations: registrations, metrics: metrics}
}

// Register handles POST /users/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := parseAndValidate(c, &req); err != nil {
		return err
	}
	profile, err := req.Profile()
	if err != nil {
		return apperrors.NewValidationError("invalid birthday", map[string]any{"birthday": "datetime"})
	}

	code, err := h.registrations.Register(c.UserContext(), profile)
	recordOutcome(h.metrics, "register", err)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewAuthCodeResponse(code)})
}

// VerifyRegistration handles POST /users/register/verify.
func (h *UsersHandler) VerifyRegistration(c *fiber.Ctx) error {
	var req dto.VerifyAuthCodeRequest
	if err := parseAndValidate(c, &req); err != nil {
		return err
	}

	account, tokens, err := h.registrations.Complete(c.UserContext(), req.AuthCodeID, req.Code)
	recordOutcome(h.metrics, "promote", err)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.RegisterVerifyResponse{
			User:  dto.NewUserResponse(*account),
			Token: dto.NewTokenResponse(tokens),
		},
	})
}

// Me handles GET /users/me with the account snapshot held by the grant.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(principal.Account())})
}
