package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/signup-service/internal/api/http/handlers"
	"github.com/spec-kit/signup-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/email/issue-authcode", cfg.Auth.IssueAuthCode)
	authGroup.Post("/verify-authcode", cfg.Auth.VerifyAuthCode)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, cfg.Auth.Logout)

	users := app.Group("/users")
	users.Post("/register", cfg.Users.Register)
	users.Post("/register/verify", cfg.Users.VerifyRegistration)
	users.Get("/me", cfg.AuthMiddleware.Handle, auth.RequireActiveAccount(), cfg.Users.Me)
}
