package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/api/http/handlers"
	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health *handlers.HealthHandler
	Auth   *handlers.AuthHandler
	Users  *handlers.UsersHandler
	Admin  *handlers.AdminHandler
	Gate   *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/signin", cfg.Auth.SignIn)
	authGroup.Post("/signup", cfg.Auth.SignUp)
	authGroup.Post("/reissue", cfg.Auth.Reissue)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)
	authGroup.Get("/version", cfg.Auth.Version)

	userGroup := authGroup.Group("/user", cfg.Gate.Require(domain.RoleUser))
	userGroup.Get("/info", cfg.Users.Info)
	userGroup.Post("/update", cfg.Users.Update)
	userGroup.Delete("/delete", cfg.Users.Delete)
	userGroup.Post("/password/change", cfg.Users.ChangePassword)
	userGroup.Post("/get_batch", cfg.Users.GetBatch)
	userGroup.Get("/:id", cfg.Users.Get)

	adminGroup := authGroup.Group("/admin", cfg.Gate.Require(domain.RoleAdmin))
	adminGroup.Get("/users", cfg.Admin.List)
	adminGroup.Post("/users", cfg.Admin.Create)
	adminGroup.Post("/users/:id", cfg.Admin.Update)
	adminGroup.Delete("/users/:id", cfg.Admin.Delete)
}
