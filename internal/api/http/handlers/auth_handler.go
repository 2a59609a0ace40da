package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/api/dto"
	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/service"
)

// AuthHandler exposes sign-in, sign-up and token endpoints.
type AuthHandler struct {
	auth    *service.AuthService
	version string
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, version string) *AuthHandler {
	return &AuthHandler{auth: authService, version: version}
}

// SignUp handles POST /auth/signup.
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req dto.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return fiber.NewError(http.StatusBadRequest, "name, email, password required")
	}

	user, err := h.auth.SignUp(c.UserContext(), req.Name, req.Email, req.Password, req.Image)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"user": dto.NewUserInfoFull(user)},
	})
}

// SignIn handles POST /auth/signin.
func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req dto.SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password required")
	}

	user, token, exp, err := h.auth.SignIn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, service.ErrInvalidCredentials.Error())
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.NewUserInfoFull(user),
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Reissue handles POST /auth/reissue. The old token rides in the
// Authorization header like any other request.
func (h *AuthHandler) Reissue(c *fiber.Ctx) error {
	token, ok := auth.BearerToken(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return fiber.NewError(http.StatusBadRequest, "bearer token required")
	}

	user, newToken, exp, err := h.auth.Reissue(c.UserContext(), token)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.NewUserInfoFull(user),
			"auth": dto.AuthResponse{Token: newToken, ExpiresAt: exp},
		},
	})
}

// RequestPasswordReset handles POST /auth/password/reset/request. It always
// answers 202 so callers cannot probe which emails exist.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return fiber.NewError(http.StatusBadRequest, "email required")
	}

	_ = h.auth.RequestPasswordReset(c.UserContext(), req.Email)
	return c.SendStatus(http.StatusAccepted)
}

// ConfirmPasswordReset handles POST /auth/password/reset/confirm.
func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirm
	if err := c.BodyParser(&req); err != nil || req.Token == "" || req.NewPassword == "" {
		return fiber.NewError(http.StatusBadRequest, "token and new_password required")
	}

	if err := h.auth.ConfirmPasswordReset(c.UserContext(), req.Token, req.NewPassword); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid or expired token")
	}
	return c.SendStatus(http.StatusOK)
}

// Version handles GET /auth/version.
func (h *AuthHandler) Version(c *fiber.Ctx) error {
	return c.SendString(h.version)
}
