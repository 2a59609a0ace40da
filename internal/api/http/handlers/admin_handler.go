package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/api/dto"
	"github.com/spec-kit/auth-service/internal/service"
)

// AdminHandler exposes account management for admins.
type AdminHandler struct {
	users *service.UserService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(userService *service.UserService) *AdminHandler {
	return &AdminHandler{users: userService}
}

// List handles GET /auth/admin/users.
func (h *AdminHandler) List(c *fiber.Ctx) error {
	users, err := h.users.List(c.UserContext())
	if err != nil {
		return err
	}

	infos := make([]dto.UserInfoFull, 0, len(users))
	for _, user := range users {
		infos = append(infos, dto.NewUserInfoFull(user))
	}
	return c.JSON(fiber.Map{"data": infos})
}

// Create handles POST /auth/admin/users.
func (h *AdminHandler) Create(c *fiber.Ctx) error {
	var req dto.AdminCreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return fiber.NewError(http.StatusBadRequest, "name, email, password required")
	}

	user, err := h.users.AdminCreate(c.UserContext(), req.Name, req.Email, req.Password, req.Roles, req.Image)
	if err != nil {
		return fiber.NewError(http.StatusConflict, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewUserInfoFull(user)})
}

// Update handles POST /auth/admin/users/:id.
func (h *AdminHandler) Update(c *fiber.Ctx) error {
	var req dto.AdminUpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.users.AdminUpdate(c.UserContext(), c.Params("id"), service.AdminUpdate{
		UserUpdate: service.UserUpdate{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
			Image:    req.Image,
		},
		Roles: req.Roles,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserInfoFull(user)})
}

// Delete handles DELETE /auth/admin/users/:id.
func (h *AdminHandler) Delete(c *fiber.Ctx) error {
	if err := h.users.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusOK)
}
