package handlers

import (
	"shopfront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/user")
	userRoutes.Post("/register", h.HandleRegister)
	userRoutes.Post("/login", h.HandleLogin)
	userRoutes.Post("/admin", h.HandleAdminLogin)
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleRegister registers a user and returns a user token.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	token, err := h.authService.RegisterUser(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return success(c, fiber.Map{"token": token})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin authenticates a user and returns a user token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	token, err := h.authService.LoginUser(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return success(c, fiber.Map{"token": token})
}

// HandleAdminLogin returns an admin token for the dashboard credentials.
func (h *AuthHandler) HandleAdminLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	token, err := h.authService.LoginAdmin(req.Email, req.Password)
	if err != nil {
		return err
	}
	return success(c, fiber.Map{"token": token})
}
