package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/anna-paula-dante/employee-registration/internal/api/dto"
	"github.com/anna-paula-dante/employee-registration/internal/auth"
	"github.com/anna-paula-dante/employee-registration/internal/service"
	apperrors "github.com/anna-paula-dante/employee-registration/pkg/util/errorutil"
)

// AuthHandler exposes login, session introspection and logout.
type AuthHandler struct {
	auth       *service.AuthService
	middleware *auth.AuthMiddleware
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, middleware *auth.AuthMiddleware) *AuthHandler {
	return &AuthHandler{auth: authService, middleware: middleware}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}

	result, err := h.auth.Login(c.UserContext(), req.EmailOrDocument, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewLoginResponse(result.Token, result.ExpiresAt, result.Employee))
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	claims, err := principal(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"claims": dto.NewClaimsResponse(claims)})
}

// Logout handles POST /auth/logout by revoking the presenting token.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.middleware.Revoke(c, claims); err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
