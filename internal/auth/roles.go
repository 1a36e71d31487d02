package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/anna-paula-dante/employee-registration/internal/domain"
	apperrors "github.com/anna-paula-dante/employee-registration/pkg/util/errorutil"
)

// RequireRole ensures the principal sits at or above min on the role hierarchy.
func RequireRole(min domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !domain.CanActOn(principal.Role, min) {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
