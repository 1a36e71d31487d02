package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/anna-paula-dante/employee-registration/internal/domain"
	apperrors "github.com/anna-paula-dante/employee-registration/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// AuthMiddleware validates bearer tokens and stores the claim set on the request.
type AuthMiddleware struct {
	tokens      *TokenManager
	revocations RevocationStore
}

// NewAuthMiddleware constructs middleware. revocations may be nil.
func NewAuthMiddleware(tokens *TokenManager, revocations RevocationStore) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, revocations: revocations}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	if m.revocations != nil {
		revoked, err := m.revocations.IsRevoked(c.UserContext(), claims.TokenID)
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		if revoked {
			return apperrors.NewUnauthorized("token revoked")
		}
	}

	c.Locals(principalKey, claims)
	return c.Next()
}

// Revoke invalidates the claims' token until it expires. It is a no-op without a revocation store.
func (m *AuthMiddleware) Revoke(c *fiber.Ctx, claims domain.SessionClaims) error {
	if m.revocations == nil {
		return nil
	}
	return m.revocations.Revoke(c.UserContext(), claims.TokenID, claims.ExpiresAt)
}

// PrincipalFromContext retrieves the authenticated claim set.
func PrincipalFromContext(c *fiber.Ctx) (domain.SessionClaims, bool) {
	claims, ok := c.Locals(principalKey).(domain.SessionClaims)
	return claims, ok
}
