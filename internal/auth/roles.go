package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gavelworks/auction-service/internal/domain"
	apperrors "github.com/gavelworks/auction-service/pkg/util"
)

// RequireRoles ensures the session's active role is one of the allowed set.
// An unauthenticated caller gets 401; an authenticated caller acting in the
// wrong role gets 403.
func RequireRoles(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.ActiveRole]; !exists {
			return apperrors.NewForbidden("active role not permitted")
		}
		return c.Next()
	}
}

// RequireAdmin ensures the caller is the system administrator.
func RequireAdmin() fiber.Handler {
	return RequireRoles(domain.RoleSystemAdmin)
}

// RequireAuthenticated ensures a principal is present, any role.
func RequireAuthenticated() fiber.Handler {
	return RequireRoles()
}
