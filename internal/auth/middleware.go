package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/gavelworks/auction-service/internal/domain"
	"github.com/gavelworks/auction-service/internal/repository"
	"github.com/gavelworks/auction-service/internal/session"
	apperrors "github.com/gavelworks/auction-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller: the account plus the single
// active role its session was established with.
type Principal struct {
	User       *domain.User
	ActiveRole domain.Role
	SessionID  string
}

// IsAdmin reports whether the session acts as the system administrator.
func (p *Principal) IsAdmin() bool {
	return p.ActiveRole == domain.RoleSystemAdmin
}

// ActingAs reports whether the session's active role matches one of the
// given roles. Authorization is a function of the active role only, never
// of the full set of roles the user holds.
func (p *Principal) ActingAs(roles ...domain.Role) bool {
	for _, role := range roles {
		if p.ActiveRole == role {
			return true
		}
	}
	return false
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens   *TokenManager
	users    repository.UserRepository
	sessions *session.Store
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository, sessions *session.Store) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, sessions: sessions}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	if m.sessions != nil {
		if _, err := m.sessions.Get(c.Context(), claims.ID); err != nil {
			if errors.Is(err, session.ErrNotFound) {
				return apperrors.NewUnauthorized("session expired or revoked")
			}
			return apperrors.MapError(err)
		}
	}

	user, err := m.users.GetByID(c.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.MapError(err)
	}
	if !user.IsActive {
		return apperrors.NewUnauthorized("account is blocked")
	}

	c.Locals(principalKey, &Principal{
		User:       user,
		ActiveRole: claims.ActiveRole,
		SessionID:  claims.ID,
	})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
