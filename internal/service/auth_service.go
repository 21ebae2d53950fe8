package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gavelworks/auction-service/internal/auth"
	"github.com/gavelworks/auction-service/internal/config"
	"github.com/gavelworks/auction-service/internal/domain"
	"github.com/gavelworks/auction-service/internal/repository"
	"github.com/gavelworks/auction-service/internal/session"
	apperrors "github.com/gavelworks/auction-service/pkg/util"
)

// Actor identifies the caller of a state-changing command: the account id
// plus the active role its session was established with.
type Actor struct {
	UserID string
	Role   domain.Role
}

// RegisterInput describes a registration payload.
type RegisterInput struct {
	FullName   string
	Email      string
	Password   string
	PassportID string
}

// LoginResult carries everything a client needs to establish a session.
type LoginResult struct {
	User       *domain.User
	ActiveRole domain.Role
	Token      string
	SessionID  string
	ExpiresAt  time.Time
}

// AuthService coordinates registration, login and session teardown.
type AuthService struct {
	users      repository.UserRepository
	sessions   *session.Store
	tokenMgr   *auth.TokenManager
	bcryptCost int
	adminEmail string
	adminPass  string
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, users repository.UserRepository, sessions *session.Store) *AuthService {
	return &AuthService{
		users:      users,
		sessions:   sessions,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
		adminEmail: cfg.Auth.AdminEmail,
		adminPass:  cfg.Auth.AdminPassword,
	}
}

// Register creates a new account. Fresh accounts get both business roles;
// the administrator prunes them afterwards if needed.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if input.FullName == "" || input.Email == "" || input.Password == "" || input.PassportID == "" {
		return nil, apperrors.NewValidationError("fullName, email, password, passportId required", nil)
	}

	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	user := &domain.User{
		FullName:       input.FullName,
		Email:          input.Email,
		PassportID:     input.PassportID,
		PasswordHash:   hash,
		IsActive:       true,
		AvailableRoles: []domain.Role{domain.RoleBuyer, domain.RoleSeller},
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Login authenticates a user and establishes a session acting in the chosen
// role. Role choice is skipped entirely for the system administrator. A
// non-admin user with zero available business roles cannot establish a
// session; that is a configuration error, distinct from bad credentials.
func (s *AuthService) Login(ctx context.Context, email, password string, chosenRole domain.Role) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if !user.IsActive {
		return nil, apperrors.NewUnauthorized("account is blocked")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	activeRole := chosenRole
	if user.IsAdmin {
		activeRole = domain.RoleSystemAdmin
	} else {
		if len(user.AvailableRoles) == 0 {
			return nil, apperrors.NewDomainError("NO_BUSINESS_ROLES",
				"account has no business roles assigned", http.StatusConflict, nil)
		}
		if chosenRole == "" {
			return nil, apperrors.NewValidationError("active role must be chosen", nil)
		}
		if !chosenRole.IsBusinessRole() {
			return nil, apperrors.NewValidationError("unknown business role", map[string]any{"role": chosenRole})
		}
		if !user.HasBusinessRole(chosenRole) {
			return nil, apperrors.NewForbidden("chosen role is not available for this account")
		}
	}

	token, sessionID, expiresAt, err := s.tokenMgr.GenerateToken(user.ID, activeRole)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if s.sessions != nil {
		rec := session.Record{
			ID:         sessionID,
			UserID:     user.ID,
			FullName:   user.FullName,
			Email:      user.Email,
			ActiveRole: activeRole,
			IssuedAt:   time.Now(),
			ExpiresAt:  expiresAt,
		}
		if err := s.sessions.Put(ctx, rec); err != nil {
			return nil, apperrors.MapError(err)
		}
	}

	return &LoginResult{
		User:       user,
		ActiveRole: activeRole,
		Token:      token,
		SessionID:  sessionID,
		ExpiresAt:  expiresAt,
	}, nil
}

// Logout revokes the session record. It succeeds unconditionally: a missing
// record or an unreachable store still leaves the caller logged out.
func (s *AuthService) Logout(ctx context.Context, sessionID string) {
	if s.sessions == nil || sessionID == "" {
		return
	}
	_ = s.sessions.Delete(ctx, sessionID)
}

// Profile returns the account for an authenticated session.
func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// EnsureAdmin seeds the system administrator account from configuration.
func (s *AuthService) EnsureAdmin(ctx context.Context) error {
	if s.adminEmail == "" || s.adminPass == "" {
		return nil
	}
	if _, err := s.users.GetByEmail(ctx, s.adminEmail); err == nil {
		return nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(s.adminPass, s.bcryptCost)
	if err != nil {
		return err
	}
	admin := &domain.User{
		FullName:     "System Administrator",
		Email:        s.adminEmail,
		PassportID:   "-",
		PasswordHash: hash,
		IsAdmin:      true,
		IsActive:     true,
	}
	return s.users.Create(ctx, admin)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
