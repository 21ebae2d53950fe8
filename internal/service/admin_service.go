package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/gavelworks/auction-service/internal/domain"
	"github.com/gavelworks/auction-service/internal/repository"
	apperrors "github.com/gavelworks/auction-service/pkg/util"
)

// AdminService covers administrator-only user management.
type AdminService struct {
	users repository.UserRepository
}

// NewAdminService constructs the service.
func NewAdminService(users repository.UserRepository) *AdminService {
	return &AdminService{users: users}
}

// ListUsers returns a page of accounts, optionally filtered by available
// role or active flag.
func (s *AdminService) ListUsers(ctx context.Context, filter repository.UserFilter) ([]domain.User, int64, error) {
	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return users, total, nil
}

// SetUserStatus blocks or unblocks an account. Administrators cannot block
// themselves or other administrators.
func (s *AdminService) SetUserStatus(ctx context.Context, actor Actor, userID string, active bool) (*domain.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !active {
		if user.ID == actor.UserID {
			return nil, apperrors.NewConflict("cannot block your own account", nil)
		}
		if user.IsAdmin {
			return nil, apperrors.NewConflict("cannot block an administrator account", nil)
		}
	}
	if user.IsActive == active {
		return user, nil
	}
	user.IsActive = active
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// SetUserRoles replaces the business roles available to an account. Only
// buyer and seller may be granted; administrator is not a grantable role.
func (s *AdminService) SetUserRoles(ctx context.Context, userID string, roles []domain.Role) (*domain.User, error) {
	seen := make(map[domain.Role]bool, len(roles))
	cleaned := make([]domain.Role, 0, len(roles))
	for _, role := range roles {
		if !role.IsBusinessRole() {
			return nil, apperrors.NewValidationError("only buyer and seller roles can be granted",
				map[string]any{"role": role})
		}
		if seen[role] {
			continue
		}
		seen[role] = true
		cleaned = append(cleaned, role)
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsAdmin {
		return nil, apperrors.NewConflict("administrator accounts do not carry business roles", nil)
	}
	user.AvailableRoles = cleaned
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

func (s *AdminService) getUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}
