package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gavelworks/auction-service/internal/config"
	"github.com/gavelworks/auction-service/internal/domain"
	apperrors "github.com/gavelworks/auction-service/pkg/util"
)

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserRepo) {
	t.Helper()
	users := newFakeUserRepo()
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            4,
		},
	}
	return NewAuthService(cfg, users, nil), users
}

func register(t *testing.T, svc *AuthService) *domain.User {
	t.Helper()
	user, err := svc.Register(context.Background(), RegisterInput{
		FullName:   "Jordan Vale",
		Email:      "jordan@example.com",
		Password:   "hunter2!",
		PassportID: "AB1234567",
	})
	require.NoError(t, err)
	return user
}

func TestRegisterGrantsBothBusinessRoles(t *testing.T) {
	svc, _ := newAuthFixture(t)
	user := register(t, svc)

	assert.ElementsMatch(t, []domain.Role{domain.RoleBuyer, domain.RoleSeller}, user.AvailableRoles)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "hunter2!", user.PasswordHash)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture(t)
	register(t, svc)

	_, err := svc.Register(context.Background(), RegisterInput{
		FullName:   "Jordan Clone",
		Email:      "jordan@example.com",
		Password:   "other",
		PassportID: "CD7654321",
	})
	assert.Equal(t, "CONFLICT", errCode(t, err))
}

func TestLoginWithChosenRole(t *testing.T) {
	svc, _ := newAuthFixture(t)
	register(t, svc)

	result, err := svc.Login(context.Background(), "jordan@example.com", "hunter2!", domain.RoleSeller)
	require.NoError(t, err)

	assert.Equal(t, domain.RoleSeller, result.ActiveRole)
	assert.NotEmpty(t, result.Token)
	assert.NotEmpty(t, result.SessionID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newAuthFixture(t)
	register(t, svc)

	_, err := svc.Login(context.Background(), "jordan@example.com", "wrong", domain.RoleBuyer)
	assert.Equal(t, "UNAUTHORIZED", errCode(t, err))

	_, err = svc.Login(context.Background(), "ghost@example.com", "hunter2!", domain.RoleBuyer)
	assert.Equal(t, "UNAUTHORIZED", errCode(t, err))
}

func TestLoginRejectsBlockedAccount(t *testing.T) {
	svc, users := newAuthFixture(t)
	user := register(t, svc)

	stored := users.users[user.ID]
	stored.IsActive = false
	users.users[user.ID] = stored

	_, err := svc.Login(context.Background(), "jordan@example.com", "hunter2!", domain.RoleBuyer)
	assert.Equal(t, "UNAUTHORIZED", errCode(t, err))
}

func TestLoginRoleSelectionRules(t *testing.T) {
	svc, users := newAuthFixture(t)
	user := register(t, svc)

	_, err := svc.Login(context.Background(), "jordan@example.com", "hunter2!", "")
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))

	_, err = svc.Login(context.Background(), "jordan@example.com", "hunter2!", domain.RoleSystemAdmin)
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))

	stored := users.users[user.ID]
	stored.AvailableRoles = []domain.Role{domain.RoleBuyer}
	users.users[user.ID] = stored

	_, err = svc.Login(context.Background(), "jordan@example.com", "hunter2!", domain.RoleSeller)
	assert.Equal(t, "FORBIDDEN", errCode(t, err))
}

func TestLoginWithZeroBusinessRolesIsConfigurationError(t *testing.T) {
	svc, users := newAuthFixture(t)
	user := register(t, svc)

	stored := users.users[user.ID]
	stored.AvailableRoles = nil
	users.users[user.ID] = stored

	_, err := svc.Login(context.Background(), "jordan@example.com", "hunter2!", domain.RoleBuyer)
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "NO_BUSINESS_ROLES", domainErr.Code)
}

func TestAdminLoginSkipsRoleChoice(t *testing.T) {
	users := newFakeUserRepo()
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            4,
			AdminEmail:            "root@example.com",
			AdminPassword:         "s3cret-admin",
		},
	}
	svc := NewAuthService(cfg, users, nil)
	require.NoError(t, svc.EnsureAdmin(context.Background()))

	result, err := svc.Login(context.Background(), "root@example.com", "s3cret-admin", domain.RoleBuyer)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSystemAdmin, result.ActiveRole)
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	users := newFakeUserRepo()
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            4,
			AdminEmail:            "root@example.com",
			AdminPassword:         "s3cret-admin",
		},
	}
	svc := NewAuthService(cfg, users, nil)

	require.NoError(t, svc.EnsureAdmin(context.Background()))
	require.NoError(t, svc.EnsureAdmin(context.Background()))
	assert.Len(t, users.users, 1)
}
