package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/gavelworks/auction-service/internal/api/dto"
	"github.com/gavelworks/auction-service/internal/domain"
	"github.com/gavelworks/auction-service/internal/repository"
	"github.com/gavelworks/auction-service/internal/service"
	apperrors "github.com/gavelworks/auction-service/pkg/util"
)

// AdminHandler exposes administrator user management endpoints.
type AdminHandler struct {
	admin *service.AdminService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(admin *service.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// ListUsers handles GET /admin/users with optional ?role and ?active.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	filter := repository.UserFilter{Limit: limit, Offset: offset}

	if raw := strings.TrimSpace(c.Query("role")); raw != "" {
		role := domain.Role(strings.ToUpper(raw))
		if !role.IsBusinessRole() {
			return apperrors.NewValidationError("role filter must be a business role", map[string]any{"role": raw})
		}
		filter.Role = &role
	}
	if raw := strings.TrimSpace(c.Query("active")); raw != "" {
		active := raw == "true"
		filter.Active = &active
	}

	users, total, err := h.admin.ListUsers(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewPage(dto.NewUserResponses(users), total, limit, offset))
}

// SetUserStatus handles PATCH /admin/users/:userId/status.
func (h *AdminHandler) SetUserStatus(c *fiber.Ctx) error {
	actor, _, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.UserStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.IsActive == nil {
		return apperrors.NewValidationError("isActive required", nil)
	}

	user, err := h.admin.SetUserStatus(c.UserContext(), actor, c.Params("userId"), *req.IsActive)
	if err != nil {
		return err
	}
	return dataResponse(c, http.StatusOK, dto.NewUserResponse(user))
}

// SetUserRoles handles PUT /admin/users/:userId/roles.
func (h *AdminHandler) SetUserRoles(c *fiber.Ctx) error {
	var req dto.UserRolesRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	roles := make([]domain.Role, 0, len(req.Roles))
	for _, raw := range req.Roles {
		roles = append(roles, domain.Role(strings.ToUpper(strings.TrimSpace(raw))))
	}

	user, err := h.admin.SetUserRoles(c.UserContext(), c.Params("userId"), roles)
	if err != nil {
		return err
	}
	return dataResponse(c, http.StatusOK, dto.NewUserResponse(user))
}
