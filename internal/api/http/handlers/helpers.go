package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gavelworks/auction-service/internal/auth"
	"github.com/gavelworks/auction-service/internal/service"
	apperrors "github.com/gavelworks/auction-service/pkg/util"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// pageParams reads ?page and ?pageSize into a limit/offset pair. Pages are
// one-based; out-of-range values fall back to defaults.
func pageParams(c *fiber.Ctx) (limit, offset int) {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit = c.QueryInt("pageSize", defaultPageSize)
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return limit, (page - 1) * limit
}

// requireActor pulls the authenticated principal and flattens it into the
// service-level actor. The auth middleware guarantees the principal exists
// on protected routes; the error path covers misconfigured wiring.
func requireActor(c *fiber.Ctx) (service.Actor, *auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return service.Actor{}, nil, apperrors.NewUnauthorized("authentication required")
	}
	return service.Actor{UserID: principal.User.ID, Role: principal.ActiveRole}, principal, nil
}

func dataResponse(c *fiber.Ctx, status int, payload any) error {
	return c.Status(status).JSON(fiber.Map{"data": payload})
}
