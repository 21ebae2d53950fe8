package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/gavelworks/auction-service/internal/api/dto"
	"github.com/gavelworks/auction-service/internal/domain"
	"github.com/gavelworks/auction-service/internal/service"
	apperrors "github.com/gavelworks/auction-service/pkg/util"
)

// AuthHandler exposes registration, login, logout and profile endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		FullName:   req.FullName,
		Email:      req.Email,
		Password:   req.Password,
		PassportID: req.PassportID,
	})
	if err != nil {
		return err
	}
	return dataResponse(c, http.StatusCreated, dto.NewUserResponse(user))
}

// Login handles POST /auth/login. The chosen role fixes the session's
// active role; administrators always act as administrator.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	result, err := h.auth.Login(c.UserContext(), req.Email, req.Password, domain.Role(req.Role))
	if err != nil {
		return err
	}
	return dataResponse(c, http.StatusOK, fiber.Map{
		"user": dto.NewUserResponse(result.User),
		"auth": dto.AuthResponse{
			Token:      result.Token,
			ActiveRole: string(result.ActiveRole),
			ExpiresAt:  result.ExpiresAt,
		},
	})
}

// Logout handles POST /auth/logout. Tearing down an already absent session
// still succeeds.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	_, principal, err := requireActor(c)
	if err != nil {
		return err
	}
	h.auth.Logout(c.UserContext(), principal.SessionID)
	return dataResponse(c, http.StatusOK, fiber.Map{"loggedOut": true})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	actor, principal, err := requireActor(c)
	if err != nil {
		return err
	}
	user, err := h.auth.Profile(c.UserContext(), actor.UserID)
	if err != nil {
		return err
	}
	return dataResponse(c, http.StatusOK, fiber.Map{
		"user":       dto.NewUserResponse(user),
		"activeRole": string(principal.ActiveRole),
	})
}
