package dto

import (
	"time"

	"github.com/gavelworks/auction-service/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	PassportID string `json:"passportId"`
}

// LoginRequest payload for login. Role selects which of the account's
// business roles the session acts as; administrators omit it.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token      string    `json:"token"`
	ActiveRole string    `json:"activeRole"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// UserResponse is the public projection of an account.
type UserResponse struct {
	ID             string    `json:"id"`
	FullName       string    `json:"fullName"`
	Email          string    `json:"email"`
	PassportID     string    `json:"passportId"`
	IsAdmin        bool      `json:"isAdmin"`
	IsActive       bool      `json:"isActive"`
	AvailableRoles []string  `json:"availableRoles"`
	RegisteredAt   time.Time `json:"registeredAt"`
}

// NewUserResponse maps a user aggregate into the response shape.
func NewUserResponse(user *domain.User) UserResponse {
	roles := make([]string, 0, len(user.AvailableRoles))
	for _, role := range user.AvailableRoles {
		roles = append(roles, string(role))
	}
	return UserResponse{
		ID:             user.ID,
		FullName:       user.FullName,
		Email:          user.Email,
		PassportID:     user.PassportID,
		IsAdmin:        user.IsAdmin,
		IsActive:       user.IsActive,
		AvailableRoles: roles,
		RegisteredAt:   user.RegisteredAt,
	}
}

// NewUserResponses maps a slice of users.
func NewUserResponses(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}
