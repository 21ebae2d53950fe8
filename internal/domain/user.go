package domain

import "time"

// User is the domain model for registered accounts. Administrators are a
// distinguished identity class (IsAdmin) outside the business-role set.
type User struct {
	ID             string
	FullName       string
	Email          string
	PassportID     string
	PasswordHash   string
	IsAdmin        bool
	IsActive       bool
	AvailableRoles []Role
	RegisteredAt   time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasBusinessRole reports whether the user may act in the given role.
func (u *User) HasBusinessRole(role Role) bool {
	for _, r := range u.AvailableRoles {
		if r == role {
			return true
		}
	}
	return false
}
