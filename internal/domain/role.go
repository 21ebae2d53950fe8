package domain

// Role identifies the capacity a session acts in. A session carries exactly
// one active role; authorization checks use the active role, never the full
// set of roles the user is eligible for.
type Role string

const (
	RoleBuyer       Role = "BUYER"
	RoleSeller      Role = "SELLER"
	RoleSystemAdmin Role = "SYSTEM_ADMIN"
)

// IsBusinessRole reports whether the role is grantable to regular users.
// SYSTEM_ADMIN is an identity class, not a grantable business role.
func (r Role) IsBusinessRole() bool {
	switch r {
	case RoleBuyer, RoleSeller:
		return true
	case RoleSystemAdmin:
		return false
	}
	return false
}

// Valid reports whether the role is a known enumeration member.
func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleSystemAdmin:
		return true
	}
	return false
}
