package auth

// UserRole is the user's global role
type UserRole string

const (
	// RoleUser is a regular account (read, follow, post writings)
	RoleUser UserRole = "user"
	// RoleSubadmin is a curator account (poet and notice management)
	RoleSubadmin UserRole = "subadmin"
	// RoleAdmin is a platform administrator (user management)
	RoleAdmin UserRole = "admin"
)

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	switch r {
	case RoleUser, RoleSubadmin, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsElevated reports whether accounts with this role are created
// pre-verified and skip the email verification cycle.
func (r UserRole) IsElevated() bool {
	switch r {
	case RoleSubadmin, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsAssignable reports whether the role may be set through the admin
// role-change operation. Admins are never minted that way, only via seed.
func (r UserRole) IsAssignable() bool {
	switch r {
	case RoleUser, RoleSubadmin:
		return true
	default:
		return false
	}
}

// GetAllRoles returns all predefined roles in hierarchical order
func GetAllRoles() []UserRole {
	return []UserRole{
		RoleUser,
		RoleSubadmin,
		RoleAdmin,
	}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, role.IsValid()
}
