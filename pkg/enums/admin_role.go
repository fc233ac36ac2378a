package enums

import "fmt"

// AdminRole ranks staff accounts for privileged operations.
type AdminRole string

const (
	AdminRoleOwner     AdminRole = "owner"
	AdminRoleAdmin     AdminRole = "admin"
	AdminRoleModerator AdminRole = "moderator"
)

var validAdminRoles = []AdminRole{
	AdminRoleOwner,
	AdminRoleAdmin,
	AdminRoleModerator,
}

// String implements fmt.Stringer.
func (r AdminRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known AdminRole.
func (r AdminRole) IsValid() bool {
	for _, candidate := range validAdminRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// AtLeast reports whether the role outranks or equals other.
func (r AdminRole) AtLeast(other AdminRole) bool {
	return r.rank() >= other.rank()
}

func (r AdminRole) rank() int {
	switch r {
	case AdminRoleOwner:
		return 3
	case AdminRoleAdmin:
		return 2
	case AdminRoleModerator:
		return 1
	default:
		return 0
	}
}

// ParseAdminRole converts raw input into an AdminRole.
func ParseAdminRole(value string) (AdminRole, error) {
	for _, candidate := range validAdminRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid admin role %q", value)
}
