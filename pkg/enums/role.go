package enums

import "fmt"

// Role represents a staff permissions role.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleManager      Role = "manager"
	RoleTechnician   Role = "technician"
	RoleReceptionist Role = "receptionist"
)

var validRoles = []Role{
	RoleAdmin,
	RoleManager,
	RoleTechnician,
	RoleReceptionist,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}

// Roles returns the full set of assignable roles.
func Roles() []Role {
	return append([]Role(nil), validRoles...)
}
