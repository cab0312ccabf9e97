package models

// RoleType defines the user role type
type RoleType string

const (
	RoleAdmin   RoleType = "admin"
	RoleStudent RoleType = "student"
)

// Valid reports whether r is one of the known roles.
func (r RoleType) Valid() bool {
	return r == RoleAdmin || r == RoleStudent
}

// IsAdmin reports whether r is the admin role.
func (r RoleType) IsAdmin() bool {
	return r == RoleAdmin
}
