package models

import "fmt"

// Role identifies which identity collection a principal belongs to.
type Role string

const (
	RoleStudent Role = "Student"
	RoleTeacher Role = "Teacher"
	RoleParent  Role = "Parent"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleParent:
		return true
	}
	return false
}

// UsesDateSecret reports whether logins for r must present a DDMMYYYY date as the secret.
func (r Role) UsesDateSecret() bool {
	return r == RoleStudent || r == RoleParent
}

// ParseRole converts the wire value into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}
