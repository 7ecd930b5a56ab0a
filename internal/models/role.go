package models

import (
	"fmt"
	"strings"
)

// Role is the closed set of roles an actor may hold. Permission checks always
// go through the authz action table; there are no ad hoc role string
// comparisons elsewhere.
type Role string

const (
	RoleViewer        Role = "viewer"
	RoleCampusAdmin   Role = "campus_admin"
	RoleDistrictAdmin Role = "district_admin"
	RoleMasterAdmin   Role = "master_admin"
)

var roleRank = map[Role]int{
	RoleViewer:        0,
	RoleCampusAdmin:   1,
	RoleDistrictAdmin: 2,
	RoleMasterAdmin:   3,
}

// ParseRole normalizes and validates a role string.
func ParseRole(value string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", value)
	}
	return role, nil
}

// Valid reports whether the role is one of the four known roles.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether the role ranks at or above the given role.
func (r Role) AtLeast(other Role) bool {
	return roleRank[r] >= roleRank[other]
}

func (r Role) String() string {
	return string(r)
}
