package entity

import (
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// Role is the account kind. It doubles as the authorization role carried in tokens.
type Role string

const (
	// RoleApplicant marks a job seeker account.
	RoleApplicant Role = "APPLICANT"
	// RoleEmployer marks a company account that publishes jobs.
	RoleEmployer Role = "EMPLOYER"
)

// ErrUnknownRole is returned by ParseRole for blank or unrecognised input.
var ErrUnknownRole = errors.New("role must be APPLICANT or EMPLOYER")

// AllRoles lists every account kind in principal-resolution order.
var AllRoles = Roles{RoleApplicant, RoleEmployer}

// ParseRole trims and upper-cases raw before matching it against the known roles.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.ToUpper(strings.TrimSpace(raw)))
	if !role.IsValid() {
		return "", errors.WithStack(ErrUnknownRole)
	}

	return role, nil
}

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether r is one of AllRoles.
func (r Role) IsValid() bool {
	return AllRoles.Contains(r)
}

// Roles is a slice of Role for convenience.
type Roles []Role

// Contains checks if the roles slice contains a specific role.
func (rs Roles) Contains(role Role) bool {
	return slices.Contains(rs, role)
}
