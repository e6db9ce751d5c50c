package identity

import "strings"

// Role is the single coarse-grained permission tier a session resolves to.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleHR       Role = "hr"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
	// RoleUnknown marks a claim shape that matched none of the known tiers.
	RoleUnknown Role = ""
)

// Navigation targets shared by the session manager and the route guards.
const (
	PathRoot         = "/"
	PathLogin        = "/login"
	PathUnauthorized = "/unauthorized"
)

var landingPaths = map[Role]string{
	RoleAdmin:    "/dashboard",
	RoleHR:       "/employees",
	RoleManager:  "/attendance",
	RoleEmployee: "/profile",
}

// ParseRole maps a raw claim value onto the role enum, case-insensitively.
func ParseRole(value string) Role {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "admin":
		return RoleAdmin
	case "hr":
		return RoleHR
	case "manager":
		return RoleManager
	case "employee":
		return RoleEmployee
	default:
		return RoleUnknown
	}
}

// Known reports whether the role is one of the fixed tiers.
func (role Role) Known() bool {
	_, ok := landingPaths[role]
	return ok
}

// AllRoles lists the fixed tiers in precedence order.
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleHR, RoleManager, RoleEmployee}
}

// LandingPath returns the role-specific landing route.
func LandingPath(role Role) (string, bool) {
	path, ok := landingPaths[role]
	return path, ok
}
