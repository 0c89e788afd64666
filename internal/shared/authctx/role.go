package authctx

import "strings"

// Role is one of a fixed set of permission tiers attached to a user.
// The set is closed: a token carrying anything else is untrusted.
type Role string

const (
	RoleResident          Role = "resident"
	RoleMunicipalStaff    Role = "municipal_staff"
	RoleCommunityAdvocate Role = "community_advocate"
	RoleAdmin             Role = "admin"
)

// Roles lists the full taxonomy in a stable order.
func Roles() []Role {
	return []Role{RoleResident, RoleMunicipalStaff, RoleCommunityAdvocate, RoleAdmin}
}

// ParseRole normalizes and validates a raw role string against the taxonomy.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleResident:
		return RoleResident, true
	case RoleMunicipalStaff:
		return RoleMunicipalStaff, true
	case RoleCommunityAdvocate:
		return RoleCommunityAdvocate, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

// Valid reports whether the role belongs to the taxonomy.
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

func (r Role) String() string { return string(r) }

func roleIn(role Role, allowed []Role) bool {
	for _, candidate := range allowed {
		if role == candidate {
			return true
		}
	}
	return false
}
