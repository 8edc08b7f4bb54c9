// Package rbac holds the role hierarchy that governs which roles a principal may provision,
// and gRPC-facing guards built on it.
package rbac

import "strings"

// Role is one of the three organization roles.
type Role string

const (
	RoleDirector Role = "Director"
	RoleLeader   Role = "Leader"
	RoleEmployee Role = "Employee"
)

// Roles lists the known roles from most to least privileged.
var Roles = []Role{RoleDirector, RoleLeader, RoleEmployee}

// provisionable is the single source of truth for the hierarchy: the roles each role may
// create, assign, or edit accounts into.
var provisionable = map[Role]map[Role]bool{
	RoleDirector: {RoleDirector: true, RoleLeader: true, RoleEmployee: true},
	RoleLeader:   {RoleLeader: true, RoleEmployee: true},
	RoleEmployee: {RoleEmployee: true},
}

// rank orders roles for EffectiveRole; lower is more privileged.
var rank = map[Role]int{
	RoleDirector: 0,
	RoleLeader:   1,
	RoleEmployee: 2,
}

// Valid reports whether r is one of the known roles (exact, case-sensitive).
func (r Role) Valid() bool {
	_, ok := provisionable[r]
	return ok
}

func (r Role) String() string { return string(r) }

// ParseRole maps a boundary value to a Role, ignoring case and surrounding spaces.
func ParseRole(s string) (Role, bool) {
	s = strings.TrimSpace(s)
	for _, r := range Roles {
		if strings.EqualFold(s, string(r)) {
			return r, true
		}
	}
	return "", false
}

// CanProvision reports whether a principal acting as current may create or assign requested.
// Unknown roles on either side are denied.
func CanProvision(current, requested Role) bool {
	return provisionable[current][requested]
}

// EffectiveRole resolves a grant set to the single role used for authorization.
// When a principal holds several grants the most privileged known role wins; unknown
// grants are ignored. ok is false when no known role is granted.
func EffectiveRole(grants []Role) (role Role, ok bool) {
	best := len(rank)
	for _, g := range grants {
		if r, known := rank[g]; known && r < best {
			best, role, ok = r, g, true
		}
	}
	return role, ok
}

// Strings converts roles to their string names.
func Strings(roles []Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
