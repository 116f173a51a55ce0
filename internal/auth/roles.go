package auth

import (
	"fmt"
	"slices"
	"strings"
)

// Role is a tenant-level permission grant. The set is closed: tokens or
// records naming anything else are rejected rather than ignored.
type Role string

const (
	RoleMember Role = "MEMBER"
	RoleAdmin  Role = "ADMIN"
	RoleOwner  Role = "OWNER"
)

var knownRoles = []Role{RoleMember, RoleAdmin, RoleOwner}

// AllRoles returns every known role in declaration order.
func AllRoles() []Role {
	return slices.Clone(knownRoles)
}

// ParseRole maps a role name to a Role. Matching is exact.
func ParseRole(name string) (Role, error) {
	r := Role(name)
	if !slices.Contains(knownRoles, r) {
		return "", fmt.Errorf("unknown role %q", name)
	}
	return r, nil
}

// ParseRoles converts every name or fails on the first unknown one.
// Duplicates collapse; the result is sorted.
func ParseRoles(names []string) ([]Role, error) {
	roles := make([]Role, 0, len(names))
	for _, name := range names {
		r, err := ParseRole(name)
		if err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return normalizeRoles(roles), nil
}

// RoleNames renders roles as plain strings, e.g. for token claims or storage.
func RoleNames(roles []Role) []string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return names
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

func normalizeRoles(roles []Role) []Role {
	out := slices.Clone(roles)
	slices.SortFunc(out, func(a, b Role) int { return strings.Compare(string(a), string(b)) })
	return slices.Compact(out)
}
