package auth

// PrefixRole marks Casbin subjects that name a role.
const PrefixRole = "role:"

// RoleSubject creates the Casbin subject for a role.
// Example: RoleSubject(RoleAdmin) → "role:ADMIN"
func RoleSubject(r Role) string {
	return PrefixRole + string(r)
}
