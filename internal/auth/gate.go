package auth

// Require passes when the principal holds at least one role in anyOf. Role
// presence is explicit: no role implies another. A nil principal is
// ErrUnauthenticated; an empty anyOf admits nobody.
func Require(p *Principal, anyOf ...Role) error {
	if p == nil {
		return ErrUnauthenticated
	}
	if !p.HasAnyRole(anyOf...) {
		return ErrForbidden
	}
	return nil
}
