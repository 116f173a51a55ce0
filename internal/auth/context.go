package auth

import (
	"context"
	"slices"
)

// Principal is the identity resolved for a single request.
//
// A Principal is immutable after construction: the fields are unexported and
// accessors hand out copies. It is attached to the request context and dropped
// with it, so concurrent requests never share one.
type Principal struct {
	userID   int64
	username string
	tenantID int64
	roles    []Role
}

// NewPrincipal builds a Principal. A tenantID <= 0 means the identity has not
// been assigned to a company yet.
func NewPrincipal(userID int64, username string, tenantID int64, roles []Role) *Principal {
	if tenantID < 0 {
		tenantID = 0
	}
	return &Principal{
		userID:   userID,
		username: username,
		tenantID: tenantID,
		roles:    normalizeRoles(roles),
	}
}

// UserID returns the backing users.id.
func (p *Principal) UserID() int64 { return p.userID }

// Username is the login handle after password authentication and the email
// claim after token resolution.
func (p *Principal) Username() string { return p.username }

// TenantID returns the company id and whether one is assigned.
func (p *Principal) TenantID() (int64, bool) {
	return p.tenantID, p.tenantID > 0
}

// Roles returns a sorted copy of the role set.
func (p *Principal) Roles() []Role {
	return slices.Clone(p.roles)
}

// HasAnyRole reports whether the role set intersects anyOf.
func (p *Principal) HasAnyRole(anyOf ...Role) bool {
	for _, want := range anyOf {
		if slices.Contains(p.roles, want) {
			return true
		}
	}
	return false
}

type principalContextKey struct{}

// WithPrincipal returns a child context carrying p. A nil p leaves the
// request anonymous.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	if p == nil {
		return ctx
	}
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext retrieves the principal attached to ctx.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(*Principal)
	return p, ok && p != nil
}

// CurrentTenantID returns the tenant of the request's principal. It fails with
// ErrUnauthenticated for anonymous requests and for principals without a tenant.
func CurrentTenantID(ctx context.Context) (int64, error) {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		return 0, ErrUnauthenticated
	}
	tenantID, ok := p.TenantID()
	if !ok {
		return 0, ErrUnauthenticated
	}
	return tenantID, nil
}

// CurrentUserID returns the user id of the request's principal under the same
// failure policy as CurrentTenantID.
func CurrentUserID(ctx context.Context) (int64, error) {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		return 0, ErrUnauthenticated
	}
	if _, ok := p.TenantID(); !ok {
		return 0, ErrUnauthenticated
	}
	return p.UserID(), nil
}
