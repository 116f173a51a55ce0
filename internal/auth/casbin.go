package auth

import (
	_ "embed"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

//go:embed model.conf
var casbinModelContent string

// RouteRule grants a route to a set of roles. Pattern is the chi route
// pattern, e.g. "/api/users/{id}".
type RouteRule struct {
	Method  string
	Pattern string
	Roles   []Role
}

// RoutePolicy holds the role grants of every protected route in a Casbin
// enforcer. Policies are fixed at construction and never persisted.
type RoutePolicy struct {
	enforcer *casbin.SyncedEnforcer
}

// NewRoutePolicy loads rules into an in-memory Casbin enforcer built from the
// embedded model.
func NewRoutePolicy(rules []RouteRule) (*RoutePolicy, error) {
	m, err := model.NewModelFromString(casbinModelContent)
	if err != nil {
		return nil, fmt.Errorf("parse casbin model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}
	enforcer.EnableAutoSave(false)

	for _, rule := range rules {
		if len(rule.Roles) == 0 {
			return nil, fmt.Errorf("route %s %s grants no roles", rule.Method, rule.Pattern)
		}
		for _, r := range rule.Roles {
			if _, err := ParseRole(string(r)); err != nil {
				return nil, fmt.Errorf("route %s %s: %w", rule.Method, rule.Pattern, err)
			}
			if _, err := enforcer.AddPolicy(RoleSubject(r), rule.Pattern, rule.Method); err != nil {
				return nil, fmt.Errorf("add policy for %s %s: %w", rule.Method, rule.Pattern, err)
			}
		}
	}

	return &RoutePolicy{enforcer: enforcer}, nil
}

// RequiredRoles returns the roles that may call method on pattern. An empty
// result means the route has no grant and nobody may call it.
func (p *RoutePolicy) RequiredRoles(method, pattern string) ([]Role, error) {
	var roles []Role
	for _, r := range knownRoles {
		allowed, err := p.enforcer.Enforce(RoleSubject(r), pattern, method)
		if err != nil {
			return nil, fmt.Errorf("casbin enforce error for role %s: %w", r, err)
		}
		if allowed {
			roles = append(roles, r)
		}
	}
	return roles, nil
}

// Authorize gates a principal on a route. It returns ErrUnauthenticated for a
// nil principal and ErrForbidden when no held role is granted the route.
func (p *RoutePolicy) Authorize(principal *Principal, method, pattern string) error {
	if principal == nil {
		return ErrUnauthenticated
	}
	required, err := p.RequiredRoles(method, pattern)
	if err != nil {
		return err
	}
	return Require(principal, required...)
}
