package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/HeorhiiKortunov/CoreTask/internal/auth"
	"github.com/HeorhiiKortunov/CoreTask/internal/logging"
)

// Gate denial reasons reported to GateDenialRecorder.
const (
	DenialUnauthenticated = "unauthenticated"
	DenialForbidden       = "forbidden"
)

// GateDenialRecorder counts requests stopped by the route gate.
type GateDenialRecorder interface {
	RecordGateDenial(ctx context.Context, reason string)
}

type noopDenials struct{}

func (noopDenials) RecordGateDenial(context.Context, string) {}

// ErrorResponder writes err as the response to r.
type ErrorResponder func(w http.ResponseWriter, r *http.Request, err error)

// Gate builds per-route authorization middleware from a RoutePolicy.
type Gate struct {
	policy  *auth.RoutePolicy
	respond ErrorResponder
	denials GateDenialRecorder
}

// NewGate creates a Gate. denials may be nil.
func NewGate(policy *auth.RoutePolicy, respond ErrorResponder, denials GateDenialRecorder) *Gate {
	if denials == nil {
		denials = noopDenials{}
	}
	return &Gate{policy: policy, respond: respond, denials: denials}
}

// Require returns middleware admitting only principals holding a role the
// policy grants on method and pattern. An anonymous caller gets
// auth.ErrUnauthenticated, a caller without a granted role auth.ErrForbidden.
// The handler does not run in either case.
func (g *Gate) Require(method, pattern string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			principal, _ := auth.PrincipalFromContext(ctx)

			err := g.policy.Authorize(principal, method, pattern)
			switch {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, auth.ErrUnauthenticated):
				g.denials.RecordGateDenial(ctx, DenialUnauthenticated)
				g.respond(w, r, err)
			case errors.Is(err, auth.ErrForbidden):
				g.denials.RecordGateDenial(ctx, DenialForbidden)
				logging.FromContext(ctx).Debug("route access denied",
					"method", method, "route", pattern, "user_id", principal.UserID(), "roles", auth.RoleNames(principal.Roles()))
				g.respond(w, r, err)
			default:
				logging.FromContext(ctx).Error("route policy evaluation failed",
					"method", method, "route", pattern, "error", err)
				g.respond(w, r, err)
			}
		})
	}
}
