package middleware

import (
	"context"
	"net/http"

	"github.com/HeorhiiKortunov/CoreTask/internal/auth"
	"github.com/HeorhiiKortunov/CoreTask/internal/logging"
	"github.com/HeorhiiKortunov/CoreTask/internal/services/iam"
)

// TokenRejectionRecorder counts bearer tokens that failed to resolve.
type TokenRejectionRecorder interface {
	RecordTokenRejection(ctx context.Context)
}

type noopRejections struct{}

func (noopRejections) RecordTokenRejection(context.Context) {}

// Authn resolves the caller of every request and attaches the principal to
// the request context.
//
// It never rejects a request. Public paths are passed through without
// looking at credentials; a missing or invalid token leaves the request
// anonymous and the route gate decides. Failures are logged at debug level
// without token material.
func Authn(authenticator iam.RequestAuthenticator, rejections TokenRejectionRecorder) func(http.Handler) http.Handler {
	if rejections == nil {
		rejections = noopRejections{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth.IsPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			principal, err := authenticator.Authenticate(r)
			if err != nil {
				rejections.RecordTokenRejection(ctx)
				logging.FromContext(ctx).Debug("bearer token rejected",
					"method", r.Method, "path", r.URL.Path, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if principal == nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(ctx, principal)))
		})
	}
}
