package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HeorhiiKortunov/CoreTask/internal/auth"
	"github.com/HeorhiiKortunov/CoreTask/internal/services/iam"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type countingAuthenticator struct {
	calls     int
	principal *auth.Principal
	err       error
}

func (a *countingAuthenticator) Authenticate(*http.Request) (*auth.Principal, error) {
	a.calls++
	return a.principal, a.err
}

type recorder struct {
	mu         sync.Mutex
	rejections int
	denials    []string
}

func (r *recorder) RecordTokenRejection(context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejections++
}

func (r *recorder) RecordGateDenial(_ context.Context, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.denials = append(r.denials, reason)
}

// capture records the principal seen by the final handler.
func capture(seen **auth.Principal) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, _ := auth.PrincipalFromContext(r.Context())
		*seen = p
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthn_PublicPathSkipsVerification(t *testing.T) {
	authenticator := &countingAuthenticator{err: auth.ErrInvalidToken}
	rec := &recorder{}
	var seen *auth.Principal
	h := Authn(authenticator, rec)(capture(&seen))

	for _, path := range []string{auth.LoginPath, auth.RegisterCompanyPath, auth.AcceptInvitationPath} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set("Authorization", "Bearer garbage")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code, path)
		assert.Nil(t, seen)
	}
	assert.Zero(t, authenticator.calls)
	assert.Zero(t, rec.rejections)
}

func TestAuthn_ValidTokenAttachesPrincipal(t *testing.T) {
	codec, err := auth.NewTokenCodec([]byte(testSecret), time.Hour)
	require.NoError(t, err)
	token, err := codec.Issue(7, "alice@acme.test", []auth.Role{auth.RoleMember}, 9)
	require.NoError(t, err)

	var seen *auth.Principal
	h := Authn(iam.NewBearerAuthenticator(auth.NewResolver(codec)), nil)(capture(&seen))

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, seen)
	assert.Equal(t, int64(7), seen.UserID())
	tenantID, ok := seen.TenantID()
	assert.True(t, ok)
	assert.Equal(t, int64(9), tenantID)
	assert.Equal(t, "alice@acme.test", seen.Username())
}

func TestAuthn_InvalidTokenLeavesRequestAnonymous(t *testing.T) {
	codec, err := auth.NewTokenCodec([]byte(testSecret), time.Hour)
	require.NoError(t, err)
	rec := &recorder{}
	var seen *auth.Principal
	h := Authn(iam.NewBearerAuthenticator(auth.NewResolver(codec)), rec)(capture(&seen))

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Nil(t, seen)
	assert.Equal(t, 1, rec.rejections)
}

func TestAuthn_NoCredentials(t *testing.T) {
	authenticator := &countingAuthenticator{}
	rec := &recorder{}
	var seen *auth.Principal
	h := Authn(authenticator, rec)(capture(&seen))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/users", nil))

	assert.Equal(t, 1, authenticator.calls)
	assert.Nil(t, seen)
	assert.Zero(t, rec.rejections)
}

func newTestGate(t *testing.T, rec *recorder) *Gate {
	t.Helper()
	policy, err := auth.NewRoutePolicy([]auth.RouteRule{
		{Method: http.MethodGet, Pattern: "/api/projects", Roles: []auth.Role{auth.RoleMember}},
		{Method: http.MethodPost, Pattern: "/api/projects", Roles: []auth.Role{auth.RoleAdmin}},
	})
	require.NoError(t, err)

	respond := func(w http.ResponseWriter, _ *http.Request, err error) {
		switch {
		case errors.Is(err, auth.ErrUnauthenticated):
			w.WriteHeader(http.StatusUnauthorized)
		case errors.Is(err, auth.ErrForbidden):
			w.WriteHeader(http.StatusForbidden)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}
	return NewGate(policy, respond, rec)
}

func TestGate_Require(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		principal *auth.Principal
		want      int
		denial    string
	}{
		{"anonymous", http.MethodGet, nil, http.StatusUnauthorized, DenialUnauthenticated},
		{"member reads", http.MethodGet, auth.NewPrincipal(1, "m", 9, []auth.Role{auth.RoleMember}), http.StatusOK, ""},
		{"member writes", http.MethodPost, auth.NewPrincipal(1, "m", 9, []auth.Role{auth.RoleMember}), http.StatusForbidden, DenialForbidden},
		{"admin writes", http.MethodPost, auth.NewPrincipal(2, "a", 9, []auth.Role{auth.RoleAdmin}), http.StatusOK, ""},
		{"admin without member cannot read", http.MethodGet, auth.NewPrincipal(2, "a", 9, []auth.Role{auth.RoleAdmin}), http.StatusForbidden, DenialForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			gate := newTestGate(t, rec)
			ran := false
			h := gate.Require(tt.method, "/api/projects")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ran = true
			}))

			req := httptest.NewRequest(tt.method, "/api/projects", nil)
			req = req.WithContext(auth.WithPrincipal(req.Context(), tt.principal))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, tt.want == http.StatusOK, ran)
			if tt.denial == "" {
				assert.Empty(t, rec.denials)
			} else {
				assert.Equal(t, []string{tt.denial}, rec.denials)
			}
		})
	}
}

func TestGate_UngrantedRouteAdmitsNobody(t *testing.T) {
	gate := newTestGate(t, &recorder{})
	h := gate.Require(http.MethodDelete, "/api/projects")(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	}))

	owner := auth.NewPrincipal(1, "o", 9, auth.AllRoles())
	req := httptest.NewRequest(http.MethodDelete, "/api/projects", nil)
	req = req.WithContext(auth.WithPrincipal(req.Context(), owner))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
