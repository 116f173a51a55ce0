package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/HeorhiiKortunov/CoreTask/internal/auth"
	coremiddleware "github.com/HeorhiiKortunov/CoreTask/internal/middleware"
	"github.com/HeorhiiKortunov/CoreTask/internal/services/comment"
	"github.com/HeorhiiKortunov/CoreTask/internal/services/company"
	"github.com/HeorhiiKortunov/CoreTask/internal/services/iam"
	"github.com/HeorhiiKortunov/CoreTask/internal/services/invitation"
	"github.com/HeorhiiKortunov/CoreTask/internal/services/project"
	"github.com/HeorhiiKortunov/CoreTask/internal/services/task"
	"github.com/HeorhiiKortunov/CoreTask/internal/services/user"
	"github.com/HeorhiiKortunov/CoreTask/internal/services/validation"
	"github.com/HeorhiiKortunov/CoreTask/internal/telemetry"
)

// Services bundles the business services the handlers call.
type Services struct {
	Login       *iam.Service
	Companies   *company.Service
	Users       *user.Service
	Projects    *project.Service
	Tasks       *task.Service
	Comments    *comment.Service
	Invitations *invitation.Service
}

// AuthRecorder receives token rejections and gate denials.
type AuthRecorder interface {
	coremiddleware.TokenRejectionRecorder
	coremiddleware.GateDenialRecorder
}

// RouterOptions controls the construction of the HTTP router.
type RouterOptions struct {
	Services      Services
	Validator     *validation.Validator
	Authenticator iam.RequestAuthenticator
	// Rules overrides DefaultRouteRules, mainly for tests.
	Rules         []auth.RouteRule
	AuthRecorder  AuthRecorder
	ServerMetrics *telemetry.ServerMetrics
	CORSOptions   *cors.Options
	Middleware    []func(http.Handler) http.Handler
	HealthHandler http.HandlerFunc
}

// DefaultCORSOptions returns the CORS policy applied when none is configured.
func DefaultCORSOptions() cors.Options {
	return cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Location"},
		MaxAge:         300,
	}
}

func defaultHealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

var (
	memberOnly = []auth.Role{auth.RoleMember}
	adminOnly  = []auth.Role{auth.RoleAdmin}
)

// route is one protected endpoint together with the roles allowed to call it.
type route struct {
	method  string
	pattern string
	roles   []auth.Role
	handler func(*api, http.ResponseWriter, *http.Request)
}

// protectedRoutes lists every endpoint behind the role gate.
func protectedRoutes() []route {
	return []route{
		{http.MethodGet, "/api/users", memberOnly, (*api).listUsers},
		{http.MethodGet, "/api/users/me", memberOnly, (*api).getMe},
		{http.MethodPatch, "/api/users/me", memberOnly, (*api).updateMe},
		{http.MethodDelete, "/api/users/me", memberOnly, (*api).deleteMe},
		{http.MethodGet, "/api/users/{id}", memberOnly, (*api).getUser},
		{http.MethodPut, "/api/users/{id}", adminOnly, (*api).updateUser},
		{http.MethodPut, "/api/users/roles/{id}", adminOnly, (*api).updateUserRoles},
		{http.MethodDelete, "/api/users/{id}", adminOnly, (*api).deleteUser},

		{http.MethodGet, "/api/projects", memberOnly, (*api).listProjects},
		{http.MethodGet, "/api/projects/{id}", memberOnly, (*api).getProject},
		{http.MethodPost, "/api/projects", adminOnly, (*api).createProject},
		{http.MethodPatch, "/api/projects/{id}", adminOnly, (*api).updateProject},
		{http.MethodDelete, "/api/projects/{id}", adminOnly, (*api).deleteProject},

		{http.MethodGet, "/api/tasks", memberOnly, (*api).listTasks},
		{http.MethodGet, "/api/tasks/{id}", memberOnly, (*api).getTask},
		{http.MethodPost, "/api/tasks", adminOnly, (*api).createTask},
		{http.MethodPatch, "/api/tasks/{id}", adminOnly, (*api).updateTask},
		{http.MethodDelete, "/api/tasks/{id}", adminOnly, (*api).deleteTask},

		{http.MethodGet, "/api/comments", memberOnly, (*api).listComments},
		{http.MethodGet, "/api/comments/{id}", memberOnly, (*api).getComment},
		{http.MethodPost, "/api/comments", memberOnly, (*api).createComment},
		{http.MethodPut, "/api/comments/{id}", memberOnly, (*api).updateComment},
		{http.MethodDelete, "/api/comments/{id}", memberOnly, (*api).deleteComment},

		{http.MethodPost, "/api/invitations", adminOnly, (*api).createInvitation},
	}
}

// DefaultRouteRules returns the role grants of every protected endpoint.
func DefaultRouteRules() []auth.RouteRule {
	routes := protectedRoutes()
	rules := make([]auth.RouteRule, len(routes))
	for i, rt := range routes {
		rules[i] = auth.RouteRule{Method: rt.method, Pattern: rt.pattern, Roles: rt.roles}
	}
	return rules
}

// NewRouter assembles a chi.Router with shared middleware, CORS policy,
// authentication, and every handler mounted behind its role gate.
func NewRouter(opts RouterOptions) (chi.Router, error) {
	rules := opts.Rules
	if rules == nil {
		rules = DefaultRouteRules()
	}
	policy, err := auth.NewRoutePolicy(rules)
	if err != nil {
		return nil, fmt.Errorf("build route policy: %w", err)
	}

	recorder := opts.AuthRecorder
	gate := coremiddleware.NewGate(policy, writeError, recorder)
	a := &api{services: opts.Services, validator: opts.Validator}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	corsCfg := DefaultCORSOptions()
	if opts.CORSOptions != nil {
		corsCfg = *opts.CORSOptions
	}
	r.Use(cors.Handler(corsCfg))

	if opts.ServerMetrics != nil {
		r.Use(requestMetrics(opts.ServerMetrics))
	}
	for _, mw := range opts.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	healthHandler := opts.HealthHandler
	if healthHandler == nil {
		healthHandler = defaultHealthHandler
	}
	r.Get("/health", healthHandler)

	r.Group(func(r chi.Router) {
		if opts.Authenticator != nil {
			r.Use(coremiddleware.Authn(opts.Authenticator, recorder))
		}

		r.Post(auth.LoginPath, a.login)
		r.Post(auth.RegisterCompanyPath, a.registerCompany)
		r.Post(auth.AcceptInvitationPath, a.acceptInvitation)

		for _, rt := range protectedRoutes() {
			handle := func(w http.ResponseWriter, r *http.Request) { rt.handler(a, w, r) }
			r.With(gate.Require(rt.method, rt.pattern)).MethodFunc(rt.method, rt.pattern, handle)
		}
	})

	return r, nil
}

// NewH2CHandler wraps the router with an h2c server to provide HTTP/2 over
// cleartext.
func NewH2CHandler(opts RouterOptions) (http.Handler, error) {
	router, err := NewRouter(opts)
	if err != nil {
		return nil, err
	}
	return h2c.NewHandler(router, &http2.Server{}), nil
}

// requestMetrics records method, matched route and status of every request.
func requestMetrics(m *telemetry.ServerMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			pattern := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				pattern = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.RecordRequest(r.Context(), r.Method, pattern, status, time.Since(start))
		})
	}
}
