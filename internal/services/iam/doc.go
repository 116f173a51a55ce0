// Package iam authenticates callers.
//
//   - CredentialAuthenticator checks a username and password against the
//     stored bcrypt hash and builds a Principal from the stored user.
//   - Service.Login wraps it and issues a signed token for the principal.
//   - BearerAuthenticator resolves the bearer token of a request into a
//     Principal through auth.Resolver.
//
// Request Flow:
//
//	Request → BearerAuthenticator.Authenticate() → Principal (with Roles)
//	       ↓
//	   RoutePolicy.Authorize(principal) → Handler
//
// Roles are resolved once, when the token is issued, and carried in the token.
package iam
