package auth

// Paths reachable without a token. Matching is exact on the URL path; token
// verification is never attempted for them.
const (
	LoginPath            = "/api/auth/login"
	RegisterCompanyPath  = "/api/auth/register-company"
	AcceptInvitationPath = "/api/invitations/accept"
)

var publicPaths = map[string]struct{}{
	LoginPath:            {},
	RegisterCompanyPath:  {},
	AcceptInvitationPath: {},
}

// IsPublicPath reports whether path is exempt from authentication.
func IsPublicPath(path string) bool {
	_, ok := publicPaths[path]
	return ok
}
