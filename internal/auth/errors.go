package auth

import "errors"

var (
	// ErrInvalidToken covers every way a bearer token can fail: bad structure,
	// wrong signature or algorithm, expiry, unknown claim schema, bad claim values.
	ErrInvalidToken = errors.New("invalid token")

	// ErrUnauthenticated is returned when a request has no usable principal.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden is returned when the principal lacks every accepted role.
	ErrForbidden = errors.New("access denied")

	// ErrInvalidCredentials is the single login failure. It never says whether
	// the username or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
