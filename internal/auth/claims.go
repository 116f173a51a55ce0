package auth

import (
	"fmt"
	"strconv"

	"github.com/mitchellh/mapstructure"
)

// tokenClaims is the typed view of the claims a Principal is built from.
type tokenClaims struct {
	Subject  string   `mapstructure:"sub"`
	Email    string   `mapstructure:"email"`
	Roles    []string `mapstructure:"roles"`
	TenantID *int64   `mapstructure:"companyId"`
}

// PrincipalFromClaims converts verified claims into a Principal.
//
// Conversion is all-or-nothing: a non-numeric subject, a non-integer tenant or
// a single unknown role fails the whole call with ErrInvalidToken. A missing
// roles claim yields an empty role set.
func PrincipalFromClaims(claims Claims) (*Principal, error) {
	var tc tokenClaims
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &tc,
		TagName: "mapstructure",
	})
	if err != nil {
		return nil, fmt.Errorf("build claims decoder: %w", err)
	}
	if err := decoder.Decode(map[string]any(claims)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if tc.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	userID, err := strconv.ParseInt(tc.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil, fmt.Errorf("%w: subject is not a user id", ErrInvalidToken)
	}

	roles, err := ParseRoles(tc.Roles)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var tenantID int64
	if tc.TenantID != nil {
		if *tc.TenantID <= 0 {
			return nil, fmt.Errorf("%w: invalid tenant", ErrInvalidToken)
		}
		tenantID = *tc.TenantID
	}

	return NewPrincipal(userID, tc.Email, tenantID, roles), nil
}

// Resolver turns raw bearer tokens into principals.
type Resolver struct {
	codec *TokenCodec
}

// NewResolver creates a Resolver backed by codec.
func NewResolver(codec *TokenCodec) *Resolver {
	return &Resolver{codec: codec}
}

// Resolve verifies tokenString and converts its claims. Both stages report
// failures as ErrInvalidToken.
func (r *Resolver) Resolve(tokenString string) (*Principal, error) {
	claims, err := r.codec.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	return PrincipalFromClaims(claims)
}
