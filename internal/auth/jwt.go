package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ClaimsVersion identifies the claim layout written by Issue. Tokens carrying
// any other version are rejected.
const ClaimsVersion = 1

// Claim names of the canonical token payload.
const (
	ClaimSubject  = "sub"
	ClaimEmail    = "email"
	ClaimRoles    = "roles"
	ClaimTenantID = "companyId"
	ClaimVersion  = "cv"
)

// DefaultTokenTTL is the validity window used when none is configured.
const DefaultTokenTTL = 24 * time.Hour

const minSecretLength = 32

// ClockSkewLeeway is the tolerance applied to iat and exp so tokens survive
// small clock differences between instances.
const ClockSkewLeeway = 5 * time.Second

// Claims is the verified token payload, keyed by claim name. Numbers are kept
// as json.Number so integer claims are never rounded through float64.
type Claims map[string]any

// TokenCodec signs and verifies HS256 bearer tokens with one process-wide key.
// It has no mutable state and is safe for concurrent use.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
	parser *jwt.Parser
}

// CodecOption customises a TokenCodec.
type CodecOption func(*TokenCodec)

// WithIssuer stamps tokens with iss and requires it on verification.
func WithIssuer(issuer string) CodecOption {
	return func(c *TokenCodec) {
		c.issuer = issuer
	}
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewTokenCodec creates a codec. The secret is copied; later changes to the
// caller's slice have no effect.
func NewTokenCodec(secret []byte, ttl time.Duration, opts ...CodecOption) (*TokenCodec, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("token signing secret must be at least %d bytes", minSecretLength)
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	c := &TokenCodec{
		secret: append([]byte(nil), secret...),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithJSONNumber(),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(ClockSkewLeeway),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(c.issuer))
	}
	c.parser = jwt.NewParser(parserOpts...)

	return c, nil
}

// TTL returns the validity window applied by Issue.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a token for the given identity. The only varying inputs besides
// the arguments are the issue time and a random jti.
func (c *TokenCodec) Issue(userID int64, email string, roles []Role, tenantID int64) (string, error) {
	now := c.now()
	claims := jwt.MapClaims{
		ClaimSubject: strconv.FormatInt(userID, 10),
		ClaimEmail:   email,
		ClaimRoles:   RoleNames(normalizeRoles(roles)),
		ClaimVersion: ClaimsVersion,
		"iat":        jwt.NewNumericDate(now),
		"exp":        jwt.NewNumericDate(now.Add(c.ttl)),
		"jti":        uuid.NewString(),
	}
	if tenantID > 0 {
		claims[ClaimTenantID] = tenantID
	}
	if c.issuer != "" {
		claims["iss"] = c.issuer
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm, expiry and claim schema version. Every
// failure is reported as ErrInvalidToken.
func (c *TokenCodec) Verify(tokenString string) (Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	mapClaims := jwt.MapClaims{}
	token, err := c.parser.ParseWithClaims(tokenString, mapClaims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if err := checkClaimsVersion(mapClaims); err != nil {
		return nil, err
	}

	return Claims(mapClaims), nil
}

func checkClaimsVersion(claims jwt.MapClaims) error {
	raw, ok := claims[ClaimVersion]
	if !ok {
		return fmt.Errorf("%w: missing %s claim", ErrInvalidToken, ClaimVersion)
	}
	n, ok := raw.(interface{ Int64() (int64, error) })
	if !ok {
		return fmt.Errorf("%w: %s claim is not a number", ErrInvalidToken, ClaimVersion)
	}
	v, err := n.Int64()
	if err != nil || v != ClaimsVersion {
		return fmt.Errorf("%w: unsupported claims version", ErrInvalidToken)
	}
	return nil
}

// ErrNoBearerToken is returned by BearerToken when the header is absent or
// does not use the Bearer scheme.
var ErrNoBearerToken = errors.New("no bearer token")

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(h http.Header) (string, error) {
	value := strings.TrimSpace(h.Get("Authorization"))
	if value == "" {
		return "", ErrNoBearerToken
	}
	scheme, token, found := strings.Cut(value, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrNoBearerToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrNoBearerToken
	}
	return token, nil
}
