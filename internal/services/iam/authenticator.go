package iam

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/HeorhiiKortunov/CoreTask/internal/auth"
	"github.com/HeorhiiKortunov/CoreTask/internal/db/models"
	"github.com/HeorhiiKortunov/CoreTask/internal/logging"
	"github.com/HeorhiiKortunov/CoreTask/internal/repository"
)

// UserLookup is the slice of the user repository login needs.
type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// CredentialAuthenticator verifies username and password pairs.
//
// Every failure is reported as auth.ErrInvalidCredentials so a caller cannot
// tell an unknown username from a wrong password. Unknown usernames still pay
// for one bcrypt comparison.
type CredentialAuthenticator struct {
	users UserLookup
}

// NewCredentialAuthenticator creates a CredentialAuthenticator over users.
func NewCredentialAuthenticator(users UserLookup) *CredentialAuthenticator {
	return &CredentialAuthenticator{users: users}
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// timingHash is compared against when the user does not exist.
func timingHash() []byte {
	dummyHashOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte("coretask-timing-equalizer"), bcrypt.DefaultCost)
		if err != nil {
			panic(fmt.Sprintf("iam: generate timing hash: %v", err))
		}
		dummyHash = h
	})
	return dummyHash
}

// Authenticate returns the principal of the user with the given credentials.
// Repository failures other than a missing user are returned wrapped; they
// are not credential failures.
func (a *CredentialAuthenticator) Authenticate(ctx context.Context, username, password string) (*auth.Principal, error) {
	_, principal, err := a.verify(ctx, username, password)
	return principal, err
}

func (a *CredentialAuthenticator) verify(ctx context.Context, username, password string) (*models.User, *auth.Principal, error) {
	if username == "" || password == "" {
		_ = bcrypt.CompareHashAndPassword(timingHash(), []byte(password))
		return nil, nil, auth.ErrInvalidCredentials
	}

	user, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(timingHash(), []byte(password))
			return nil, nil, auth.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, auth.ErrInvalidCredentials
	}

	roles, err := auth.ParseRoles([]string(user.Roles))
	if err != nil {
		logging.Op().Error("stored user has unknown role", "user_id", user.ID, "error", err)
		return nil, nil, auth.ErrInvalidCredentials
	}

	return user, auth.NewPrincipal(user.ID, user.Username, user.CompanyID, roles), nil
}

// HashPassword hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// RequestAuthenticator resolves the caller of an HTTP request.
//
// Return values:
//   - (principal, nil): authentication successful
//   - (nil, nil): no credentials present
//   - (nil, error): credentials present but invalid
type RequestAuthenticator interface {
	Authenticate(r *http.Request) (*auth.Principal, error)
}

// BearerAuthenticator authenticates requests carrying
// "Authorization: Bearer <token>".
type BearerAuthenticator struct {
	resolver *auth.Resolver
}

var _ RequestAuthenticator = (*BearerAuthenticator)(nil)

// NewBearerAuthenticator creates a BearerAuthenticator backed by resolver.
func NewBearerAuthenticator(resolver *auth.Resolver) *BearerAuthenticator {
	return &BearerAuthenticator{resolver: resolver}
}

func (a *BearerAuthenticator) Authenticate(r *http.Request) (*auth.Principal, error) {
	token, err := auth.BearerToken(r.Header)
	if errors.Is(err, auth.ErrNoBearerToken) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a.resolver.Resolve(token)
}
