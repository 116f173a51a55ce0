package iam

import (
	"context"
	"errors"
	"fmt"

	"github.com/HeorhiiKortunov/CoreTask/internal/auth"
	"github.com/HeorhiiKortunov/CoreTask/internal/logging"
)

// LoginRecorder receives the outcome of each login attempt.
type LoginRecorder interface {
	RecordLogin(ctx context.Context, success bool)
}

type noopRecorder struct{}

func (noopRecorder) RecordLogin(context.Context, bool) {}

// Service implements login on top of CredentialAuthenticator and
// auth.TokenCodec.
type Service struct {
	credentials *CredentialAuthenticator
	codec       *auth.TokenCodec
	recorder    LoginRecorder
}

// NewService creates the login service. recorder may be nil.
func NewService(credentials *CredentialAuthenticator, codec *auth.TokenCodec, recorder LoginRecorder) *Service {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &Service{credentials: credentials, codec: codec, recorder: recorder}
}

// Login authenticates username and password and returns a signed token
// carrying the user's id, tenant and roles.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, principal, err := s.credentials.verify(ctx, username, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.recorder.RecordLogin(ctx, false)
			logging.FromContext(ctx).Info("login rejected")
		}
		return "", err
	}

	tenantID, _ := principal.TenantID()
	token, err := s.codec.Issue(principal.UserID(), user.Email, principal.Roles(), tenantID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	s.recorder.RecordLogin(ctx, true)
	logging.FromContext(ctx).Debug("login succeeded", "user_id", principal.UserID(), "tenant_id", tenantID)
	return token, nil
}
