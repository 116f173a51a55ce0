package invitation

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/HeorhiiKortunov/CoreTask/internal/auth"
	"github.com/HeorhiiKortunov/CoreTask/internal/cache"
	"github.com/HeorhiiKortunov/CoreTask/internal/db/models"
	"github.com/HeorhiiKortunov/CoreTask/internal/logging"
	"github.com/HeorhiiKortunov/CoreTask/internal/mail"
	"github.com/HeorhiiKortunov/CoreTask/internal/repository"
	"github.com/HeorhiiKortunov/CoreTask/internal/services/iam"
	"github.com/HeorhiiKortunov/CoreTask/internal/telemetry"
)

const tracerName = "coretask/services/invitation"

// DefaultTTL is how long an invitation stays usable when no TTL is configured.
const DefaultTTL = 7 * 24 * time.Hour

// ErrInvitationUnusable is returned when accepting an expired or already
// accepted invitation.
var ErrInvitationUnusable = errors.New("invitation expired or already used")

// AcceptInput carries the account details chosen by the invitee.
type AcceptInput struct {
	Username      string
	DisplayedName string
	Password      string
}

// Service issues and redeems invitations.
type Service struct {
	invitations repository.InvitationRepository
	sender      mail.Sender
	cache       *cache.TenantCache
	serverURL   string
	ttl         time.Duration
	now         func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithTTL sets how long new invitations stay usable.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService constructs a new Service instance. serverURL is the externally
// reachable base URL used in accept links.
func NewService(invitations repository.InvitationRepository, sender mail.Sender, c *cache.TenantCache, serverURL string, opts ...Option) *Service {
	s := &Service{
		invitations: invitations,
		sender:      sender,
		cache:       c,
		serverURL:   strings.TrimRight(serverURL, "/"),
		ttl:         DefaultTTL,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Invite creates an invitation to the caller's company and mails the accept
// link to email.
func (s *Service) Invite(ctx context.Context, email string) (*models.Invitation, error) {
	tenantID, err := auth.CurrentTenantID(ctx)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, tracerName, "invitation.Invite",
		attribute.Int64(telemetry.AttrTenantID, tenantID),
	)
	defer span.End()

	record := &models.Invitation{
		CompanyID: tenantID,
		Email:     email,
		Token:     uuid.NewString(),
		ExpiresAt: s.now().Add(s.ttl).UTC(),
	}
	if err := s.invitations.Create(ctx, record); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("create invitation: %w", err)
	}

	if err := s.sender.Send(ctx, mail.InvitationMessage(email, s.AcceptLink(record.Token))); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("send invitation: %w", err)
	}

	logging.FromContext(ctx).Info("invitation sent", "tenant_id", tenantID, "invitation_id", record.ID)
	return record, nil
}

// AcceptLink is the URL an invitee follows to redeem token.
func (s *Service) AcceptLink(token string) string {
	return s.serverURL + auth.AcceptInvitationPath + "?token=" + url.QueryEscape(token)
}

// Accept redeems an invitation, creating a MEMBER user in the inviting
// company with the invited email. An unknown token is repository.ErrNotFound.
func (s *Service) Accept(ctx context.Context, token string, in AcceptInput) (*models.User, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "invitation.Accept")
	defer span.End()

	record, err := s.invitations.GetByToken(ctx, token)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int64(telemetry.AttrTenantID, record.CompanyID))

	if !record.Usable(s.now()) {
		logging.FromContext(ctx).Info("unusable invitation presented",
			"invitation_id", record.ID, "accepted", record.Accepted)
		return nil, ErrInvitationUnusable
	}

	hash, err := iam.HashPassword(in.Password)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	user := &models.User{
		CompanyID:     record.CompanyID,
		Username:      in.Username,
		DisplayedName: in.DisplayedName,
		Email:         record.Email,
		PasswordHash:  hash,
		Roles:         auth.RoleNames([]auth.Role{auth.RoleMember}),
	}
	if err := s.invitations.Accept(ctx, record.ID, user); err != nil {
		telemetry.RecordError(span, err)
		if errors.Is(err, repository.ErrAlreadyAccepted) {
			return nil, ErrInvitationUnusable
		}
		return nil, fmt.Errorf("accept invitation: %w", err)
	}

	s.cache.Invalidate(ctx, cache.TenantCollectionKey(cache.KindCompanyUsers, record.CompanyID))
	logging.FromContext(ctx).Info("invitation accepted", "tenant_id", record.CompanyID, "user_id", user.ID)
	return user, nil
}
