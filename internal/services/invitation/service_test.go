package invitation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/HeorhiiKortunov/CoreTask/internal/auth"
	"github.com/HeorhiiKortunov/CoreTask/internal/cache"
	"github.com/HeorhiiKortunov/CoreTask/internal/db/models"
	"github.com/HeorhiiKortunov/CoreTask/internal/mail"
	"github.com/HeorhiiKortunov/CoreTask/internal/repository"
	"github.com/HeorhiiKortunov/CoreTask/internal/repository/repotest"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type failingSender struct{}

func (failingSender) Send(context.Context, mail.Message) error { return errors.New("smtp down") }

func newTestService(repo *repotest.MockInvitationRepository, sender mail.Sender, c *cache.TenantCache) *Service {
	return NewService(repo, sender, c, "https://tasks.example.com/",
		WithTTL(48*time.Hour),
		WithClock(func() time.Time { return fixedNow }),
	)
}

func TestInvitationService_Invite(t *testing.T) {
	repo := new(repotest.MockInvitationRepository)
	outbox := &mail.Outbox{}
	svc := newTestService(repo, outbox, cache.New())
	ctx := repotest.PrincipalContext(1, 9, auth.RoleAdmin)

	var stored *models.Invitation
	repo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*models.Invitation)
	}).Return(nil)

	inv, err := svc.Invite(ctx, "bob@acme.test")
	require.NoError(t, err)

	assert.Equal(t, int64(9), stored.CompanyID)
	assert.Equal(t, "bob@acme.test", stored.Email)
	assert.Len(t, inv.Token, 36)
	assert.False(t, inv.Accepted)
	assert.Equal(t, fixedNow.Add(48*time.Hour), inv.ExpiresAt)

	msgs := outbox.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "bob@acme.test", msgs[0].To)
	assert.Contains(t, msgs[0].Body, "https://tasks.example.com/api/invitations/accept?token="+inv.Token)
}

func TestInvitationService_InviteRequiresTenant(t *testing.T) {
	repo := new(repotest.MockInvitationRepository)
	svc := newTestService(repo, &mail.Outbox{}, cache.New())

	_, err := svc.Invite(context.Background(), "bob@acme.test")
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestInvitationService_InviteMailFailure(t *testing.T) {
	repo := new(repotest.MockInvitationRepository)
	svc := newTestService(repo, failingSender{}, cache.New())
	ctx := repotest.PrincipalContext(1, 9, auth.RoleAdmin)

	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Invite(ctx, "bob@acme.test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "send invitation")
}

func TestInvitationService_Accept(t *testing.T) {
	repo := new(repotest.MockInvitationRepository)
	c := cache.New()
	svc := newTestService(repo, &mail.Outbox{}, c)

	member := repotest.PrincipalContext(1, 9, auth.RoleMember)
	key, err := cache.CollectionKey(member, cache.KindCompanyUsers)
	require.NoError(t, err)
	_, err = cache.GetOrLoad(member, c, key, func(context.Context) ([]models.User, error) { return nil, nil })
	require.NoError(t, err)

	repo.On("GetByToken", mock.Anything, "tok").Return(&models.Invitation{
		ID: 3, CompanyID: 9, Email: "bob@acme.test", Token: "tok", ExpiresAt: fixedNow.Add(time.Hour),
	}, nil)
	repo.On("Accept", mock.Anything, int64(3), mock.Anything).Run(func(args mock.Arguments) {
		args.Get(2).(*models.User).ID = 44
	}).Return(nil)

	user, err := svc.Accept(context.Background(), "tok", AcceptInput{Username: "bob", DisplayedName: "Bob", Password: "hunter22"})
	require.NoError(t, err)

	assert.Equal(t, int64(44), user.ID)
	assert.Equal(t, int64(9), user.CompanyID)
	assert.Equal(t, "bob@acme.test", user.Email)
	assert.Equal(t, models.RoleList{"MEMBER"}, user.Roles)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter22")))
	assert.Equal(t, 0, c.Len(cache.KindCompanyUsers))
}

func TestInvitationService_AcceptUnusable(t *testing.T) {
	tests := []struct {
		name       string
		invitation *models.Invitation
	}{
		{"expired", &models.Invitation{ID: 3, CompanyID: 9, ExpiresAt: fixedNow.Add(-time.Second)}},
		{"already accepted", &models.Invitation{ID: 3, CompanyID: 9, ExpiresAt: fixedNow.Add(time.Hour), Accepted: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(repotest.MockInvitationRepository)
			svc := newTestService(repo, &mail.Outbox{}, cache.New())
			repo.On("GetByToken", mock.Anything, "tok").Return(tt.invitation, nil)

			_, err := svc.Accept(context.Background(), "tok", AcceptInput{Username: "bob", DisplayedName: "Bob", Password: "hunter22"})
			assert.ErrorIs(t, err, ErrInvitationUnusable)
			repo.AssertNotCalled(t, "Accept", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestInvitationService_AcceptLostRace(t *testing.T) {
	repo := new(repotest.MockInvitationRepository)
	svc := newTestService(repo, &mail.Outbox{}, cache.New())

	repo.On("GetByToken", mock.Anything, "tok").Return(&models.Invitation{ID: 3, CompanyID: 9, ExpiresAt: fixedNow.Add(time.Hour)}, nil)
	repo.On("Accept", mock.Anything, int64(3), mock.Anything).Return(repository.ErrAlreadyAccepted)

	_, err := svc.Accept(context.Background(), "tok", AcceptInput{Username: "bob", DisplayedName: "Bob", Password: "hunter22"})
	assert.ErrorIs(t, err, ErrInvitationUnusable)
}

func TestInvitationService_AcceptUnknownToken(t *testing.T) {
	repo := new(repotest.MockInvitationRepository)
	svc := newTestService(repo, &mail.Outbox{}, cache.New())

	repo.On("GetByToken", mock.Anything, "nope").Return(nil, repository.ErrNotFound)

	_, err := svc.Accept(context.Background(), "nope", AcceptInput{Username: "bob", DisplayedName: "Bob", Password: "hunter22"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestInvitationService_AcceptUsernameTaken(t *testing.T) {
	repo := new(repotest.MockInvitationRepository)
	svc := newTestService(repo, &mail.Outbox{}, cache.New())

	repo.On("GetByToken", mock.Anything, "tok").Return(&models.Invitation{ID: 3, CompanyID: 9, ExpiresAt: fixedNow.Add(time.Hour)}, nil)
	repo.On("Accept", mock.Anything, int64(3), mock.Anything).Return(repository.ErrConflict)

	_, err := svc.Accept(context.Background(), "tok", AcceptInput{Username: "taken", DisplayedName: "Bob", Password: "hunter22"})
	assert.ErrorIs(t, err, repository.ErrConflict)
	assert.NotErrorIs(t, err, ErrInvitationUnusable)
}
