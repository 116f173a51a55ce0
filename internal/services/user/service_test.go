package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/HeorhiiKortunov/CoreTask/internal/auth"
	"github.com/HeorhiiKortunov/CoreTask/internal/cache"
	"github.com/HeorhiiKortunov/CoreTask/internal/db/models"
	"github.com/HeorhiiKortunov/CoreTask/internal/repository"
	"github.com/HeorhiiKortunov/CoreTask/internal/repository/repotest"
	"github.com/HeorhiiKortunov/CoreTask/internal/services/validation"
)

func strPtr(s string) *string { return &s }

func TestUserService_CreateHashesAndDefaultsToMember(t *testing.T) {
	repo := new(repotest.MockUserRepository)
	svc := NewService(repo, cache.New())
	ctx := repotest.PrincipalContext(1, 9, auth.RoleAdmin)

	var stored *models.User
	repo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*models.User)
		stored.ID = 12
	}).Return(nil)

	created, err := svc.Create(ctx, CreateInput{Username: "bob", DisplayedName: "Bob", Email: "bob@acme.test", Password: "hunter22"})
	require.NoError(t, err)

	assert.Equal(t, int64(12), created.ID)
	assert.Equal(t, int64(9), stored.CompanyID)
	assert.Equal(t, models.RoleList{"MEMBER"}, stored.Roles)
	assert.NotEqual(t, "hunter22", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("hunter22")))
}

func TestUserService_ListIsPerTenantAndEvictedByCreate(t *testing.T) {
	repo := new(repotest.MockUserRepository)
	c := cache.New()
	svc := NewService(repo, c)
	tenant9 := repotest.PrincipalContext(1, 9, auth.RoleAdmin, auth.RoleMember)
	tenant10 := repotest.PrincipalContext(2, 10, auth.RoleMember)

	repo.On("ListByCompany", mock.Anything, int64(9)).Return([]models.User{{ID: 1, CompanyID: 9}}, nil)
	repo.On("ListByCompany", mock.Anything, int64(10)).Return([]models.User{{ID: 2, CompanyID: 10}}, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	users9, err := svc.List(tenant9)
	require.NoError(t, err)
	users10, err := svc.List(tenant10)
	require.NoError(t, err)
	assert.Equal(t, int64(9), users9[0].CompanyID)
	assert.Equal(t, int64(10), users10[0].CompanyID)
	require.Equal(t, 2, c.Len(cache.KindCompanyUsers))

	_, err = svc.Create(tenant9, CreateInput{Username: "x", DisplayedName: "X", Email: "x@acme.test", Password: "secret1"})
	require.NoError(t, err)

	// Only tenant 9's list is dropped.
	assert.Equal(t, 1, c.Len(cache.KindCompanyUsers))
	_, err = svc.List(tenant10)
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "ListByCompany", 2)
}

func TestUserService_UpdateProfileKeepsRoles(t *testing.T) {
	repo := new(repotest.MockUserRepository)
	svc := NewService(repo, cache.New())
	ctx := repotest.PrincipalContext(4, 9, auth.RoleMember)

	repo.On("GetByID", mock.Anything, int64(9), int64(4)).Return(&models.User{
		ID: 4, CompanyID: 9, DisplayedName: "Old", Email: "old@acme.test", Roles: models.RoleList{"MEMBER"},
	}, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.DisplayedName == "New" && u.Email == "old@acme.test"
	})).Return(nil)

	updated, err := svc.UpdateMyProfile(ctx, ProfileInput{DisplayedName: strPtr("New")})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.DisplayedName)
	assert.Equal(t, models.RoleList{"MEMBER"}, updated.Roles)
	repo.AssertNotCalled(t, "SetRoles", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUserService_UpdateProfileEmailConflict(t *testing.T) {
	repo := new(repotest.MockUserRepository)
	svc := NewService(repo, cache.New())
	ctx := repotest.PrincipalContext(1, 9, auth.RoleAdmin)

	repo.On("GetByID", mock.Anything, int64(9), int64(4)).Return(&models.User{ID: 4, CompanyID: 9}, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(repository.ErrConflict)

	_, err := svc.UpdateProfile(ctx, 4, ProfileInput{Email: strPtr("taken@acme.test")})
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestUserService_UpdateRoles(t *testing.T) {
	repo := new(repotest.MockUserRepository)
	c := cache.New()
	svc := NewService(repo, c)
	ctx := repotest.PrincipalContext(1, 9, auth.RoleAdmin)

	repo.On("GetByID", mock.Anything, int64(9), int64(4)).Return(&models.User{ID: 4, CompanyID: 9, Roles: models.RoleList{"MEMBER"}}, nil).Once()
	_, err := svc.Get(ctx, 4)
	require.NoError(t, err)
	require.Equal(t, 1, c.Len(cache.KindUsers))

	repo.On("SetRoles", mock.Anything, int64(9), int64(4), []string{"ADMIN", "MEMBER"}).Return(nil)
	repo.On("GetByID", mock.Anything, int64(9), int64(4)).Return(&models.User{ID: 4, CompanyID: 9, Roles: models.RoleList{"ADMIN", "MEMBER"}}, nil).Once()

	updated, err := svc.UpdateRoles(ctx, 4, []string{"MEMBER", "ADMIN", "MEMBER"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleList{"ADMIN", "MEMBER"}, updated.Roles)
	assert.Equal(t, 0, c.Len(cache.KindUsers))
	repo.AssertExpectations(t)
}

func TestUserService_UpdateRolesRejectsUnknownRole(t *testing.T) {
	repo := new(repotest.MockUserRepository)
	svc := NewService(repo, cache.New())
	ctx := repotest.PrincipalContext(1, 9, auth.RoleAdmin)

	for _, names := range [][]string{{"ROOT"}, {"MEMBER", "role_admin"}, {}} {
		_, err := svc.UpdateRoles(ctx, 4, names)
		var fe validation.FieldErrors
		require.ErrorAs(t, err, &fe, "roles %v", names)
		assert.Contains(t, fe, "roles")
	}
	repo.AssertNotCalled(t, "SetRoles", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUserService_DeleteMe(t *testing.T) {
	repo := new(repotest.MockUserRepository)
	svc := NewService(repo, cache.New())
	ctx := repotest.PrincipalContext(4, 9, auth.RoleMember)

	repo.On("Delete", mock.Anything, int64(9), int64(4)).Return(nil)

	require.NoError(t, svc.DeleteMe(ctx))
	repo.AssertExpectations(t)
}

func TestUserService_GetOtherTenant(t *testing.T) {
	repo := new(repotest.MockUserRepository)
	svc := NewService(repo, cache.New())
	ctx := repotest.PrincipalContext(4, 9, auth.RoleMember)

	repo.On("GetByID", mock.Anything, int64(9), int64(40)).Return(nil, repository.ErrNotFound)

	_, err := svc.Get(ctx, 40)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
