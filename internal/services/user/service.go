package user

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/HeorhiiKortunov/CoreTask/internal/auth"
	"github.com/HeorhiiKortunov/CoreTask/internal/cache"
	"github.com/HeorhiiKortunov/CoreTask/internal/db/models"
	"github.com/HeorhiiKortunov/CoreTask/internal/logging"
	"github.com/HeorhiiKortunov/CoreTask/internal/repository"
	"github.com/HeorhiiKortunov/CoreTask/internal/services/iam"
	"github.com/HeorhiiKortunov/CoreTask/internal/services/validation"
	"github.com/HeorhiiKortunov/CoreTask/internal/telemetry"
)

const tracerName = "coretask/services/user"

// CreateInput carries the fields of a new user. Roles defaults to MEMBER.
type CreateInput struct {
	Username      string
	DisplayedName string
	Email         string
	Password      string
	Roles         []auth.Role
}

// ProfileInput carries a partial profile update. Nil fields are left
// unchanged.
type ProfileInput struct {
	DisplayedName *string
	Email         *string
}

// Service manages the users of the caller's company.
type Service struct {
	users repository.UserRepository
	cache *cache.TenantCache
}

// NewService constructs a new Service instance.
func NewService(users repository.UserRepository, c *cache.TenantCache) *Service {
	return &Service{users: users, cache: c}
}

// Create adds a user to the caller's company.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.User, error) {
	tenantID, err := auth.CurrentTenantID(ctx)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, tracerName, "user.Create",
		attribute.Int64(telemetry.AttrTenantID, tenantID),
	)
	defer span.End()

	roles := in.Roles
	if len(roles) == 0 {
		roles = []auth.Role{auth.RoleMember}
	}
	hash, err := iam.HashPassword(in.Password)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	record := &models.User{
		CompanyID:     tenantID,
		Username:      in.Username,
		DisplayedName: in.DisplayedName,
		Email:         in.Email,
		PasswordHash:  hash,
		Roles:         auth.RoleNames(roles),
	}
	if err := s.users.Create(ctx, record); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.cache.Invalidate(ctx, cache.TenantCollectionKey(cache.KindCompanyUsers, tenantID))
	logging.FromContext(ctx).Info("user created", "tenant_id", tenantID, "user_id", record.ID)
	return record, nil
}

// Get returns one user of the caller's company.
func (s *Service) Get(ctx context.Context, id int64) (*models.User, error) {
	key, err := cache.EntityKey(ctx, cache.KindUsers, id)
	if err != nil {
		return nil, err
	}
	return cache.GetOrLoad(ctx, s.cache, key, func(ctx context.Context) (*models.User, error) {
		return s.users.GetByID(ctx, key.TenantID(), id)
	})
}

// Me returns the caller's own user.
func (s *Service) Me(ctx context.Context) (*models.User, error) {
	id, err := auth.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// List returns every user of the caller's company.
func (s *Service) List(ctx context.Context) ([]models.User, error) {
	key, err := cache.CollectionKey(ctx, cache.KindCompanyUsers)
	if err != nil {
		return nil, err
	}
	return cache.GetOrLoad(ctx, s.cache, key, func(ctx context.Context) ([]models.User, error) {
		return s.users.ListByCompany(ctx, key.TenantID())
	})
}

// UpdateProfile changes the display name and email of a user of the
// caller's company. Roles are never touched.
func (s *Service) UpdateProfile(ctx context.Context, id int64, in ProfileInput) (*models.User, error) {
	tenantID, err := auth.CurrentTenantID(ctx)
	if err != nil {
		return nil, err
	}

	record, err := s.users.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if in.DisplayedName != nil {
		record.DisplayedName = *in.DisplayedName
	}
	if in.Email != nil {
		record.Email = *in.Email
	}

	if err := s.users.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}
	s.evict(ctx, tenantID, id)
	return record, nil
}

// UpdateMyProfile is UpdateProfile on the caller's own user.
func (s *Service) UpdateMyProfile(ctx context.Context, in ProfileInput) (*models.User, error) {
	id, err := auth.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}
	return s.UpdateProfile(ctx, id, in)
}

// UpdateRoles replaces the role set of a user of the caller's company.
// Tokens issued earlier keep their old roles until they expire.
func (s *Service) UpdateRoles(ctx context.Context, id int64, names []string) (*models.User, error) {
	tenantID, err := auth.CurrentTenantID(ctx)
	if err != nil {
		return nil, err
	}

	roles, err := auth.ParseRoles(names)
	if err != nil {
		return nil, validation.FieldErrors{"roles": err.Error()}
	}
	if len(roles) == 0 {
		return nil, validation.FieldErrors{"roles": "is required"}
	}

	if err := s.users.SetRoles(ctx, tenantID, id, auth.RoleNames(roles)); err != nil {
		return nil, err
	}
	s.evict(ctx, tenantID, id)
	logging.FromContext(ctx).Info("user roles updated", "tenant_id", tenantID, "user_id", id, "roles", auth.RoleNames(roles))

	return s.users.GetByID(ctx, tenantID, id)
}

// Delete removes a user of the caller's company. Their comments go with
// them and tasks assigned to them become unassigned.
func (s *Service) Delete(ctx context.Context, id int64) error {
	tenantID, err := auth.CurrentTenantID(ctx)
	if err != nil {
		return err
	}

	if err := s.users.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	s.evict(ctx, tenantID, id)
	s.cache.InvalidateAll(ctx, cache.KindTasks, cache.KindProjectTasks, cache.KindComments, cache.KindTaskComments)
	logging.FromContext(ctx).Info("user deleted", "tenant_id", tenantID, "user_id", id)
	return nil
}

// DeleteMe removes the caller's own user.
func (s *Service) DeleteMe(ctx context.Context) error {
	id, err := auth.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	return s.Delete(ctx, id)
}

func (s *Service) evict(ctx context.Context, tenantID, id int64) {
	s.cache.Invalidate(ctx,
		cache.TenantEntityKey(cache.KindUsers, id, tenantID),
		cache.TenantCollectionKey(cache.KindCompanyUsers, tenantID),
	)
}
