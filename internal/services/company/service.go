package company

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
	"github.com/HeorhiiKortunov/CoreTask/internal/telemetry"
)

const tracerName = "coretask/services/company"

// OwnerInput carries the first user of a new company.
type OwnerInput struct {
	Username      string
	DisplayedName string
	Email         string
	Password      string
}

// Service registers companies. Registration runs before any principal
// exists, so nothing here reads the request tenant.
type Service struct {
	companies repository.CompanyRepository
	cache     *cache.TenantCache
}

// NewService constructs a new Service instance.
func NewService(companies repository.CompanyRepository, c *cache.TenantCache) *Service {
	return &Service{companies: companies, cache: c}
}

// OwnerRoles are granted to the user created with a company.
func OwnerRoles() []auth.Role {
	return []auth.Role{auth.RoleMember, auth.RoleAdmin, auth.RoleOwner}
}

// Register creates a company and its owner in one transaction. A taken
// company name, username or email is repository.ErrConflict.
func (s *Service) Register(ctx context.Context, name string, owner OwnerInput) (*models.Company, *models.User, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "company.Register")
	defer span.End()

	hash, err := iam.HashPassword(owner.Password)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, nil, err
	}

	company := &models.Company{Name: name}
	user := &models.User{
		Username:      owner.Username,
		DisplayedName: owner.DisplayedName,
		Email:         owner.Email,
		PasswordHash:  hash,
		Roles:         auth.RoleNames(OwnerRoles()),
	}
	if err := s.companies.CreateWithOwner(ctx, company, user); err != nil {
		telemetry.RecordError(span, err)
		return nil, nil, fmt.Errorf("register company: %w", err)
	}
	span.SetAttributes(attribute.Int64(telemetry.AttrTenantID, company.ID))

	// The owner's roles were granted without a tenant in context, so every
	// company user list is dropped.
	s.cache.InvalidateAll(ctx, cache.KindCompanyUsers)

	logging.FromContext(ctx).Info("company registered", "tenant_id", company.ID, "owner_id", user.ID)
	return company, user, nil
}

// Get returns a company by id.
func (s *Service) Get(ctx context.Context, id int64) (*models.Company, error) {
	return s.companies.GetByID(ctx, id)
}
