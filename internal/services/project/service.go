package project

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/HeorhiiKortunov/CoreTask/internal/auth"
	"github.com/HeorhiiKortunov/CoreTask/internal/cache"
	"github.com/HeorhiiKortunov/CoreTask/internal/db/models"
	"github.com/HeorhiiKortunov/CoreTask/internal/logging"
	"github.com/HeorhiiKortunov/CoreTask/internal/repository"
	"github.com/HeorhiiKortunov/CoreTask/internal/telemetry"
)

const tracerName = "coretask/services/project"

// CreateInput carries the fields of a new project.
type CreateInput struct {
	Name        string
	Description string
}

// UpdateInput carries a partial update. Nil fields are left unchanged.
type UpdateInput struct {
	Name        *string
	Description *string
}

// Service manages the projects of the caller's company.
type Service struct {
	projects repository.ProjectRepository
	cache    *cache.TenantCache
}

// NewService constructs a new Service instance.
func NewService(projects repository.ProjectRepository, c *cache.TenantCache) *Service {
	return &Service{projects: projects, cache: c}
}

// Create adds a project to the caller's company.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Project, error) {
	tenantID, err := auth.CurrentTenantID(ctx)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, tracerName, "project.Create",
		attribute.Int64(telemetry.AttrTenantID, tenantID),
	)
	defer span.End()

	record := &models.Project{
		CompanyID:   tenantID,
		Name:        in.Name,
		Description: in.Description,
	}
	if err := s.projects.Create(ctx, record); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("create project: %w", err)
	}

	s.cache.Invalidate(ctx, cache.TenantCollectionKey(cache.KindCompanyProjects, tenantID))
	logging.FromContext(ctx).Info("project created", "tenant_id", tenantID, "project_id", record.ID)
	return record, nil
}

// Get returns one project of the caller's company.
func (s *Service) Get(ctx context.Context, id int64) (*models.Project, error) {
	key, err := cache.EntityKey(ctx, cache.KindProjects, id)
	if err != nil {
		return nil, err
	}
	return cache.GetOrLoad(ctx, s.cache, key, func(ctx context.Context) (*models.Project, error) {
		return s.projects.GetByID(ctx, key.TenantID(), id)
	})
}

// List returns every project of the caller's company.
func (s *Service) List(ctx context.Context) ([]models.Project, error) {
	key, err := cache.CollectionKey(ctx, cache.KindCompanyProjects)
	if err != nil {
		return nil, err
	}
	return cache.GetOrLoad(ctx, s.cache, key, func(ctx context.Context) ([]models.Project, error) {
		return s.projects.ListByCompany(ctx, key.TenantID())
	})
}

// Update applies a partial update to a project of the caller's company.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*models.Project, error) {
	tenantID, err := auth.CurrentTenantID(ctx)
	if err != nil {
		return nil, err
	}

	record, err := s.projects.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		record.Name = *in.Name
	}
	if in.Description != nil {
		record.Description = *in.Description
	}

	if err := s.projects.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("update project %d: %w", id, err)
	}
	s.evict(ctx, tenantID, id)
	return record, nil
}

// Delete removes a project of the caller's company along with its tasks.
func (s *Service) Delete(ctx context.Context, id int64) error {
	tenantID, err := auth.CurrentTenantID(ctx)
	if err != nil {
		return err
	}

	if err := s.projects.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	s.evict(ctx, tenantID, id)
	// Tasks and their comments go with the project.
	s.cache.InvalidateAll(ctx, cache.KindTasks, cache.KindProjectTasks, cache.KindComments, cache.KindTaskComments)
	logging.FromContext(ctx).Info("project deleted", "tenant_id", tenantID, "project_id", id)
	return nil
}

func (s *Service) evict(ctx context.Context, tenantID, id int64) {
	s.cache.Invalidate(ctx,
		cache.TenantEntityKey(cache.KindProjects, id, tenantID),
		cache.TenantCollectionKey(cache.KindCompanyProjects, tenantID),
	)
}
