package task

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/HeorhiiKortunov/CoreTask/internal/auth"
	"github.com/HeorhiiKortunov/CoreTask/internal/cache"
	"github.com/HeorhiiKortunov/CoreTask/internal/db/models"
	"github.com/HeorhiiKortunov/CoreTask/internal/logging"
	"github.com/HeorhiiKortunov/CoreTask/internal/repository"
	"github.com/HeorhiiKortunov/CoreTask/internal/services/validation"
	"github.com/HeorhiiKortunov/CoreTask/internal/telemetry"
)

const tracerName = "coretask/services/task"

// CreateInput carries the fields of a new task.
type CreateInput struct {
	ProjectID   int64
	Name        string
	Description string
	AssigneeID  *int64
	DueTo       *time.Time
}

// UpdateInput carries a partial update. Nil fields are left unchanged.
type UpdateInput struct {
	Name        *string
	Description *string
	AssigneeID  *int64
	DueTo       *time.Time
	Status      *models.TaskStatus
}

// Service manages the tasks of the caller's company.
type Service struct {
	tasks    repository.TaskRepository
	projects repository.ProjectRepository
	users    repository.UserRepository
	cache    *cache.TenantCache
}

// NewService constructs a new Service instance. projects and users are used
// to check that referenced rows belong to the caller's company.
func NewService(tasks repository.TaskRepository, projects repository.ProjectRepository, users repository.UserRepository, c *cache.TenantCache) *Service {
	return &Service{tasks: tasks, projects: projects, users: users, cache: c}
}

// Create adds a task to a project of the caller's company. New tasks start
// in TODO.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Task, error) {
	tenantID, err := auth.CurrentTenantID(ctx)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, tracerName, "task.Create",
		attribute.Int64(telemetry.AttrTenantID, tenantID),
		attribute.Int64(telemetry.AttrProjectID, in.ProjectID),
	)
	defer span.End()

	if _, err := s.projects.GetByID(ctx, tenantID, in.ProjectID); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("project %d: %w", in.ProjectID, err)
	}
	if err := s.checkAssignee(ctx, tenantID, in.AssigneeID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	record := &models.Task{
		CompanyID:   tenantID,
		ProjectID:   in.ProjectID,
		Name:        in.Name,
		Description: in.Description,
		AssigneeID:  in.AssigneeID,
		Status:      models.TaskStatusTodo,
		DueTo:       in.DueTo,
	}
	if err := s.tasks.Create(ctx, record); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.cache.InvalidateAll(ctx, cache.KindProjectTasks)
	logging.FromContext(ctx).Info("task created", "tenant_id", tenantID, "project_id", in.ProjectID, "task_id", record.ID)
	return record, nil
}

// Get returns one task of the caller's company.
func (s *Service) Get(ctx context.Context, id int64) (*models.Task, error) {
	key, err := cache.EntityKey(ctx, cache.KindTasks, id)
	if err != nil {
		return nil, err
	}
	return cache.GetOrLoad(ctx, s.cache, key, func(ctx context.Context) (*models.Task, error) {
		return s.tasks.GetByID(ctx, key.TenantID(), id)
	})
}

// List returns the tasks of the caller's company, narrowed to one project
// when projectID is set.
func (s *Service) List(ctx context.Context, projectID *int64) ([]models.Task, error) {
	scope := ""
	if projectID != nil {
		scope = strconv.FormatInt(*projectID, 10)
	}
	key, err := cache.ScopedCollectionKey(ctx, cache.KindProjectTasks, scope)
	if err != nil {
		return nil, err
	}
	return cache.GetOrLoad(ctx, s.cache, key, func(ctx context.Context) ([]models.Task, error) {
		return s.tasks.List(ctx, key.TenantID(), projectID)
	})
}

// Update applies a partial update to a task of the caller's company.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*models.Task, error) {
	tenantID, err := auth.CurrentTenantID(ctx)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, tracerName, "task.Update",
		attribute.Int64(telemetry.AttrTenantID, tenantID),
		attribute.Int64(telemetry.AttrTaskID, id),
	)
	defer span.End()

	if in.Status != nil && !in.Status.Valid() {
		return nil, validation.FieldErrors{"status": fmt.Sprintf("unknown status %q", *in.Status)}
	}

	record, err := s.tasks.GetByID(ctx, tenantID, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if in.AssigneeID != nil {
		if err := s.checkAssignee(ctx, tenantID, in.AssigneeID); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		record.AssigneeID = in.AssigneeID
	}
	if in.Name != nil {
		record.Name = *in.Name
	}
	if in.Description != nil {
		record.Description = *in.Description
	}
	if in.DueTo != nil {
		record.DueTo = in.DueTo
	}
	if in.Status != nil {
		record.Status = *in.Status
	}

	if err := s.tasks.Update(ctx, record); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("update task %d: %w", id, err)
	}
	s.evict(ctx, tenantID, id)
	return record, nil
}

// Delete removes a task of the caller's company along with its comments.
func (s *Service) Delete(ctx context.Context, id int64) error {
	tenantID, err := auth.CurrentTenantID(ctx)
	if err != nil {
		return err
	}

	if err := s.tasks.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	s.evict(ctx, tenantID, id)
	s.cache.InvalidateAll(ctx, cache.KindComments, cache.KindTaskComments)
	logging.FromContext(ctx).Info("task deleted", "tenant_id", tenantID, "task_id", id)
	return nil
}

func (s *Service) evict(ctx context.Context, tenantID, id int64) {
	s.cache.Invalidate(ctx, cache.TenantEntityKey(cache.KindTasks, id, tenantID))
	s.cache.InvalidateAll(ctx, cache.KindProjectTasks)
}

// checkAssignee fails with repository.ErrNotFound when the assignee is not a
// user of tenantID.
func (s *Service) checkAssignee(ctx context.Context, tenantID int64, assigneeID *int64) error {
	if assigneeID == nil {
		return nil
	}
	if _, err := s.users.GetByID(ctx, tenantID, *assigneeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("assignee %d: %w", *assigneeID, err)
		}
		return fmt.Errorf("look up assignee: %w", err)
	}
	return nil
}
