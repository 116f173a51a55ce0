package comment

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel/attribute"

	"github.com/HeorhiiKortunov/CoreTask/internal/auth"
	"github.com/HeorhiiKortunov/CoreTask/internal/cache"
	"github.com/HeorhiiKortunov/CoreTask/internal/db/models"
	"github.com/HeorhiiKortunov/CoreTask/internal/logging"
	"github.com/HeorhiiKortunov/CoreTask/internal/repository"
	"github.com/HeorhiiKortunov/CoreTask/internal/telemetry"
)

const tracerName = "coretask/services/comment"

// ErrNotAuthor is returned when a user edits or deletes someone else's comment.
var ErrNotAuthor = errors.New("only the author may modify this comment")

// Service manages task comments of the caller's company.
type Service struct {
	comments repository.CommentRepository
	tasks    repository.TaskRepository
	users    repository.UserRepository
	cache    *cache.TenantCache
}

// NewService constructs a new Service instance. tasks and users are used to
// check that the commented task and the author belong to the caller's company.
func NewService(comments repository.CommentRepository, tasks repository.TaskRepository, users repository.UserRepository, c *cache.TenantCache) *Service {
	return &Service{comments: comments, tasks: tasks, users: users, cache: c}
}

// Create adds a comment by the caller to a task of the caller's company.
func (s *Service) Create(ctx context.Context, taskID int64, contents string) (*models.Comment, error) {
	tenantID, err := auth.CurrentTenantID(ctx)
	if err != nil {
		return nil, err
	}
	authorID, err := auth.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, tracerName, "comment.Create",
		attribute.Int64(telemetry.AttrTenantID, tenantID),
		attribute.Int64(telemetry.AttrTaskID, taskID),
	)
	defer span.End()

	if _, err := s.tasks.GetByID(ctx, tenantID, taskID); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("task %d: %w", taskID, err)
	}
	// A token outlives its user, so the author may be gone.
	if _, err := s.users.GetByID(ctx, tenantID, authorID); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("author %d: %w", authorID, err)
	}

	record := &models.Comment{
		CompanyID: tenantID,
		TaskID:    taskID,
		AuthorID:  authorID,
		Contents:  contents,
	}
	if err := s.comments.Create(ctx, record); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("create comment: %w", err)
	}

	s.cache.InvalidateAll(ctx, cache.KindTaskComments)
	return record, nil
}

// Get returns one comment of the caller's company.
func (s *Service) Get(ctx context.Context, id int64) (*models.Comment, error) {
	key, err := cache.EntityKey(ctx, cache.KindComments, id)
	if err != nil {
		return nil, err
	}
	return cache.GetOrLoad(ctx, s.cache, key, func(ctx context.Context) (*models.Comment, error) {
		return s.comments.GetByID(ctx, key.TenantID(), id)
	})
}

// ListByTask returns the comments of one task of the caller's company.
func (s *Service) ListByTask(ctx context.Context, taskID int64) ([]models.Comment, error) {
	key, err := cache.ScopedCollectionKey(ctx, cache.KindTaskComments, strconv.FormatInt(taskID, 10))
	if err != nil {
		return nil, err
	}
	return cache.GetOrLoad(ctx, s.cache, key, func(ctx context.Context) ([]models.Comment, error) {
		return s.comments.ListByTask(ctx, key.TenantID(), taskID)
	})
}

// Update replaces the contents of one of the caller's own comments.
func (s *Service) Update(ctx context.Context, id int64, contents string) (*models.Comment, error) {
	record, err := s.authored(ctx, id)
	if err != nil {
		return nil, err
	}

	record.Contents = contents
	if err := s.comments.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("update comment %d: %w", id, err)
	}
	s.evict(ctx, record.CompanyID, id)
	return record, nil
}

// Delete removes one of the caller's own comments.
func (s *Service) Delete(ctx context.Context, id int64) error {
	record, err := s.authored(ctx, id)
	if err != nil {
		return err
	}

	if err := s.comments.Delete(ctx, record.CompanyID, id); err != nil {
		return err
	}
	s.evict(ctx, record.CompanyID, id)
	return nil
}

// authored loads comment id and checks that the caller wrote it.
func (s *Service) authored(ctx context.Context, id int64) (*models.Comment, error) {
	tenantID, err := auth.CurrentTenantID(ctx)
	if err != nil {
		return nil, err
	}
	userID, err := auth.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}

	record, err := s.comments.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if record.AuthorID != userID {
		logging.FromContext(ctx).Debug("comment change by non-author rejected",
			"tenant_id", tenantID, "user_id", userID, "comment_id", id)
		return nil, ErrNotAuthor
	}
	return record, nil
}

func (s *Service) evict(ctx context.Context, tenantID, id int64) {
	s.cache.Invalidate(ctx, cache.TenantEntityKey(cache.KindComments, id, tenantID))
	s.cache.InvalidateAll(ctx, cache.KindTaskComments)
}
