package repository

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/HeorhiiKortunov/CoreTask/internal/db/models"
)

// BunCommentRepository implements CommentRepository using Bun ORM
type BunCommentRepository struct {
	db *bun.DB
}

// NewBunCommentRepository creates a new Bun-based comment repository
func NewBunCommentRepository(db *bun.DB) *BunCommentRepository {
	return &BunCommentRepository{db: db}
}

func (r *BunCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	if _, err := r.db.NewInsert().Model(comment).Exec(ctx); err != nil {
		return wrapWrite("create comment", err)
	}
	return nil
}

func (r *BunCommentRepository) GetByID(ctx context.Context, companyID, id int64) (*models.Comment, error) {
	comment := new(models.Comment)
	err := r.db.NewSelect().
		Model(comment).
		Where("id = ?", id).
		Where("company_id = ?", companyID).
		Scan(ctx)
	if err != nil {
		return nil, wrapRead("get comment", err)
	}
	return comment, nil
}

func (r *BunCommentRepository) ListByTask(ctx context.Context, companyID, taskID int64) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.NewSelect().
		Model(&comments).
		Where("company_id = ?", companyID).
		Where("task_id = ?", taskID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, wrapRead("list comments", err)
	}
	return comments, nil
}

func (r *BunCommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	res, err := r.db.NewUpdate().
		Model(comment).
		Column("contents").
		Where("id = ?", comment.ID).
		Where("company_id = ?", comment.CompanyID).
		Exec(ctx)
	if err != nil {
		return wrapWrite("update comment", err)
	}
	return requireAffected("update comment", res)
}

func (r *BunCommentRepository) Delete(ctx context.Context, companyID, id int64) error {
	res, err := r.db.NewDelete().
		Model((*models.Comment)(nil)).
		Where("id = ?", id).
		Where("company_id = ?", companyID).
		Exec(ctx)
	if err != nil {
		return wrapWrite("delete comment", err)
	}
	return requireAffected("delete comment", res)
}
