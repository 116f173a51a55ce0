package repository

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/HeorhiiKortunov/CoreTask/internal/db/models"
)

// BunTaskRepository implements TaskRepository using Bun ORM
type BunTaskRepository struct {
	db *bun.DB
}

// NewBunTaskRepository creates a new Bun-based task repository
func NewBunTaskRepository(db *bun.DB) *BunTaskRepository {
	return &BunTaskRepository{db: db}
}

func (r *BunTaskRepository) Create(ctx context.Context, task *models.Task) error {
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	if task.Status == "" {
		task.Status = models.TaskStatusTodo
	}
	if _, err := r.db.NewInsert().Model(task).Exec(ctx); err != nil {
		return wrapWrite("create task", err)
	}
	return nil
}

func (r *BunTaskRepository) GetByID(ctx context.Context, companyID, id int64) (*models.Task, error) {
	task := new(models.Task)
	err := r.db.NewSelect().
		Model(task).
		Where("id = ?", id).
		Where("company_id = ?", companyID).
		Scan(ctx)
	if err != nil {
		return nil, wrapRead("get task", err)
	}
	return task, nil
}

func (r *BunTaskRepository) List(ctx context.Context, companyID int64, projectID *int64) ([]models.Task, error) {
	var tasks []models.Task
	q := r.db.NewSelect().
		Model(&tasks).
		Where("company_id = ?", companyID)
	if projectID != nil {
		q = q.Where("project_id = ?", *projectID)
	}
	if err := q.Order("id ASC").Scan(ctx); err != nil {
		return nil, wrapRead("list tasks", err)
	}
	return tasks, nil
}

func (r *BunTaskRepository) Update(ctx context.Context, task *models.Task) error {
	res, err := r.db.NewUpdate().
		Model(task).
		Column("name", "description", "assignee_id", "status", "due_to").
		Where("id = ?", task.ID).
		Where("company_id = ?", task.CompanyID).
		Exec(ctx)
	if err != nil {
		return wrapWrite("update task", err)
	}
	return requireAffected("update task", res)
}

func (r *BunTaskRepository) Delete(ctx context.Context, companyID, id int64) error {
	res, err := r.db.NewDelete().
		Model((*models.Task)(nil)).
		Where("id = ?", id).
		Where("company_id = ?", companyID).
		Exec(ctx)
	if err != nil {
		return wrapWrite("delete task", err)
	}
	return requireAffected("delete task", res)
}
