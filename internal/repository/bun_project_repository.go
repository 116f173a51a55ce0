package repository

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/HeorhiiKortunov/CoreTask/internal/db/models"
)

// BunProjectRepository implements ProjectRepository using Bun ORM
type BunProjectRepository struct {
	db *bun.DB
}

// NewBunProjectRepository creates a new Bun-based project repository
func NewBunProjectRepository(db *bun.DB) *BunProjectRepository {
	return &BunProjectRepository{db: db}
}

func (r *BunProjectRepository) Create(ctx context.Context, project *models.Project) error {
	if project.CreatedAt.IsZero() {
		project.CreatedAt = time.Now().UTC()
	}
	if _, err := r.db.NewInsert().Model(project).Exec(ctx); err != nil {
		return wrapWrite("create project", err)
	}
	return nil
}

func (r *BunProjectRepository) GetByID(ctx context.Context, companyID, id int64) (*models.Project, error) {
	project := new(models.Project)
	err := r.db.NewSelect().
		Model(project).
		Where("id = ?", id).
		Where("company_id = ?", companyID).
		Scan(ctx)
	if err != nil {
		return nil, wrapRead("get project", err)
	}
	return project, nil
}

func (r *BunProjectRepository) ListByCompany(ctx context.Context, companyID int64) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.NewSelect().
		Model(&projects).
		Where("company_id = ?", companyID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, wrapRead("list projects", err)
	}
	return projects, nil
}

func (r *BunProjectRepository) Update(ctx context.Context, project *models.Project) error {
	res, err := r.db.NewUpdate().
		Model(project).
		Column("name", "description").
		Where("id = ?", project.ID).
		Where("company_id = ?", project.CompanyID).
		Exec(ctx)
	if err != nil {
		return wrapWrite("update project", err)
	}
	return requireAffected("update project", res)
}

func (r *BunProjectRepository) Delete(ctx context.Context, companyID, id int64) error {
	res, err := r.db.NewDelete().
		Model((*models.Project)(nil)).
		Where("id = ?", id).
		Where("company_id = ?", companyID).
		Exec(ctx)
	if err != nil {
		return wrapWrite("delete project", err)
	}
	return requireAffected("delete project", res)
}
