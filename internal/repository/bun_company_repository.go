package repository

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/HeorhiiKortunov/CoreTask/internal/db/models"
)

// BunCompanyRepository implements CompanyRepository using Bun ORM
type BunCompanyRepository struct {
	db *bun.DB
}

// NewBunCompanyRepository creates a new Bun-based company repository
func NewBunCompanyRepository(db *bun.DB) *BunCompanyRepository {
	return &BunCompanyRepository{db: db}
}

func (r *BunCompanyRepository) GetByID(ctx context.Context, id int64) (*models.Company, error) {
	company := new(models.Company)
	err := r.db.NewSelect().
		Model(company).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, wrapRead("get company", err)
	}
	return company, nil
}

func (r *BunCompanyRepository) CreateWithOwner(ctx context.Context, company *models.Company, owner *models.User) error {
	now := time.Now().UTC()
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		company.CreatedAt = now
		if _, err := tx.NewInsert().Model(company).Exec(ctx); err != nil {
			return wrapWrite("create company", err)
		}

		owner.CompanyID = company.ID
		owner.CreatedAt = now
		if _, err := tx.NewInsert().Model(owner).Exec(ctx); err != nil {
			return wrapWrite("create company owner", err)
		}
		return nil
	})
}
